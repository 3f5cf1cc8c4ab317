package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML converts a small inline HTML subset (b, strong, i, em, code,
// a, br) into spans. Unknown tags are transparent; their text survives
// unstyled.
func ParseHTML(source string) ([]Span, error) {
	nodes, err := html.ParseFragment(strings.NewReader(source), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, err
	}
	var spans []Span
	for _, n := range nodes {
		walkHTML(n, Span{}, &spans)
	}
	return mergeSpans(spans), nil
}

func walkHTML(n *html.Node, cur Span, out *[]Span) {
	switch n.Type {
	case html.TextNode:
		s := cur
		s.Text = n.Data
		*out = append(*out, s)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.B, atom.Strong:
			cur.Bold = true
		case atom.I, atom.Em:
			cur.Italic = true
		case atom.Code, atom.Tt:
			cur.Code = true
		case atom.A:
			for _, a := range n.Attr {
				if a.Key == "href" {
					cur.Link = a.Val
				}
			}
		case atom.Br:
			s := cur
			s.Text = " "
			*out = append(*out, s)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, cur, out)
	}
}
