// Package richtext converts inline markup (markdown or a small HTML
// subset) into styled spans the flow engine can measure and place. Block
// markdown can also be lifted into whole element sequences.
package richtext

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/quillpdf/quill/model"
)

// Span is a run of text sharing one inline style.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Link   string
}

// Plain wraps unstyled text in a single span.
func Plain(text string) []Span {
	if text == "" {
		return nil
	}
	return []Span{{Text: text}}
}

// Text concatenates the span texts.
func Text(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// ParseInline parses inline markdown (bold, italic, code, links) into
// spans. Block structure in the input is flattened: line breaks become
// spaces, successive blocks are joined with a single space.
func ParseInline(source string) []Span {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(gtext.NewReader(src))

	var spans []Span
	first := true
	for block := doc.FirstChild(); block != nil; block = block.NextSibling() {
		if !first {
			spans = append(spans, Span{Text: " "})
		}
		first = false
		collectSpans(block, src, Span{}, &spans)
	}
	return mergeSpans(spans)
}

// collectSpans walks inline children of a node carrying the inherited
// style state in cur (its Text field is ignored).
func collectSpans(node ast.Node, src []byte, cur Span, out *[]Span) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			s := cur
			s.Text = string(n.Segment.Value(src))
			*out = append(*out, s)
			if n.SoftLineBreak() || n.HardLineBreak() {
				sp := cur
				sp.Text = " "
				*out = append(*out, sp)
			}
		case *ast.String:
			s := cur
			s.Text = string(n.Value)
			*out = append(*out, s)
		case *ast.CodeSpan:
			s := cur
			s.Code = true
			s.Text = codeSpanText(n, src)
			*out = append(*out, s)
		case *ast.Emphasis:
			s := cur
			if n.Level >= 2 {
				s.Bold = true
			} else {
				s.Italic = true
			}
			collectSpans(n, src, s, out)
		case *ast.Link:
			s := cur
			s.Link = string(n.Destination)
			collectSpans(n, src, s, out)
		case *ast.AutoLink:
			s := cur
			url := string(n.URL(src))
			s.Link = url
			s.Text = url
			*out = append(*out, s)
		default:
			collectSpans(child, src, cur, out)
		}
	}
}

func codeSpanText(n *ast.CodeSpan, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
		}
	}
	return sb.String()
}

// mergeSpans joins adjacent spans with identical styling and drops
// empties, so the flow engine sees the minimal run sequence.
func mergeSpans(spans []Span) []Span {
	out := spans[:0]
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.Bold == s.Bold && last.Italic == s.Italic && last.Code == s.Code && last.Link == s.Link {
				last.Text += s.Text
				continue
			}
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Elements converts a block-level markdown document into model elements:
// headings, paragraphs, bullet and numbered lists, and fenced code
// blocks. Unsupported constructs degrade to plain paragraphs.
func Elements(source string) []model.Element {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(gtext.NewReader(src))

	var els []model.Element
	for block := doc.FirstChild(); block != nil; block = block.NextSibling() {
		switch n := block.(type) {
		case *ast.Heading:
			els = append(els, model.Paragraph{
				Text:     blockText(n, src),
				Level:    n.Level,
				Markdown: true,
			})
		case *ast.Paragraph, *ast.TextBlock:
			els = append(els, model.Paragraph{
				Text:     blockText(block, src),
				Markdown: true,
			})
		case *ast.List:
			if lst, ok := listElement(n, src); ok {
				els = append(els, lst)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			els = append(els, model.TextBox{Text: codeBlockText(block, src)})
		case *ast.ThematicBreak:
			// Rendered as vertical space only.
		case *ast.Blockquote:
			els = append(els, model.Callout{Kind: model.CalloutInfo, Text: blockText(n, src)})
		default:
			if t := blockText(block, src); t != "" {
				els = append(els, model.Paragraph{Text: t, Markdown: true})
			}
		}
	}
	return els
}

func listElement(n *ast.List, src []byte) (model.List, bool) {
	kind := model.ListBullet
	if n.IsOrdered() {
		kind = model.ListNumber
	}
	var items []model.ListItem
	for li := n.FirstChild(); li != nil; li = li.NextSibling() {
		item := model.ListItem{}
		for part := li.FirstChild(); part != nil; part = part.NextSibling() {
			switch p := part.(type) {
			case *ast.List:
				for sub := p.FirstChild(); sub != nil; sub = sub.NextSibling() {
					item.Children = append(item.Children, model.ListItem{Text: blockText(sub, src)})
				}
			default:
				if t := blockText(part, src); t != "" {
					if item.Text != "" {
						item.Text += " "
					}
					item.Text += t
				}
			}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return model.List{}, false
	}
	return model.List{Kind: kind, Items: items}, true
}

// blockText extracts the raw markdown source of a block's inline
// content, preserving inline markers so span styling survives.
func blockText(n ast.Node, src []byte) string {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		var sb strings.Builder
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.Write(seg.Value(src))
		}
		return strings.TrimSpace(sb.String())
	}
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(t)
		}
	}
	return sb.String()
}

func codeBlockText(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}
