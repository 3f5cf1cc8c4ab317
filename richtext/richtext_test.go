package richtext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/quillpdf/quill/model"
)

func TestPlain(t *testing.T) {
	if got := Plain(""); got != nil {
		t.Errorf("Plain(\"\") = %v", got)
	}
	want := []Span{{Text: "hello"}}
	if diff := cmp.Diff(want, Plain("hello")); diff != "" {
		t.Errorf("Plain mismatch:\n%s", diff)
	}
}

func TestParseInline(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []Span
	}{
		{
			name: "plain",
			in:   "just text",
			want: []Span{{Text: "just text"}},
		},
		{
			name: "bold",
			in:   "a **bold** word",
			want: []Span{{Text: "a "}, {Text: "bold", Bold: true}, {Text: " word"}},
		},
		{
			name: "italic",
			in:   "an *italic* word",
			want: []Span{{Text: "an "}, {Text: "italic", Italic: true}, {Text: " word"}},
		},
		{
			name: "nested emphasis",
			in:   "***both***",
			want: []Span{{Text: "both", Bold: true, Italic: true}},
		},
		{
			name: "code",
			in:   "run `go vet` first",
			want: []Span{{Text: "run "}, {Text: "go vet", Code: true}, {Text: " first"}},
		},
		{
			name: "link",
			in:   "see [the docs](https://example.com)",
			want: []Span{{Text: "see "}, {Text: "the docs", Link: "https://example.com"}},
		},
		{
			name: "soft break becomes space",
			in:   "line one\nline two",
			want: []Span{{Text: "line one line two"}},
		},
		{
			name: "blocks joined with space",
			in:   "para one\n\npara two",
			want: []Span{{Text: "para one para two"}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.want, ParseInline(c.in)); diff != "" {
				t.Errorf("spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeSpans(t *testing.T) {
	got := mergeSpans([]Span{
		{Text: "a"}, {Text: ""}, {Text: "b"},
		{Text: "c", Bold: true}, {Text: "d", Bold: true},
	})
	want := []Span{{Text: "ab"}, {Text: "cd", Bold: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merge mismatch:\n%s", diff)
	}
	if mergeSpans([]Span{{Text: ""}}) != nil {
		t.Errorf("all-empty input did not collapse to nil")
	}
}

func TestParseHTML(t *testing.T) {
	got, err := ParseHTML(`plain <b>bold</b> <i>italic</i> <code>x</code> <a href="https://e.com">link</a><br>tail`)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	want := []Span{
		{Text: "plain "},
		{Text: "bold", Bold: true},
		{Text: " "},
		{Text: "italic", Italic: true},
		{Text: " "},
		{Text: "x", Code: true},
		{Text: " "},
		{Text: "link", Link: "https://e.com"},
		{Text: " tail"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHTMLUnknownTagsTransparent(t *testing.T) {
	got, err := ParseHTML(`<span class="x">kept <strong>styled</strong></span>`)
	if err != nil {
		t.Fatal(err)
	}
	want := []Span{{Text: "kept "}, {Text: "styled", Bold: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("spans mismatch:\n%s", diff)
	}
}

func TestElements(t *testing.T) {
	els := Elements("# Title\n\nBody with **style**.\n\n- one\n- two\n\n1. first\n2. second\n\n```\ncode here\n```")
	if len(els) != 5 {
		t.Fatalf("element count = %d: %#v", len(els), els)
	}

	h, ok := els[0].(model.Paragraph)
	if !ok || h.Level != 1 || h.Text != "Title" {
		t.Errorf("heading = %#v", els[0])
	}
	p, ok := els[1].(model.Paragraph)
	if !ok || !p.Markdown || p.Text != "Body with **style**." {
		t.Errorf("paragraph = %#v", els[1])
	}
	ul, ok := els[2].(model.List)
	if !ok || ul.Kind != model.ListBullet || len(ul.Items) != 2 || ul.Items[1].Text != "two" {
		t.Errorf("bullet list = %#v", els[2])
	}
	ol, ok := els[3].(model.List)
	if !ok || ol.Kind != model.ListNumber || len(ol.Items) != 2 {
		t.Errorf("numbered list = %#v", els[3])
	}
	cb, ok := els[4].(model.TextBox)
	if !ok || cb.Text != "code here" {
		t.Errorf("code block = %#v", els[4])
	}
}

func TestElementsBlockquote(t *testing.T) {
	els := Elements("> watch out")
	if len(els) != 1 {
		t.Fatalf("element count = %d", len(els))
	}
	co, ok := els[0].(model.Callout)
	if !ok || co.Kind != model.CalloutInfo || co.Text != "watch out" {
		t.Errorf("callout = %#v", els[0])
	}
}

func TestElementsNestedList(t *testing.T) {
	els := Elements("- parent\n  - child one\n  - child two")
	lst, ok := els[0].(model.List)
	if !ok || len(lst.Items) != 1 {
		t.Fatalf("list = %#v", els)
	}
	item := lst.Items[0]
	if item.Text != "parent" || len(item.Children) != 2 || item.Children[0].Text != "child one" {
		t.Errorf("nested item = %#v", item)
	}
}
