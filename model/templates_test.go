package model

import "testing"

func TestFromTemplate(t *testing.T) {
	for _, name := range TemplateNames() {
		doc, err := FromTemplate(Template(name))
		if err != nil {
			t.Errorf("FromTemplate(%q): %v", name, err)
			continue
		}
		// Every template starts valid once content is added.
		doc.Sections = []Section{{Elements: []Element{Paragraph{Text: "x"}}}}
		if err := doc.Validate(); err != nil {
			t.Errorf("template %q invalid: %v", name, err)
		}
	}

	if _, err := FromTemplate("zine"); err == nil {
		t.Errorf("unknown template accepted")
	}
}

func TestFromTemplateReturnsFreshValue(t *testing.T) {
	a, _ := FromTemplate(TemplateReport)
	b, _ := FromTemplate(TemplateReport)
	if a == b {
		t.Fatal("shared document value")
	}
	a.Footer.Text = "changed"
	if b.Footer.Text == "changed" {
		t.Errorf("templates share footer pointers")
	}
}

func TestTemplateNamesSorted(t *testing.T) {
	names := TemplateNames()
	if len(names) != 11 {
		t.Errorf("template count = %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
