package fonts

import (
	"math"
	"testing"
)

func TestCoreFontsPresent(t *testing.T) {
	s := NewSet()
	for _, name := range []string{
		"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique",
		"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic",
		"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique",
	} {
		if !s.Has(name) {
			t.Errorf("missing core font %q", name)
		}
		f, ok := s.Lookup(name)
		if !ok || f.Subtype != "Type1" || f.BaseFont != name {
			t.Errorf("Lookup(%q) = %+v, %v", name, f, ok)
		}
	}
	if s.Has("Comic Sans") {
		t.Errorf("unknown font reported present")
	}
}

func TestNamesSorted(t *testing.T) {
	names := NewSet().Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestMeasureHelvetica(t *testing.T) {
	s := NewSet()
	// Space is 278/1000 em, "H" is 722/1000.
	if got := s.Measure("Helvetica", 10, " "); math.Abs(got-2.78) > 1e-9 {
		t.Errorf("space width = %g, want 2.78", got)
	}
	if got := s.Measure("Helvetica", 10, "H"); math.Abs(got-7.22) > 1e-9 {
		t.Errorf("H width = %g, want 7.22", got)
	}
	// Width scales linearly with size.
	w11 := s.Measure("Helvetica", 11, "Hello")
	w22 := s.Measure("Helvetica", 22, "Hello")
	if math.Abs(w22-2*w11) > 1e-9 {
		t.Errorf("width not linear in size: %g vs %g", w11, w22)
	}
}

func TestMeasureCourierFixedPitch(t *testing.T) {
	s := NewSet()
	// Courier is fixed pitch at 600/1000 em.
	if got := s.Measure("Courier", 10, "iW"); math.Abs(got-12) > 1e-9 {
		t.Errorf("Courier width = %g, want 12", got)
	}
}

func TestMeasureNormalizesComposition(t *testing.T) {
	s := NewSet()
	composed := "\u00e9"
	decomposed := "e\u0301"
	a := s.Measure("Helvetica", 12, composed)
	b := s.Measure("Helvetica", 12, decomposed)
	if a != b {
		t.Errorf("composed %g != decomposed %g", a, b)
	}
}

func TestMeasureUnknownFont(t *testing.T) {
	if got := NewSet().Measure("Nope", 12, "text"); got != 0 {
		t.Errorf("unknown font measured %g", got)
	}
}

func TestRegisterTrueTypeRejectsGarbage(t *testing.T) {
	s := NewSet()
	if err := s.RegisterTrueType("Broken", []byte("not a font")); err == nil {
		t.Errorf("garbage font accepted")
	}
	if err := s.RegisterTrueType("", nil); err == nil {
		t.Errorf("empty name accepted")
	}
	if s.Has("Broken") {
		t.Errorf("failed registration left the font in the set")
	}
}
