package fonts

// Advance-width tables for the built-in core fonts, in 1/1000 em for the
// printable ASCII range (codes 32..126). The oblique cuts share metrics
// with their uprights, as the AFM files do; Courier is monospaced at 600.

const missingWidth = 500

var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278,
	584, 584, 584, 556, 1015, 667, 667, 722, 722, 667, 611, 778, 722, 278,
	500, 667, 556, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 278, 278, 278, 469, 556, 333, 556, 556, 500, 556, 556,
	278, 556, 556, 222, 222, 500, 222, 833, 556, 556, 556, 556, 333, 500,
	278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333,
	584, 584, 584, 611, 975, 722, 722, 722, 722, 667, 611, 778, 722, 278,
	556, 722, 611, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 333, 278, 333, 584, 556, 333, 556, 611, 556, 611, 556,
	333, 611, 611, 278, 278, 556, 278, 889, 611, 611, 611, 611, 389, 556,
	333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

var timesRomanWidths = [95]int{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333,
	250, 278, 500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278,
	564, 564, 564, 444, 921, 722, 667, 667, 722, 611, 556, 722, 722, 333,
	389, 722, 611, 889, 722, 722, 556, 722, 667, 556, 611, 722, 722, 944,
	722, 722, 611, 333, 278, 333, 469, 500, 333, 444, 500, 444, 500, 444,
	333, 500, 500, 278, 278, 500, 278, 778, 500, 500, 500, 500, 333, 389,
	278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}

var timesBoldWidths = [95]int{
	250, 333, 555, 500, 500, 1000, 833, 278, 333, 333, 500, 570, 250, 333,
	250, 278, 500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333,
	570, 570, 570, 500, 930, 722, 667, 722, 722, 667, 611, 778, 778, 389,
	500, 778, 667, 944, 722, 778, 611, 778, 722, 556, 667, 722, 722, 1000,
	722, 722, 667, 333, 278, 333, 581, 500, 333, 500, 556, 444, 556, 444,
	333, 500, 556, 278, 333, 556, 278, 833, 556, 500, 556, 556, 444, 389,
	333, 556, 500, 722, 500, 500, 444, 394, 220, 394, 520,
}

var timesItalicWidths = [95]int{
	250, 333, 420, 500, 500, 833, 778, 214, 333, 333, 500, 675, 250, 333,
	250, 278, 500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333,
	675, 675, 675, 500, 920, 611, 611, 667, 722, 611, 611, 722, 722, 333,
	444, 667, 556, 833, 667, 722, 611, 722, 611, 500, 556, 722, 611, 833,
	611, 556, 556, 389, 278, 389, 422, 500, 333, 500, 500, 444, 500, 444,
	278, 500, 500, 278, 278, 444, 278, 722, 500, 500, 500, 500, 389, 389,
	278, 500, 444, 667, 444, 444, 389, 400, 275, 400, 541,
}

// coreWidthTables maps a core font's BaseFont name to its width table.
// A nil entry means monospaced Courier.
var coreWidthTables = map[string]*[95]int{
	"Helvetica":             &helveticaWidths,
	"Helvetica-Oblique":     &helveticaWidths,
	"Helvetica-Bold":        &helveticaBoldWidths,
	"Helvetica-BoldOblique": &helveticaBoldWidths,
	"Times-Roman":           &timesRomanWidths,
	"Times-Bold":            &timesBoldWidths,
	"Times-Italic":          &timesItalicWidths,
	"Times-BoldItalic":      &timesBoldWidths,
	"Courier":               nil,
	"Courier-Bold":          nil,
	"Courier-Oblique":       nil,
	"Courier-BoldOblique":   nil,
}

func coreWidth(table *[95]int, r rune) int {
	if table == nil {
		return 600
	}
	if r < 32 || r > 126 {
		return missingWidth
	}
	return table[r-32]
}
