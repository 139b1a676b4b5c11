package layout

// TextStyle selects a core font face and leading for flowed text. Style is
// the gofpdf style string: "" regular, "B" bold, "I" italic, "BI" both.
type TextStyle struct {
	Style   string
	Size    float64
	Leading float64
	Color   RGB
}

// The engine uses the Helvetica core font family throughout. Core fonts
// need no embedding, which keeps output size down and rendering identical
// across viewers.
const FontFamily = "Helvetica"

var (
	StyleTitle    = TextStyle{Style: "B", Size: 21, Leading: 26, Color: ColorPaper}
	StyleSubtitle = TextStyle{Style: "", Size: 11, Leading: 15, Color: ColorPaper}
	StyleHeading  = TextStyle{Style: "B", Size: 14, Leading: 20, Color: ColorInk}
	StyleBody     = TextStyle{Style: "", Size: 11, Leading: 15.5, Color: ColorInk}
	StyleBodyBold = TextStyle{Style: "B", Size: 11, Leading: 15.5, Color: ColorInk}
	StyleCaption  = TextStyle{Style: "I", Size: 9, Leading: 12, Color: ColorMuted}
	StyleLabel    = TextStyle{Style: "B", Size: 9.5, Leading: 13, Color: ColorInk}
	StyleCell     = TextStyle{Style: "", Size: 9, Leading: 12, Color: ColorInk}
	StyleCellBold = TextStyle{Style: "B", Size: 9, Leading: 12, Color: ColorInk}
	StyleCellTag  = TextStyle{Style: "I", Size: 8, Leading: 10.5, Color: ColorMuted}
	StyleFooter   = TextStyle{Style: "", Size: 8.5, Leading: 11, Color: ColorMuted}
	StyleBanner   = TextStyle{Style: "B", Size: 8, Leading: 10, Color: ColorPaper}
)

// WithColor returns a copy of the style in a different color.
func (s TextStyle) WithColor(c RGB) TextStyle {
	s.Color = c
	return s
}

// baselineOffset is where the text baseline sits inside a line box. Core
// font ascenders top out near 80% of the em size.
func (s TextStyle) baselineOffset() float64 {
	return s.Size * 0.82
}
