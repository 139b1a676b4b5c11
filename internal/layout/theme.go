package layout

// RGB is a 24-bit color. gofpdf takes components as ints; keeping them
// typed here avoids positional-argument mistakes at call sites.
type RGB struct {
	R, G, B int
}

// Grays used across every template.
var (
	ColorInk      = RGB{33, 33, 33}    // body text
	ColorMuted    = RGB{117, 117, 117} // metadata, footer text
	ColorFaint    = RGB{189, 189, 189} // rules, box borders
	ColorPaper    = RGB{255, 255, 255}
	ColorZebra    = RGB{248, 248, 248} // alternating table rows
	ColorBoxLines = RGB{214, 214, 214} // ruled writing lines
)

// Theme is the per-template color scheme. Banner paints the title band and
// table header rows, Tint fills callouts and zebra accents, Accent draws
// section underlines and callout bars.
type Theme struct {
	Banner RGB
	Tint   RGB
	Accent RGB
}
