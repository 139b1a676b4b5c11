// Package layout is the paginated PDF composition engine underneath the
// document templates. It owns page geometry, the flow cursor, page breaks,
// header and footer framing, and the two-pass footer finalization that
// stamps exact "Page i of N" counts.
//
// All coordinates are PDF points with the origin at the top-left of the
// page. The engine paints into an in-memory page model; nothing is
// serialized until Output runs, which is what allows revisiting earlier
// pages during finalization.
package layout

// US Letter portrait, in points.
const (
	PageWidth  = 612.0
	PageHeight = 792.0

	// Margin applies on all four sides. The footer band is reserved at the
	// bottom of every page above the margin; flowed content never enters it.
	Margin     = 40.0
	FooterBand = 48.0

	// ContentWidth is the full flowable width between the side margins.
	ContentWidth = PageWidth - 2*Margin

	// ContentFloor is the lowest y any flowed content may reach. Text,
	// tables, and boxes all break to a new page rather than cross it.
	ContentFloor = PageHeight - Margin - FooterBand

	// HeaderBandHeight is the title banner on the first page;
	// ContinuationBandHeight is the slimmer band on every later page.
	HeaderBandHeight       = 96.0
	ContinuationBandHeight = 40.0

	// HeaderGap separates the banner from the first flowed content.
	HeaderGap = 20.0
)

// ContentTop returns the y where flowed content starts on the given page.
func ContentTop(firstPage bool) float64 {
	if firstPage {
		return HeaderBandHeight + HeaderGap
	}
	return ContinuationBandHeight + HeaderGap
}
