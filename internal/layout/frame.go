package layout

import (
	"fmt"
	"strings"
)

// Frame is the fixed chrome around flowed content: the first-page title
// banner, the slim continuation band on later pages, and the footer.
type Frame struct {
	Title       string
	Subtitle    string // e.g. "Earth & Space Science  |  Grade 2"
	DocType     string // e.g. "Lesson Guide"
	BannerText  string // audience line inside the footer band, e.g. "FOR TEACHER USE"
	Attribution string // footer left text
	Generated   string // footer right text, usually a date
	Theme       Theme
	Logo        *ImageAsset
}

const (
	logoSize    = 52.0
	footerRuleY = ContentFloor + 8
	footerTextY = ContentFloor + 26

	footerBandW   = 224.0
	footerBandH   = 17.0
	footerBandY   = footerTextY - 12
	footerBandPad = 10.0
)

// paintHeader paints the first-page banner: full-bleed color band, document
// type, title, subtitle, and the optional logo on the right.
func (e *Engine) paintHeader() {
	f := e.frame
	e.setFill(f.Theme.Banner)
	e.pdf.Rect(0, 0, PageWidth, HeaderBandHeight, "F")

	titleWidth := ContentWidth
	if f.Logo != nil {
		e.paintImage(f.Logo, PageWidth-Margin-logoSize, (HeaderBandHeight-logoSize)/2, logoSize, 0)
		titleWidth -= logoSize + 16
	}

	e.paintStyled(strings.ToUpper(f.DocType), Margin, 30, StyleSubtitle)
	e.paintTitleFitted(f.Title, Margin, 62, titleWidth)
	e.paintStyled(f.Subtitle, Margin, 83, StyleSubtitle)
}

// paintTitleFitted paints the title on one line, stepping the size down
// until it fits. Very long titles truncate with an ellipsis at minimum size
// rather than overflowing the banner.
func (e *Engine) paintTitleFitted(title string, x, baseline, width float64) {
	style := StyleTitle
	txt := e.tr(title)
	for style.Size > 14 {
		e.setStyle(style)
		if e.pdf.GetStringWidth(txt) <= width {
			break
		}
		style.Size -= 1
	}
	e.setStyle(style)
	runes := []rune(txt)
	for e.pdf.GetStringWidth(string(runes)) > width && len(runes) > 1 {
		runes = runes[:len(runes)-1]
	}
	if len(runes) < len([]rune(txt)) {
		e.pdf.Text(x, baseline, string(runes)+"...")
		return
	}
	e.pdf.Text(x, baseline, txt)
}

// paintContinuationHeader paints the slim band on pages after the first:
// a color bar and a one-line running title.
func (e *Engine) paintContinuationHeader() {
	f := e.frame
	e.setFill(f.Theme.Banner)
	e.pdf.Rect(0, 0, PageWidth, 6, "F")

	running := fmt.Sprintf("%s  |  %s (continued)", f.Title, f.DocType)
	e.paintStyled(running, Margin, 28, StyleFooter)
}

// paintFooterPlaceholder paints the complete footer with the page number
// known so far. Finalization later repaints the band with the exact total.
func (e *Engine) paintFooterPlaceholder(page int) {
	f := e.frame

	e.setDraw(ColorFaint)
	e.pdf.SetLineWidth(0.6)
	e.pdf.Line(Margin, footerRuleY, PageWidth-Margin, footerRuleY)

	e.paintStyled(f.Attribution, Margin, footerTextY, StyleFooter)
	if f.Generated != "" {
		w := e.styledWidth(f.Generated, StyleFooter)
		e.paintStyled(f.Generated, PageWidth-Margin-w, footerTextY, StyleFooter)
	}
	e.paintFooterBand(fmt.Sprintf("Page %d", page))
}

// paintFooterBand paints the centered colored band holding the audience line
// and the page label. The fill is opaque, so repainting the band is also how
// finalization erases the first-pass placeholder under it.
func (e *Engine) paintFooterBand(pageLabel string) {
	f := e.frame
	x := (PageWidth - footerBandW) / 2
	e.setFill(f.Theme.Banner)
	e.pdf.Rect(x, footerBandY, footerBandW, footerBandH, "F")

	pw := e.styledWidth(pageLabel, StyleBanner)
	if f.BannerText == "" {
		e.paintStyled(pageLabel, (PageWidth-pw)/2, footerTextY, StyleBanner)
		return
	}
	e.paintStyled(f.BannerText, x+footerBandPad, footerTextY, StyleBanner)
	e.paintStyled(pageLabel, x+footerBandW-footerBandPad-pw, footerTextY, StyleBanner)
}
