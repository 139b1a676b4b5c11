package layout

import (
	"fmt"
	"strings"
)

const (
	calloutPad = 10.0
	calloutBar = 3.0

	listIndent    = 16.0
	numberIndent  = 22.0
	itemGap       = 3.0
	sideTextWidth = 284.0
	sideGap       = 16.0
	maxPhotoH     = 210.0

	responseRuleGap = 24.0
)

// Callout paints a tinted box with an accent bar, a small uppercase label,
// and flowed body text. The box never splits: when it does not fit the
// remaining page it moves whole to the next one. A callout taller than an
// entire page degrades to a labeled text flow instead of a box.
func (e *Engine) Callout(label, text string) {
	width := ContentWidth - calloutBar - 2*calloutPad
	labelStyle := StyleLabel.WithColor(e.frame.Theme.Accent)
	labelH := StyleLabel.Leading + 3
	bodyH := e.MeasureText(text, StyleBody, width)
	boxH := 2*calloutPad + labelH + bodyH

	if boxH > ContentFloor-ContentTop(false) {
		e.EnsureRoom(StyleLabel.Leading + 2*StyleBody.Leading)
		e.paintStyled(strings.ToUpper(label), Margin, e.y+StyleLabel.baselineOffset(), labelStyle)
		e.y += labelH
		e.FlowText(text, StyleBody)
		e.y += 8
		return
	}

	e.EnsureRoom(boxH)
	top := e.y
	e.setFill(e.frame.Theme.Tint)
	e.pdf.Rect(Margin, top, ContentWidth, boxH, "F")
	e.setFill(e.frame.Theme.Accent)
	e.pdf.Rect(Margin, top, calloutBar, boxH, "F")

	x := Margin + calloutBar + calloutPad
	e.paintStyled(strings.ToUpper(label), x, top+calloutPad+StyleLabel.baselineOffset(), labelStyle)
	e.y = top + calloutPad + labelH
	e.FlowTextWidth(text, StyleBody, x, width)
	e.y = top + boxH + 10
}

// BulletList flows items with a hanging bullet. Items wrap and may split
// across pages at line granularity; the glyph stays with the first line.
func (e *Engine) BulletList(items []string) {
	glyph := e.tr("•")
	for _, item := range items {
		lines := e.wrap(item, StyleBody, ContentWidth-listIndent)
		if len(lines) == 0 {
			continue
		}
		e.EnsureRoom(StyleBody.Leading)
		e.paintLine(glyph, Margin+3, StyleBody)
		e.paintLine(lines[0], Margin+listIndent, StyleBody)
		e.y += StyleBody.Leading
		for _, line := range lines[1:] {
			e.EnsureRoom(StyleBody.Leading)
			e.paintLine(line, Margin+listIndent, StyleBody)
			e.y += StyleBody.Leading
		}
		e.y += itemGap
	}
}

// NumberedList flows items behind "1." style markers with a hanging indent.
func (e *Engine) NumberedList(items []string) {
	for i, item := range items {
		lines := e.wrap(item, StyleBody, ContentWidth-numberIndent)
		if len(lines) == 0 {
			continue
		}
		e.EnsureRoom(StyleBody.Leading)
		e.paintLine(e.tr(fmt.Sprintf("%d.", i+1)), Margin, StyleBody)
		e.paintLine(lines[0], Margin+numberIndent, StyleBody)
		e.y += StyleBody.Leading
		for _, line := range lines[1:] {
			e.EnsureRoom(StyleBody.Leading)
			e.paintLine(line, Margin+numberIndent, StyleBody)
			e.y += StyleBody.Leading
		}
		e.y += itemGap
	}
}

// LabeledParagraph paints a bold one-line label with flowed text under it.
func (e *Engine) LabeledParagraph(label, text string) {
	e.EnsureRoom(StyleBodyBold.Leading + StyleBody.Leading)
	e.paintStyled(label, Margin, e.y+StyleBodyBold.baselineOffset(), StyleBodyBold)
	e.y += StyleBodyBold.Leading + 1
	e.FlowText(text, StyleBody)
	e.y += 6
}

// SideBySide places the image against the right margin and flows text in a
// narrow left column beside it, widening back to the full content width
// once the flow passes the image. With no image it is a plain text flow.
func (e *Engine) SideBySide(text string, img *ImageAsset, caption string) {
	if img == nil {
		e.FlowText(text, StyleBody)
		return
	}

	imgW := ContentWidth - sideTextWidth - sideGap
	imgH := imgW * img.Aspect()
	if imgH > maxPhotoH {
		imgH = maxPhotoH
		imgW = imgH / img.Aspect()
	}
	capH := 0.0
	if caption != "" {
		capH = StyleCaption.Leading + 4
	}
	e.EnsureRoom(imgH + capH)

	top := e.y
	startPage := e.pdf.PageNo()
	x := PageWidth - Margin - imgW
	e.paintImage(img, x, top, imgW, imgH)
	e.setDraw(ColorFaint)
	e.pdf.SetLineWidth(0.6)
	e.pdf.Rect(x, top, imgW, imgH, "D")
	if caption != "" {
		cw := e.styledWidth(caption, StyleCaption)
		cx := x + (imgW-cw)/2
		if cx < x {
			cx = x
		}
		e.paintStyled(caption, cx, top+imgH+4+StyleCaption.baselineOffset(), StyleCaption)
	}
	imgBottom := top + imgH + capH + 8

	beside := func() bool {
		return e.pdf.PageNo() == startPage && e.y < imgBottom
	}

	for pi, para := range splitParagraphs(text) {
		if pi > 0 {
			e.y += paragraphGap(StyleBody)
		}
		remaining := e.tr(para)
		for remaining != "" {
			width, tx := ContentWidth, Margin
			if beside() {
				width = sideTextWidth
			}
			lines := e.splitTranslated(remaining, StyleBody, width)
			painted := 0
			for _, line := range lines {
				if width == sideTextWidth && !beside() {
					break
				}
				e.EnsureRoom(StyleBody.Leading)
				e.paintLine(line, tx, StyleBody)
				e.y += StyleBody.Leading
				painted++
			}
			if painted == len(lines) {
				remaining = ""
			} else {
				remaining = strings.Join(lines[painted:], " ")
			}
		}
	}

	if e.pdf.PageNo() == startPage && e.y < imgBottom {
		e.y = imgBottom
	}
	e.y += 4
}

// NameDateLine paints the student identity line used on assessment handouts:
// a Name label with a writing rule, then a shorter Date rule to its right.
func (e *Engine) NameDateLine() {
	e.EnsureRoom(StyleBody.Leading + 4)
	base := e.y + StyleBody.baselineOffset()
	e.paintStyled("Name:", Margin, base, StyleBody)
	nameW := e.styledWidth("Name:", StyleBody)

	dateX := Margin + ContentWidth*0.62
	e.setDraw(ColorMuted)
	e.pdf.SetLineWidth(0.6)
	e.pdf.Line(Margin+nameW+6, base+2, dateX-18, base+2)

	e.paintStyled("Date:", dateX, base, StyleBody)
	dateW := e.styledWidth("Date:", StyleBody)
	e.pdf.Line(dateX+dateW+6, base+2, PageWidth-Margin, base+2)
	e.y += StyleBody.Leading + 4
}

// ResponseBox paints an empty ruled writing box of the given height. The
// caller sizes it; the box never splits across pages.
func (e *Engine) ResponseBox(h float64) {
	e.EnsureRoom(h)
	top := e.y
	e.setDraw(ColorFaint)
	e.pdf.SetLineWidth(0.8)
	e.pdf.RoundedRect(Margin, top, ContentWidth, h, 6, "1234", "D")

	e.setDraw(ColorBoxLines)
	e.pdf.SetLineWidth(0.5)
	for ly := top + 28; ly < top+h-8; ly += responseRuleGap {
		e.pdf.Line(Margin+12, ly, PageWidth-Margin-12, ly)
	}
	e.y = top + h
}
