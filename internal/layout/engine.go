package layout

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/brightsciences/lessonpress/internal/logfields"
)

// PageState reports the cursor position of an in-progress composition.
// Total stays zero until Finalize has counted the finished document.
type PageState struct {
	Page  int
	Total int
	Y     float64
}

// Engine composes one document. It is single-use and not safe for
// concurrent access; concurrent renders each build their own Engine.
//
// The flow cursor y always points at the top of the next line box. Content
// advances strictly downward; page breaks are explicit. Canvas errors are
// sticky in the underlying PDF model, so drivers check Err once after
// composing rather than after every call.
type Engine struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	frame  Frame
	log    *slog.Logger
	images map[string]bool

	y     float64
	total int
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger routes the engine's debug logging.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithCreationDate pins the document creation timestamp. Renders that
// should be byte-identical for unchanged input pass a fixed time here.
func WithCreationDate(t time.Time) Option {
	return func(e *Engine) { e.pdf.SetCreationDate(t) }
}

// WithoutCompression disables content stream compression. Output grows but
// page content becomes plain text, which tests grep directly.
func WithoutCompression() Option {
	return func(e *Engine) { e.pdf.SetCompression(false) }
}

// New creates an engine, opens the first page, and paints the title banner.
// The cursor is left at the top of the content area.
func New(frame Frame, opts ...Option) *Engine {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)

	e := &Engine{
		pdf:    pdf,
		frame:  frame,
		log:    slog.Default(),
		images: make(map[string]bool),
	}
	e.tr = pdf.UnicodeTranslatorFromDescriptor("")
	for _, opt := range opts {
		opt(e)
	}

	pdf.SetTitle(frame.Title, true)
	pdf.SetSubject(frame.DocType, true)
	pdf.SetAuthor(frame.Attribution, true)
	pdf.SetCreator("lessonpress", true)

	pdf.AddPage()
	e.paintHeader()
	e.y = ContentTop(true)
	return e
}

// State returns the current cursor position.
func (e *Engine) State() PageState {
	return PageState{Page: e.pdf.PageNo(), Total: e.total, Y: e.y}
}

// Y returns the flow cursor.
func (e *Engine) Y() float64 { return e.y }

// SetY moves the flow cursor on the current page.
func (e *Engine) SetY(y float64) { e.y = y }

// Page returns the 1-based current page number.
func (e *Engine) Page() int { return e.pdf.PageNo() }

// PageCount returns the number of pages painted so far.
func (e *Engine) PageCount() int { return e.pdf.PageCount() }

// Avail returns the vertical room left above the content floor.
func (e *Engine) Avail() float64 { return ContentFloor - e.y }

// Err surfaces the canvas's sticky error, if any.
func (e *Engine) Err() error {
	if e.pdf.Err() {
		return e.pdf.Error()
	}
	return nil
}

// EnsureRoom breaks to a new page when fewer than h points remain. It
// breaks at most once; a block taller than a whole page must be flowed in
// splittable pieces by the caller instead.
func (e *Engine) EnsureRoom(h float64) {
	if e.y+h > ContentFloor {
		e.BreakPage()
	}
}

// BreakPage finishes the current page with a placeholder footer and starts
// the next one under a continuation header.
func (e *Engine) BreakPage() {
	e.paintFooterPlaceholder(e.pdf.PageNo())
	e.pdf.AddPage()
	e.paintContinuationHeader()
	e.y = ContentTop(false)
	e.log.Debug("page break", logfields.Page(e.pdf.PageNo()))
}

// Spacer advances the cursor by h without painting.
func (e *Engine) Spacer(h float64) { e.y += h }

// SectionHeading paints a section label with its accent underline. The
// heading keeps at least two body lines with it; when they would not fit,
// the whole heading moves to the next page.
func (e *Engine) SectionHeading(label string) {
	e.PhaseHeading(label, e.frame.Theme.Accent)
}

// PhaseHeading is SectionHeading with an explicit underline color, used
// where each section carries its own accent.
func (e *Engine) PhaseHeading(label string, accent RGB) {
	e.EnsureRoom(StyleHeading.Leading + 6 + 2*StyleBody.Leading)
	e.paintStyled(label, Margin, e.y+StyleHeading.baselineOffset(), StyleHeading)
	e.setFill(accent)
	e.pdf.Rect(Margin, e.y+StyleHeading.Leading+1, 46, 2.5, "F")
	e.y += StyleHeading.Leading + 12
}

// HRule paints a faint full-width divider.
func (e *Engine) HRule() {
	e.EnsureRoom(12)
	e.setDraw(ColorFaint)
	e.pdf.SetLineWidth(0.6)
	e.pdf.Line(Margin, e.y+4, PageWidth-Margin, e.y+4)
	e.y += 12
}

// FlowText flows paragraphs across the full content width.
func (e *Engine) FlowText(text string, style TextStyle) {
	e.FlowTextWidth(text, style, Margin, ContentWidth)
}

// FlowTextWidth flows paragraphs in a column of the given width, breaking
// pages at line granularity. A paragraph whose remainder does not fit
// continues at the top of the next page.
func (e *Engine) FlowTextWidth(text string, style TextStyle, x, width float64) {
	for pi, para := range splitParagraphs(text) {
		if pi > 0 {
			e.y += paragraphGap(style)
		}
		for _, line := range e.wrap(para, style, width) {
			e.EnsureRoom(style.Leading)
			e.paintLine(line, x, style)
			e.y += style.Leading
		}
	}
}

// MeasureText returns the height text would occupy at the given width,
// without painting or moving the cursor.
func (e *Engine) MeasureText(text string, style TextStyle, width float64) float64 {
	h := 0.0
	for pi, para := range splitParagraphs(text) {
		if pi > 0 {
			h += paragraphGap(style)
		}
		h += float64(len(e.wrap(para, style, width))) * style.Leading
	}
	return h
}

// Finalize runs the footer pass: the last open page gets its placeholder
// footer, then every page is revisited and the center stamp is repainted
// with the exact total. Idempotent.
func (e *Engine) Finalize() {
	if e.total > 0 {
		return
	}
	e.paintFooterPlaceholder(e.pdf.PageNo())
	e.total = e.pdf.PageCount()
	for i := 1; i <= e.total; i++ {
		e.pdf.SetPage(i)
		e.paintFooterBand(fmt.Sprintf("Page %d of %d", i, e.total))
	}
	e.pdf.SetPage(e.total)
	e.log.Debug("footers finalized", logfields.Pages(e.total))
}

// Output finalizes if needed and serializes the document. This is the only
// point where PDF bytes exist; everything before it is revisable.
func (e *Engine) Output(w io.Writer) error {
	e.Finalize()
	if err := e.Err(); err != nil {
		return err
	}
	return e.pdf.Output(w)
}

// wrap translates txt to the document code page and splits it into lines
// that fit width under style. Returned lines are already translated; paint
// them with paintLine, never with paintStyled.
func (e *Engine) wrap(txt string, style TextStyle, width float64) []string {
	return e.splitTranslated(e.tr(txt), style, width)
}

// splitTranslated wraps already-translated text. Translation must happen
// exactly once; re-translating mangles high code page bytes.
func (e *Engine) splitTranslated(txt string, style TextStyle, width float64) []string {
	e.setStyle(style)
	return e.pdf.SplitText(txt, width)
}

// paintLine paints an already-translated line at the cursor.
func (e *Engine) paintLine(line string, x float64, style TextStyle) {
	e.setStyle(style)
	e.pdf.Text(x, e.y+style.baselineOffset(), line)
}

// paintStyled translates and paints a short string at an absolute baseline.
func (e *Engine) paintStyled(txt string, x, baseline float64, style TextStyle) {
	e.setStyle(style)
	e.pdf.Text(x, baseline, e.tr(txt))
}

// styledWidth returns the painted width of txt under style.
func (e *Engine) styledWidth(txt string, style TextStyle) float64 {
	e.setStyle(style)
	return e.pdf.GetStringWidth(e.tr(txt))
}

func (e *Engine) setStyle(s TextStyle) {
	e.pdf.SetFont(FontFamily, s.Style, s.Size)
	e.pdf.SetTextColor(s.Color.R, s.Color.G, s.Color.B)
}

func (e *Engine) setFill(c RGB) { e.pdf.SetFillColor(c.R, c.G, c.B) }
func (e *Engine) setDraw(c RGB) { e.pdf.SetDrawColor(c.R, c.G, c.B) }

// paintImage registers the asset on first use and places it. A zero h
// derives height from the aspect ratio.
func (e *Engine) paintImage(img *ImageAsset, x, y, w, h float64) {
	if img == nil || len(img.Data) == 0 {
		return
	}
	opt := gofpdf.ImageOptions{ImageType: img.Format, ReadDpi: false}
	if !e.images[img.Name] {
		e.pdf.RegisterImageOptionsReader(img.Name, opt, bytes.NewReader(img.Data))
		e.images[img.Name] = true
	}
	if h == 0 {
		h = w * img.Aspect()
	}
	e.pdf.ImageOptions(img.Name, x, y, w, h, false, opt, 0, "")
}

func paragraphGap(style TextStyle) float64 {
	return style.Leading * 0.5
}

// splitParagraphs breaks text on blank lines and folds soft line breaks
// inside a paragraph into spaces.
func splitParagraphs(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		part = strings.TrimSpace(strings.ReplaceAll(part, "\n", " "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
