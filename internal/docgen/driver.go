// Package docgen turns content records into finished PDF documents. Each
// template has a driver that recovers what it needs from the record,
// composes pages through the layout engine, and leaves pagination details
// (breaks, footers, fixed regions) to layout primitives.
package docgen

import (
	"io"
	"log/slog"
	"time"

	"github.com/brightsciences/lessonpress/internal/content"
	apperrors "github.com/brightsciences/lessonpress/internal/errors"
	"github.com/brightsciences/lessonpress/internal/layout"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/metrics"
	"github.com/brightsciences/lessonpress/internal/normalization"
)

// Template identifies one of the four document templates.
type Template string

const (
	TemplateLessonGuide Template = "lesson-guide"
	TemplateFiveE       Template = "5e-plan"
	TemplateRubric      Template = "rubric"
	TemplateExitTicket  Template = "exit-ticket"
)

// Templates lists every template in presentation order.
var Templates = []Template{TemplateLessonGuide, TemplateFiveE, TemplateRubric, TemplateExitTicket}

var templateNormalizer = normalization.NewNormalizer(map[string]Template{
	"lesson-guide": TemplateLessonGuide,
	"lesson guide": TemplateLessonGuide,
	"guide":        TemplateLessonGuide,
	"5e-plan":      TemplateFiveE,
	"5e":           TemplateFiveE,
	"5e plan":      TemplateFiveE,
	"rubric":       TemplateRubric,
	"exit-ticket":  TemplateExitTicket,
	"exit ticket":  TemplateExitTicket,
}, Template(""))

// NormalizeTemplate maps a raw template name to its canonical Template.
func NormalizeTemplate(raw string) (Template, error) {
	t := templateNormalizer.Normalize(raw)
	if t == "" {
		return "", apperrors.ValidationFailed("template", "unknown template "+raw)
	}
	return t, nil
}

func (t Template) valid() bool {
	switch t {
	case TemplateLessonGuide, TemplateFiveE, TemplateRubric, TemplateExitTicket:
		return true
	}
	return false
}

// Label returns the display name painted on document banners.
func (t Template) Label() string {
	switch t {
	case TemplateLessonGuide:
		return "Lesson Guide"
	case TemplateFiveE:
		return "5E Lesson Plan"
	case TemplateRubric:
		return "Assessment Rubric"
	case TemplateExitTicket:
		return "Exit Ticket"
	}
	return string(t)
}

// CanRender reports whether the record carries the inputs the template draws
// from. The prose templates need only a body; the rubric needs pre-structured
// questions and the exit ticket needs a discussion questions section. Batch
// callers use this to skip quietly instead of failing the render.
func CanRender(r *content.Record, t Template) bool {
	switch t {
	case TemplateRubric:
		return len(r.Questions) > 0
	case TemplateExitTicket:
		return len(ticketPrompts(r)) > 0
	}
	return true
}

// Request carries everything one render needs. Record and Template are
// required; assets are optional and already prepared by the caller.
type Request struct {
	Record   *content.Record
	Template Template

	Photo *layout.ImageAsset
	Logo  *layout.ImageAsset

	// Now feeds the footer date and the document creation timestamp.
	// Fixing it makes a render reproducible byte for byte.
	Now time.Time

	Logger   *slog.Logger
	Recorder metrics.Recorder

	// EngineOptions pass straight through to the layout engine.
	EngineOptions []layout.Option
}

// Result reports a finished render.
type Result struct {
	Pages int
}

const attribution = "Bright Sciences"

// Render composes the requested document and serializes it to w. The record
// is validated (and normalized in place) first; template drivers then paint
// into a fresh engine, and serialization happens exactly once at the end.
func Render(req Request, w io.Writer) (*Result, error) {
	if req.Record == nil {
		return nil, apperrors.ValidationError("render requires a record")
	}
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	rec := req.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	if err := req.Record.Validate(); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}
	if !req.Template.valid() {
		return nil, apperrors.ValidationFailed("template", "unknown template "+string(req.Template))
	}

	log = log.With(
		logfields.Template(string(req.Template)),
		logfields.Grade(string(req.Record.GradeLevel)),
		logfields.Subject(string(req.Record.Subject)),
	)

	start := time.Now()
	opts := append([]layout.Option{
		layout.WithLogger(log),
		layout.WithCreationDate(req.Now),
	}, req.EngineOptions...)
	engine := layout.New(buildFrame(req), opts...)

	composeStart := time.Now()
	var err error
	switch req.Template {
	case TemplateLessonGuide:
		err = renderLessonGuide(req, engine, log)
	case TemplateFiveE:
		err = renderFiveE(req, engine, log)
	case TemplateRubric:
		err = renderRubric(req, engine, log)
	case TemplateExitTicket:
		err = renderExitTicket(req, engine, log)
	}
	if err != nil {
		rec.IncStageResult("compose", metrics.ResultFatal)
		rec.IncRenderOutcome(string(req.Template), metrics.OutcomeFailed)
		return nil, err
	}
	if cerr := engine.Err(); cerr != nil {
		rec.IncStageResult("compose", metrics.ResultFatal)
		rec.IncRenderOutcome(string(req.Template), metrics.OutcomeFailed)
		return nil, apperrors.LayoutError(string(req.Template), cerr)
	}
	rec.ObserveStageDuration("compose", time.Since(composeStart))
	rec.IncStageResult("compose", metrics.ResultSuccess)

	serializeStart := time.Now()
	if err := engine.Output(w); err != nil {
		rec.IncStageResult("serialize", metrics.ResultFatal)
		rec.IncRenderOutcome(string(req.Template), metrics.OutcomeFailed)
		return nil, apperrors.WrapError(err, apperrors.CategoryOutput, "document serialization failed")
	}
	rec.ObserveStageDuration("serialize", time.Since(serializeStart))
	rec.IncStageResult("serialize", metrics.ResultSuccess)

	pages := engine.PageCount()
	rec.ObserveRenderDuration(string(req.Template), time.Since(start))
	rec.ObservePageCount(string(req.Template), pages)
	rec.IncRenderOutcome(string(req.Template), metrics.OutcomeSuccess)
	log.Info("document rendered",
		logfields.Pages(pages),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

	return &Result{Pages: pages}, nil
}

func buildFrame(req Request) layout.Frame {
	r := req.Record
	return layout.Frame{
		Title:       r.Title,
		Subtitle:    r.Subject.Label() + "  |  " + r.GradeLevel.Label(),
		DocType:     req.Template.Label(),
		BannerText:  bannerFor(req.Template),
		Attribution: attribution,
		Generated:   req.Now.Format("January 2, 2006"),
		Theme:       themeFor(req.Template),
		Logo:        req.Logo,
	}
}

// bannerFor names the document's audience in the footer band. Only the exit
// ticket goes home in a backpack; everything else stays with the teacher.
func bannerFor(t Template) string {
	if t == TemplateExitTicket {
		return "FOR STUDENT USE"
	}
	return "FOR TEACHER USE"
}
