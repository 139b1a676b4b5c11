package docgen

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/brightsciences/lessonpress/internal/content"
	apperrors "github.com/brightsciences/lessonpress/internal/errors"
	"github.com/brightsciences/lessonpress/internal/imaging"
	"github.com/brightsciences/lessonpress/internal/layout"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/metrics"
)

// FileRequest renders one record file to one PDF on disk.
type FileRequest struct {
	RecordPath string
	Template   Template

	// Record, when non-nil, is the already-loaded record for RecordPath and
	// skips the load stage. Batch callers load once per record and reuse it
	// across templates.
	Record *content.Record

	// OutputPath overrides the conventional name next to the record.
	OutputPath string

	// LogoPath is the fallback banner logo for records that do not name
	// one. Relative paths resolve against the record file.
	LogoPath string

	// DecodeGate bounds concurrent image decodes across parallel renders.
	// Nil means unbounded.
	DecodeGate *semaphore.Weighted

	Now           time.Time
	Logger        *slog.Logger
	Recorder      metrics.Recorder
	EngineOptions []layout.Option
}

// RenderFile loads the record, resolves its image assets, renders the
// document, and writes it atomically (temp file plus rename) so watchers of
// the output directory never observe a half-written PDF.
func RenderFile(ctx context.Context, fr FileRequest) (*Result, error) {
	log := fr.Logger
	if log == nil {
		log = slog.Default()
	}
	rec := fr.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	log = log.With(logfields.Record(fr.RecordPath), logfields.Template(string(fr.Template)))

	record := fr.Record
	if record == nil {
		loadStart := time.Now()
		var err error
		record, err = content.LoadRecord(fr.RecordPath)
		if err != nil {
			rec.IncStageResult("load", metrics.ResultFatal)
			rec.IncRenderOutcome(string(fr.Template), metrics.OutcomeFailed)
			return nil, apperrors.RecordError(fr.RecordPath, err)
		}
		rec.ObserveStageDuration("load", time.Since(loadStart))
		rec.IncStageResult("load", metrics.ResultSuccess)
	}

	if err := ctx.Err(); err != nil {
		rec.IncRenderOutcome(string(fr.Template), metrics.OutcomeCanceled)
		return nil, apperrors.WrapError(err, apperrors.CategoryRuntime, "render canceled")
	}

	photo, err := loadAsset(ctx, log, fr.DecodeGate, fr.RecordPath, record.ImagePath, "photo")
	if err != nil {
		rec.IncRenderOutcome(string(fr.Template), metrics.OutcomeCanceled)
		return nil, err
	}
	logoRef := record.LogoPath
	if logoRef == "" {
		logoRef = fr.LogoPath
	}
	logo, err := loadAsset(ctx, log, fr.DecodeGate, fr.RecordPath, logoRef, "logo")
	if err != nil {
		rec.IncRenderOutcome(string(fr.Template), metrics.OutcomeCanceled)
		return nil, err
	}

	out := fr.OutputPath
	if out == "" {
		out = filepath.Join(filepath.Dir(fr.RecordPath), OutputName(record.Title, fr.Template))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		rec.IncStageResult("write", metrics.ResultFatal)
		rec.IncRenderOutcome(string(fr.Template), metrics.OutcomeFailed)
		return nil, apperrors.OutputError(out, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(out), ".lessonpress-*.pdf")
	if err != nil {
		rec.IncStageResult("write", metrics.ResultFatal)
		rec.IncRenderOutcome(string(fr.Template), metrics.OutcomeFailed)
		return nil, apperrors.OutputError(out, err)
	}

	res, renderErr := Render(Request{
		Record:        record,
		Template:      fr.Template,
		Photo:         photo,
		Logo:          logo,
		Now:           fr.Now,
		Logger:        log,
		Recorder:      rec,
		EngineOptions: fr.EngineOptions,
	}, tmp)
	closeErr := tmp.Close()
	if renderErr != nil {
		os.Remove(tmp.Name())
		return nil, renderErr
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		rec.IncStageResult("write", metrics.ResultFatal)
		return nil, apperrors.OutputError(out, closeErr)
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		rec.IncStageResult("write", metrics.ResultFatal)
		return nil, apperrors.OutputError(out, err)
	}
	rec.IncStageResult("write", metrics.ResultSuccess)

	log.Info("document written", logfields.Output(out), logfields.Pages(res.Pages))
	return res, nil
}

// loadAsset resolves an image reference relative to the record file and
// prepares it for the canvas. A broken image degrades the document (it
// renders without the picture) instead of failing the run; only gate
// acquisition can fail, and only by cancellation.
func loadAsset(ctx context.Context, log *slog.Logger, gate *semaphore.Weighted, recordPath, ref, name string) (*layout.ImageAsset, error) {
	if ref == "" {
		return nil, nil
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(recordPath), ref)
	}
	if gate != nil {
		if err := gate.Acquire(ctx, 1); err != nil {
			return nil, apperrors.WrapError(err, apperrors.CategoryRuntime, "render canceled")
		}
		defer gate.Release(1)
	}
	asset, err := imaging.Load(path, name)
	if err != nil {
		log.Warn("image unusable, rendering without it", logfields.Error(apperrors.ImageError(path, err)))
		return nil, nil
	}
	return asset, nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases a title into a filesystem-safe name.
func Slug(title string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "document"
	}
	return s
}

// OutputName is the conventional file name for a rendered document,
// e.g. "how-shadows-change_lesson-guide.pdf".
func OutputName(title string, t Template) string {
	return Slug(title) + "_" + string(t) + ".pdf"
}

// OutputNameForGrade names a grade-level variant of a document, e.g.
// "how-shadows-change_grade-3_lesson-guide.pdf". Used when one record is
// expanded across several grade levels and the plain name would collide.
func OutputNameForGrade(title string, g content.GradeLevel, t Template) string {
	return Slug(title) + "_" + Slug(g.Label()) + "_" + string(t) + ".pdf"
}
