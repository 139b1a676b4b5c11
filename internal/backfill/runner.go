// Package backfill renders every stale document under a content root. It
// discovers record files, fingerprints them, consults the render ledger to
// skip work that is already done, and fans the rest out across a bounded
// worker pool with retry on transient failures.
package backfill

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/brightsciences/lessonpress/internal/content"
	"github.com/brightsciences/lessonpress/internal/docgen"
	apperrors "github.com/brightsciences/lessonpress/internal/errors"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/metrics"
	"github.com/brightsciences/lessonpress/internal/retry"
)

// Options configures one backfill run.
type Options struct {
	Root      string // content root to discover records under
	OutputDir string // output tree, mirrors the root's directory layout

	Templates []docgen.Template
	Workers   int

	// GradeLevels expands every record across these levels, overriding the
	// record's own grade. Output names gain a grade segment so the variants
	// do not collide. Empty renders each record at its own level.
	GradeLevels []content.GradeLevel

	// LogoPath is the fallback banner logo for records that do not name one.
	LogoPath string

	// ImageDecodes bounds concurrent image decodes across all workers.
	// Zero means unbounded.
	ImageDecodes int64

	// Force renders everything regardless of ledger state.
	Force bool

	// Prune removes ledger entries for records that no longer exist.
	Prune bool

	Policy   retry.Policy
	Ledger   *Ledger // nil disables skip tracking
	Logger   *slog.Logger
	Recorder metrics.Recorder
	Now      time.Time
}

// Summary reports what one run did.
type Summary struct {
	RunID    string
	Records  int
	Rendered int
	Skipped  int
	Failed   int
	Pruned   int
}

// Run executes one backfill pass. Per-record failures are counted in the
// summary and do not abort the run; only cancellation or a setup failure
// returns an error.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	runID := uuid.NewString()
	log = log.With(logfields.RunID(runID))

	discoverStart := time.Now()
	records, err := Discover(opts.Root)
	if err != nil {
		rec.IncStageResult("discover", metrics.ResultFatal)
		return nil, err
	}
	rec.ObserveStageDuration("discover", time.Since(discoverStart))
	rec.IncStageResult("discover", metrics.ResultSuccess)
	log.Info("backfill run starting",
		slog.Int("records", len(records)),
		slog.Int("workers", opts.Workers),
		slog.Bool("force", opts.Force))

	var gate *semaphore.Weighted
	if opts.ImageDecodes > 0 {
		gate = semaphore.NewWeighted(opts.ImageDecodes)
	}

	var rendered, skipped, failed, inflight atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, recordPath := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec.SetRenderConcurrency(int(inflight.Add(1)))
			defer func() { rec.SetRenderConcurrency(int(inflight.Add(-1))) }()

			r, s, f, err := processRecord(gctx, opts, log, rec, gate, runID, recordPath)
			rendered.Add(int64(r))
			skipped.Add(int64(s))
			failed.Add(int64(f))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.WrapError(err, apperrors.CategoryRuntime, "backfill canceled")
	}

	summary := &Summary{
		RunID:    runID,
		Records:  len(records),
		Rendered: int(rendered.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
	}

	if opts.Prune && opts.Ledger != nil {
		keep := make(map[string]bool, len(records))
		for _, p := range records {
			keep[relRecordPath(opts.Root, p)] = true
		}
		pruned, err := opts.Ledger.Prune(ctx, keep)
		if err != nil {
			log.Warn("ledger prune failed", logfields.Error(err))
		}
		summary.Pruned = pruned
	}

	log.Info("backfill run finished",
		slog.Int("rendered", summary.Rendered),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Int("pruned", summary.Pruned))
	return summary, nil
}

// processRecord renders every requested template, at every requested grade
// level, for one record. The error return is cancellation only; render
// failures are counted and recorded in the ledger.
func processRecord(ctx context.Context, opts Options, log *slog.Logger, rec metrics.Recorder, gate *semaphore.Weighted, runID, recordPath string) (rendered, skipped, failed int, err error) {
	relPath := relRecordPath(opts.Root, recordPath)
	rlog := log.With(logfields.Record(relPath))

	levels := opts.GradeLevels
	matrix := len(levels) > 0

	record, lerr := content.LoadRecord(recordPath)
	if lerr != nil {
		rlog.Error("record unusable, skipping", logfields.Error(lerr))
		// The grade is unknowable here, so the failure rows carry none.
		for _, tmpl := range opts.Templates {
			writeLedger(ctx, opts.Ledger, rlog, Entry{
				RecordPath: relPath,
				Template:   string(tmpl),
				Status:     StatusFailed,
				RunID:      runID,
				LastError:  lerr.Error(),
			})
		}
		n := len(opts.Templates)
		if matrix {
			n *= len(levels)
		}
		return 0, 0, n, nil
	}
	if opts.Ledger != nil {
		if cerr := opts.Ledger.ClearUnreadable(ctx, relPath); cerr != nil {
			rlog.Warn("ledger cleanup failed", logfields.Error(cerr))
		}
	}

	fp, ferr := Fingerprint(record)
	if ferr != nil {
		rlog.Error("record fingerprint failed, skipping", logfields.Error(ferr))
		n := len(opts.Templates)
		if matrix {
			n *= len(levels)
		}
		return 0, 0, n, nil
	}

	if !matrix {
		levels = []content.GradeLevel{record.GradeLevel}
	}

	outDir := filepath.Join(opts.OutputDir, filepath.Dir(relPath))
	for _, level := range levels {
		unit := *record
		unit.GradeLevel = level
		for _, tmpl := range opts.Templates {
			if cerr := ctx.Err(); cerr != nil {
				return rendered, skipped, failed, cerr
			}

			// Assessment documents only exist for records that carry their
			// inputs: rubric questions, or discussion questions to prompt on.
			if !docgen.CanRender(&unit, tmpl) {
				rlog.Debug("record lacks the template's inputs, skipping", logfields.Template(string(tmpl)))
				skipped++
				continue
			}

			name := docgen.OutputName(unit.Title, tmpl)
			if matrix {
				name = docgen.OutputNameForGrade(unit.Title, level, tmpl)
			}
			out := filepath.Join(outDir, name)
			if !opts.Force && opts.Ledger != nil {
				entry, gerr := opts.Ledger.Get(ctx, relPath, string(tmpl), string(level))
				if gerr != nil {
					rlog.Warn("ledger read failed, rendering anyway", logfields.Error(gerr))
				}
				if entry != nil && entry.Status == StatusRendered && entry.Fingerprint == fp && fileExists(entry.OutputPath) {
					rec.IncRenderOutcome(string(tmpl), metrics.OutcomeSkipped)
					skipped++
					continue
				}
			}

			res, attempts, rerr := renderWithRetry(ctx, opts, rlog, rec, gate, &unit, recordPath, out, tmpl)
			if rerr != nil {
				if ctx.Err() != nil {
					return rendered, skipped, failed, ctx.Err()
				}
				rlog.Error("render failed", logfields.Template(string(tmpl)), logfields.Error(rerr))
				failed++
				writeLedger(ctx, opts.Ledger, rlog, Entry{
					RecordPath:  relPath,
					Template:    string(tmpl),
					GradeLevel:  string(level),
					Fingerprint: fp,
					Status:      StatusFailed,
					Attempts:    attempts,
					RunID:       runID,
					LastError:   rerr.Error(),
				})
				continue
			}

			rendered++
			rlog.Debug("document rendered", logfields.Template(string(tmpl)), logfields.Pages(res.Pages))
			writeLedger(ctx, opts.Ledger, rlog, Entry{
				RecordPath:  relPath,
				Template:    string(tmpl),
				GradeLevel:  string(level),
				Fingerprint: fp,
				Status:      StatusRendered,
				Attempts:    attempts,
				RunID:       runID,
				OutputPath:  out,
			})
		}
	}
	return rendered, skipped, failed, nil
}

// renderWithRetry runs one render, retrying transient failures per policy.
func renderWithRetry(ctx context.Context, opts Options, rlog *slog.Logger, rec metrics.Recorder, gate *semaphore.Weighted, record *content.Record, recordPath, out string, tmpl docgen.Template) (*docgen.Result, int, error) {
	attempts := 0
	for {
		attempts++
		res, err := docgen.RenderFile(ctx, docgen.FileRequest{
			RecordPath: recordPath,
			Record:     record,
			Template:   tmpl,
			OutputPath: out,
			LogoPath:   opts.LogoPath,
			DecodeGate: gate,
			Now:        opts.Now,
			Logger:     rlog,
			Recorder:   rec,
		})
		if err == nil {
			return res, attempts, nil
		}
		if !apperrors.IsRetryable(err) {
			return nil, attempts, err
		}
		if attempts > opts.Policy.MaxRetries {
			rec.IncRenderRetryExhausted(string(tmpl))
			return nil, attempts, err
		}
		rec.IncRenderRetry(string(tmpl))
		delay := opts.Policy.Delay(attempts)
		rlog.Warn("transient render failure, retrying",
			logfields.Template(string(tmpl)),
			slog.Int("attempt", attempts),
			slog.Duration("delay", delay),
			logfields.Error(err))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, attempts, apperrors.WrapError(ctx.Err(), apperrors.CategoryRuntime, "render canceled")
		}
	}
}

// writeLedger records an attempt outcome, logging rather than failing when
// the ledger itself is unavailable.
func writeLedger(ctx context.Context, l *Ledger, rlog *slog.Logger, e Entry) {
	if l == nil {
		return
	}
	if err := l.Upsert(ctx, e); err != nil {
		rlog.Warn("ledger write failed", logfields.Error(err))
	}
}

func relRecordPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
