package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/brightsciences/lessonpress/internal/backfill"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/metrics"
	"github.com/brightsciences/lessonpress/internal/retry"
)

// BackfillCmd implements the 'backfill' command: render everything stale
// under the content root, tracked through the render ledger.
type BackfillCmd struct {
	Root        string   `help:"Content root (overrides the configuration)."`
	Output      string   `short:"o" help:"Output directory (overrides the configuration)."`
	Workers     int      `help:"Parallel record renders (overrides the configuration)."`
	GradeLevels []string `name:"grade-level" help:"Render each record at this grade level instead of its own (repeatable, overrides the configuration)."`
	Force       bool     `help:"Re-render documents even when the ledger says they are current."`
	Prune       bool     `help:"Drop ledger entries for records that no longer exist."`
	MetricsAddr string   `name:"metrics-addr" help:"Serve Prometheus metrics on this address for the duration of the run."`
}

func (b *BackfillCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	contentRoot := cfg.Content.Root
	if b.Root != "" {
		contentRoot = b.Root
	}
	outputDir := cfg.Content.Output
	if b.Output != "" {
		outputDir = b.Output
	}
	workers := cfg.Render.Workers
	if b.Workers > 0 {
		workers = b.Workers
	}
	grades := cfg.RenderGradeLevels()
	if len(b.GradeLevels) > 0 {
		grades, err = gradeLevelsFor(b.GradeLevels)
		if err != nil {
			return err
		}
	}

	ledger, err := backfill.NewLedger(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	// A run-scoped endpoint: long backfills over a large library are worth
	// scraping, and the server dies with the run.
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if b.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
		srv := &http.Server{Addr: b.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				g.Logger.Error("metrics server failed", logfields.Error(serveErr))
			}
		}()
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancelShutdown()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ctx, cancel := signalContext()
	defer cancel()

	sum, err := backfill.Run(ctx, backfill.Options{
		Root:         contentRoot,
		OutputDir:    outputDir,
		Templates:    cfg.RenderTemplates(),
		GradeLevels:  grades,
		Workers:      workers,
		LogoPath:     resolveLogo(root.Config, cfg),
		ImageDecodes: int64(cfg.Render.ImageDecodes),
		Force:        b.Force,
		Prune:        b.Prune,
		Policy:       retry.FromConfig(cfg.Render),
		Ledger:       ledger,
		Logger:       g.Logger,
		Recorder:     recorder,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Backfill %s: %d records, %d rendered, %d skipped, %d failed",
		sum.RunID, sum.Records, sum.Rendered, sum.Skipped, sum.Failed)
	if sum.Pruned > 0 {
		fmt.Printf(", %d ledger entries pruned", sum.Pruned)
	}
	fmt.Println()
	if sum.Failed > 0 {
		return fmt.Errorf("%d documents failed to render", sum.Failed)
	}
	return nil
}
