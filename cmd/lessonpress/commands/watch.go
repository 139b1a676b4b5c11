package commands

import (
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/brightsciences/lessonpress/internal/backfill"
	"github.com/brightsciences/lessonpress/internal/config"
	"github.com/brightsciences/lessonpress/internal/metrics"
	"github.com/brightsciences/lessonpress/internal/retry"
	"github.com/brightsciences/lessonpress/internal/watch"
)

// WatchCmd implements the 'watch' command: continuous rendering driven by
// filesystem events plus a periodic sweep.
type WatchCmd struct {
	Root        string `help:"Content root (overrides the configuration)."`
	Output      string `short:"o" help:"Output directory (overrides the configuration)."`
	MetricsAddr string `name:"metrics-addr" help:"Metrics listen address (overrides the configuration)."`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	wc := cfg.Watch
	if wc == nil {
		wc = &config.WatchConfig{}
	}
	debounce := time.Duration(wc.DebounceMS) * time.Millisecond
	var sweep time.Duration
	if wc.SweepInterval != "" {
		sweep, err = time.ParseDuration(wc.SweepInterval)
		if err != nil {
			return fmt.Errorf("parse sweep_interval: %w", err)
		}
	}
	metricsAddr := wc.MetricsAddr
	if w.MetricsAddr != "" {
		metricsAddr = w.MetricsAddr
	}

	contentRoot := cfg.Content.Root
	if w.Root != "" {
		contentRoot = w.Root
	}
	outputDir := cfg.Content.Output
	if w.Output != "" {
		outputDir = w.Output
	}

	ledger, err := backfill.NewLedger(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var handler http.Handler
	if metricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		handler = metrics.HTTPHandler(reg)
	}

	ctx, cancel := signalContext()
	defer cancel()

	return watch.Run(ctx, watch.Options{
		Root:           contentRoot,
		OutputDir:      outputDir,
		Templates:      cfg.RenderTemplates(),
		GradeLevels:    cfg.RenderGradeLevels(),
		Workers:        cfg.Render.Workers,
		LogoPath:       resolveLogo(root.Config, cfg),
		ImageDecodes:   int64(cfg.Render.ImageDecodes),
		Policy:         retry.FromConfig(cfg.Render),
		Ledger:         ledger,
		Debounce:       debounce,
		SweepInterval:  sweep,
		MetricsAddr:    metricsAddr,
		MetricsHandler: handler,
		Logger:         g.Logger,
		Recorder:       recorder,
	})
}
