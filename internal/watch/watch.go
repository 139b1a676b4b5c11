// Package watch keeps a rendered output tree in sync with a content root. A
// filesystem watcher triggers debounced runs, and a periodic sweep catches
// anything the watcher missed. Runs are incremental through the render
// ledger, so a triggered pass only re-renders records whose content changed.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/brightsciences/lessonpress/internal/backfill"
	"github.com/brightsciences/lessonpress/internal/content"
	"github.com/brightsciences/lessonpress/internal/docgen"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/metrics"
	"github.com/brightsciences/lessonpress/internal/retry"
)

const (
	defaultDebounce = 300 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Options configures the watch service.
type Options struct {
	Root      string
	OutputDir string

	Templates    []docgen.Template
	GradeLevels  []content.GradeLevel
	Workers      int
	LogoPath     string
	ImageDecodes int64
	Policy       retry.Policy
	Ledger       *backfill.Ledger

	// Debounce is the quiet period after a filesystem event before a run
	// starts. Zero selects the default.
	Debounce time.Duration

	// SweepInterval schedules full passes that catch missed events and
	// prune ledger entries for deleted records. Zero disables sweeps.
	SweepInterval time.Duration

	// MetricsAddr serves /metrics and /healthz when non-empty.
	MetricsAddr    string
	MetricsHandler http.Handler

	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// runStatus tracks the most recent run outcome for health reporting.
type runStatus struct {
	mu         sync.RWMutex
	lastError  error
	lastRun    time.Time
	hasGoodRun bool
}

func (rs *runStatus) setError(err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.lastError = err
	rs.lastRun = time.Now()
}

func (rs *runStatus) setSuccess() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.lastError = nil
	rs.lastRun = time.Now()
	rs.hasGoodRun = true
}

func (rs *runStatus) snapshot() (lastError error, lastRun time.Time, hasGoodRun bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.lastError, rs.lastRun, rs.hasGoodRun
}

// Run renders the content root once, then watches it until ctx is canceled.
// Setup failures return an error; render failures inside a pass are reported
// through logs and /healthz so the service keeps watching.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}

	absRoot, err := resolveRoot(opts.Root)
	if err != nil {
		return err
	}

	status := &runStatus{}
	runOnce := func(runCtx context.Context) { runPass(runCtx, opts, absRoot, status, log) }

	// Initial pass brings the output tree current before events flow.
	runOnce(ctx)
	if ctx.Err() != nil {
		return nil
	}

	server := startMetricsServer(opts.MetricsAddr, opts.MetricsHandler, status, log)

	watcher, err := setupWatcher(absRoot, log)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	requests, trigger, stopDebounce := newDebouncer(opts.Debounce)
	startRunWorker(ctx, requests, runOnce)

	scheduler, err := startSweeps(opts.SweepInterval, log, requests)
	if err != nil {
		return err
	}

	log.Info("watching content root",
		slog.String("root", absRoot),
		slog.String("output", opts.OutputDir),
		slog.Duration("debounce", opts.Debounce))

	for {
		select {
		case <-ctx.Done():
			return shutdown(log, server, scheduler, stopDebounce)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(watcher, log, ev, trigger)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", logfields.Error(werr))
		}
	}
}

// runPass executes one ledger-driven backfill pass and records its outcome.
func runPass(ctx context.Context, opts Options, absRoot string, status *runStatus, log *slog.Logger) {
	sum, err := backfill.Run(ctx, backfill.Options{
		Root:         absRoot,
		OutputDir:    opts.OutputDir,
		Templates:    opts.Templates,
		GradeLevels:  opts.GradeLevels,
		Workers:      opts.Workers,
		LogoPath:     opts.LogoPath,
		ImageDecodes: opts.ImageDecodes,
		Prune:        true,
		Policy:       opts.Policy,
		Ledger:       opts.Ledger,
		Logger:       log,
		Recorder:     opts.Recorder,
	})
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("render pass failed", logfields.Error(err))
			status.setError(err)
		}
		return
	}
	if sum.Failed > 0 {
		status.setError(fmt.Errorf("%d documents failed to render", sum.Failed))
		return
	}
	status.setSuccess()
}

func resolveRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve content root: %w", err)
	}
	if st, statErr := os.Stat(absRoot); statErr != nil || !st.IsDir() {
		return "", fmt.Errorf("content root not found or not a directory: %s", absRoot)
	}
	return absRoot, nil
}

// setupWatcher creates the filesystem watcher and registers every directory
// under the root.
func setupWatcher(absRoot string, log *slog.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, log, absRoot); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

func addDirsRecursive(w *fsnotify.Watcher, log *slog.Logger, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}
		if addErr := w.Add(path); addErr != nil {
			log.Warn("watch add failed", slog.String("dir", path), logfields.Error(addErr))
		}
		return nil
	})
}

// newDebouncer returns a 1-buffered request channel plus a trigger that
// arms (or re-arms) the quiet-period timer, and a stop for shutdown. The
// buffer makes bursts of events coalesce into a single queued run.
func newDebouncer(quiet time.Duration) (chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	requests := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return requests, trigger, stop
}

// startRunWorker drains run requests one at a time. Requests arriving while
// a pass is running sit in the channel buffer and start the next pass as
// soon as the current one finishes.
func startRunWorker(ctx context.Context, requests chan struct{}, run func(context.Context)) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-requests:
				run(ctx)
			}
		}
	}()
}

// startSweeps schedules periodic full passes. The sweep only queues a run
// request; the worker serializes it with event-triggered passes.
func startSweeps(interval time.Duration, log *slog.Logger, requests chan struct{}) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create sweep scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			log.Debug("sweep pass requested")
			select {
			case requests <- struct{}{}:
			default:
			}
		}),
		gocron.WithName("content-sweep"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}
	s.Start()
	log.Info("periodic sweep scheduled", slog.Duration("interval", interval))
	return s, nil
}

// startMetricsServer serves /metrics and /healthz when an address is
// configured. Returns nil when disabled.
func startMetricsServer(addr string, handler http.Handler, status *runStatus, log *slog.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	if handler != nil {
		mux.Handle("/metrics", handler)
	}
	mux.HandleFunc("/healthz", healthHandler(status))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", logfields.Error(err))
		}
	}()
	log.Info("metrics server listening", slog.String("addr", addr))
	return srv
}

func healthHandler(status *runStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		lastErr, lastRun, hasGoodRun := status.snapshot()
		resp := map[string]any{
			"status":       "ok",
			"has_good_run": hasGoodRun,
		}
		if !lastRun.IsZero() {
			resp["last_run"] = lastRun.UTC().Format(time.RFC3339)
		}
		w.Header().Set("Content-Type", "application/json")
		if lastErr != nil {
			resp["status"] = "degraded"
			resp["error"] = lastErr.Error()
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// handleEvent filters noise, keeps new directories watched, and arms the
// debounce timer.
func handleEvent(watcher *fsnotify.Watcher, log *slog.Logger, ev fsnotify.Event, trigger func()) {
	if ignoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, log, ev.Name)
		}
	}
	log.Debug("content change detected", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// ignoreEvent reports whether a filesystem event should not trigger a run.
// Hidden files, editor droppings, and underscore-prefixed names are noise.
func ignoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}

func shutdown(log *slog.Logger, server *http.Server, scheduler gocron.Scheduler, stopDebounce func()) error {
	log.Info("shutting down watch service")
	stopDebounce()
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Warn("sweep scheduler shutdown error", logfields.Error(err))
		}
	}
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics server shutdown error", logfields.Error(err))
		}
	}
	return nil
}
