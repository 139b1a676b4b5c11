package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/brightsciences/lessonpress/internal/config"
	"github.com/brightsciences/lessonpress/internal/content"
	"github.com/brightsciences/lessonpress/internal/docgen"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"lessonpress.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render   RenderCmd   `cmd:"" help:"Render documents for one record file"`
	Backfill BackfillCmd `cmd:"" help:"Render every stale document under the content root"`
	Watch    WatchCmd    `cmd:"" help:"Watch the content root and re-render records as they change"`
	Status   StatusCmd   `cmd:"" help:"Show render ledger counts"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; set up provisional logging before any
// command loads the configuration.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration and reconfigures logging from it. The
// verbose flag always wins over the configured level.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(cfg.Logging, root.Verbose)
	g.Logger = slog.Default()
	return cfg, nil
}

func configureLogging(lc config.LoggingConfig, verbose bool) {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// templatesFor resolves the template set for a command: an explicit override
// narrows to one template, otherwise the configured list applies.
func templatesFor(cfg *config.Config, override string) ([]docgen.Template, error) {
	if override == "" {
		return cfg.RenderTemplates(), nil
	}
	tmpl, err := docgen.NormalizeTemplate(override)
	if err != nil {
		return nil, err
	}
	return []docgen.Template{tmpl}, nil
}

// gradeLevelsFor canonicalizes grade levels given on the command line.
func gradeLevelsFor(raw []string) ([]content.GradeLevel, error) {
	out := make([]content.GradeLevel, 0, len(raw))
	for _, r := range raw {
		g := content.NormalizeGradeLevel(r)
		if g == "" {
			return nil, fmt.Errorf("unknown grade level %q (valid: K-5, engineering-design)", r)
		}
		out = append(out, g)
	}
	return out, nil
}

// resolveLogo makes the configured logo path absolute relative to the
// configuration file, so renders see the same logo regardless of the
// working directory.
func resolveLogo(configPath string, cfg *config.Config) string {
	logo := cfg.Content.Logo
	if logo == "" || filepath.IsAbs(logo) {
		return logo
	}
	return filepath.Join(filepath.Dir(configPath), logo)
}

// signalContext returns a context canceled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
