package config

// Default values applied after normalization. Zero values in user config
// mean "not set" for every field here.
const (
	DefaultContentRoot  = "./content"
	DefaultOutputDir    = "./dist"
	DefaultLedgerPath   = ".lessonpress/ledger.db"
	DefaultWorkers      = 4
	DefaultImageDecodes = 2
	DefaultMaxRetries   = 2
	DefaultInitialDelay = "1s"
	DefaultMaxDelay     = "30s"
	DefaultDebounceMS   = 300
	DefaultSweep        = "15m"
)

// DefaultTemplates is every template, in build order.
var DefaultTemplates = []string{"lesson-guide", "5e-plan", "rubric", "exit-ticket"}

func applyDefaults(c *Config) {
	if c.Content.Root == "" {
		c.Content.Root = DefaultContentRoot
	}
	if c.Content.Output == "" {
		c.Content.Output = DefaultOutputDir
	}
	if len(c.Render.Templates) == 0 {
		c.Render.Templates = append([]string(nil), DefaultTemplates...)
	}
	if c.Render.Workers == 0 {
		c.Render.Workers = DefaultWorkers
	}
	if c.Render.ImageDecodes == 0 {
		c.Render.ImageDecodes = DefaultImageDecodes
	}
	if c.Render.MaxRetries == 0 {
		c.Render.MaxRetries = DefaultMaxRetries
	}
	if c.Render.RetryBackoff == "" {
		c.Render.RetryBackoff = RetryBackoffLinear
	}
	if c.Render.RetryInitialDelay == "" {
		c.Render.RetryInitialDelay = DefaultInitialDelay
	}
	if c.Render.RetryMaxDelay == "" {
		c.Render.RetryMaxDelay = DefaultMaxDelay
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = DefaultLedgerPath
	}
	if c.Watch != nil {
		if c.Watch.DebounceMS == 0 {
			c.Watch.DebounceMS = DefaultDebounceMS
		}
		if c.Watch.SweepInterval == "" {
			c.Watch.SweepInterval = DefaultSweep
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}
