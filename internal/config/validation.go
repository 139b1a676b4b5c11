package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidateConfig validates the complete configuration after normalization
// and defaults.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateContent(); err != nil {
		return err
	}
	if err := cv.validateRender(); err != nil {
		return err
	}
	if err := cv.validateWatch(); err != nil {
		return err
	}
	return nil
}

func (cv *configurationValidator) validateContent() error {
	c := cv.config.Content
	if strings.TrimSpace(c.Root) == "" {
		return errors.New("content.root cannot be empty")
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("content.output cannot be empty")
	}
	if c.Root == c.Output {
		return errors.New("content.output must differ from content.root")
	}
	return nil
}

func (cv *configurationValidator) validateRender() error {
	r := cv.config.Render
	if r.Workers < 1 || r.Workers > 64 {
		return fmt.Errorf("render.workers must be between 1 and 64, got %d", r.Workers)
	}
	if r.ImageDecodes < 1 || r.ImageDecodes > r.Workers*4 {
		return fmt.Errorf("render.image_decodes must be between 1 and %d, got %d", r.Workers*4, r.ImageDecodes)
	}
	if r.MaxRetries > 10 {
		return fmt.Errorf("render.max_retries must be at most 10, got %d", r.MaxRetries)
	}
	if _, err := time.ParseDuration(r.RetryInitialDelay); err != nil {
		return fmt.Errorf("render.retry_initial_delay: %w", err)
	}
	if _, err := time.ParseDuration(r.RetryMaxDelay); err != nil {
		return fmt.Errorf("render.retry_max_delay: %w", err)
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	w := cv.config.Watch
	if w == nil {
		return nil
	}
	if w.DebounceMS > 10000 {
		return fmt.Errorf("watch.debounce_ms must be at most 10000, got %d", w.DebounceMS)
	}
	if _, err := time.ParseDuration(w.SweepInterval); err != nil {
		return fmt.Errorf("watch.sweep_interval: %w", err)
	}
	if w.MetricsAddr != "" && !strings.Contains(w.MetricsAddr, ":") {
		return fmt.Errorf("watch.metrics_addr must be host:port or :port, got %q", w.MetricsAddr)
	}
	return nil
}

// RetryDelays returns the parsed retry delay bounds. Call after Load; the
// validator guarantees both parse.
func (r RenderConfig) RetryDelays() (initial, max time.Duration) {
	initial, _ = time.ParseDuration(r.RetryInitialDelay)
	max, _ = time.ParseDuration(r.RetryMaxDelay)
	return initial, max
}
