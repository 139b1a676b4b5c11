package config

import (
	"fmt"
	"strings"

	"github.com/brightsciences/lessonpress/internal/content"
	"github.com/brightsciences/lessonpress/internal/docgen"
)

// NormalizationResult captures adjustments and warnings from the
// normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and bounded fields prior to
// default application. It mutates the config in place and returns a result
// describing any coercions. Unknown template names are a hard error since
// silently skipping a requested document would go unnoticed until a teacher
// misses a handout.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}
	if err := normalizeTemplates(&c.Render, res); err != nil {
		return nil, err
	}
	if err := normalizeGradeLevels(&c.Render, res); err != nil {
		return nil, err
	}
	normalizeRetry(&c.Render, res)
	normalizeLogging(&c.Logging, res)
	normalizeWatch(c.Watch)
	return res, nil
}

func normalizeTemplates(r *RenderConfig, res *NormalizationResult) error {
	seen := make(map[string]bool, len(r.Templates))
	canonical := r.Templates[:0]
	for _, raw := range r.Templates {
		t, err := docgen.NormalizeTemplate(raw)
		if err != nil {
			return fmt.Errorf("render.templates: unknown template %q", raw)
		}
		if seen[string(t)] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("render.templates: duplicate %q dropped", raw))
			continue
		}
		seen[string(t)] = true
		if raw != string(t) {
			res.Warnings = append(res.Warnings, warnChanged("render.templates", raw, string(t)))
		}
		canonical = append(canonical, string(t))
	}
	r.Templates = canonical
	return nil
}

// normalizeGradeLevels canonicalizes the grade expansion list. Unknown grades
// are a hard error for the same reason unknown templates are: a typo here
// would silently drop an entire tier of documents.
func normalizeGradeLevels(r *RenderConfig, res *NormalizationResult) error {
	seen := make(map[string]bool, len(r.GradeLevels))
	canonical := r.GradeLevels[:0]
	for _, raw := range r.GradeLevels {
		g := content.NormalizeGradeLevel(raw)
		if g == "" {
			return fmt.Errorf("render.grade_levels: unknown grade level %q", raw)
		}
		if seen[string(g)] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("render.grade_levels: duplicate %q dropped", raw))
			continue
		}
		seen[string(g)] = true
		if raw != string(g) {
			res.Warnings = append(res.Warnings, warnChanged("render.grade_levels", raw, string(g)))
		}
		canonical = append(canonical, string(g))
	}
	r.GradeLevels = canonical
	return nil
}

func normalizeRetry(r *RenderConfig, res *NormalizationResult) {
	if rb := NormalizeRetryBackoff(string(r.RetryBackoff)); rb != "" {
		if r.RetryBackoff != rb {
			res.Warnings = append(res.Warnings, warnChanged("render.retry_backoff", string(r.RetryBackoff), string(rb)))
			r.RetryBackoff = rb
		}
	} else if strings.TrimSpace(string(r.RetryBackoff)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("render.retry_backoff", string(r.RetryBackoff), string(RetryBackoffFixed)))
		r.RetryBackoff = RetryBackoffFixed
	}
	if r.Workers < 0 {
		r.Workers = 0
	}
	if r.ImageDecodes < 0 {
		r.ImageDecodes = 0
	}
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	if lvl := NormalizeLogLevel(string(l.Level)); string(l.Level) != "" && l.Level != lvl {
		res.Warnings = append(res.Warnings, warnChanged("logging.level", string(l.Level), string(lvl)))
		l.Level = lvl
	}
	if f := NormalizeLogFormat(string(l.Format)); string(l.Format) != "" && l.Format != f {
		res.Warnings = append(res.Warnings, warnChanged("logging.format", string(l.Format), string(f)))
		l.Format = f
	}
}

func normalizeWatch(w *WatchConfig) {
	if w == nil {
		return
	}
	if w.DebounceMS < 0 {
		w.DebounceMS = 0
	}
}

// RenderTemplates returns the configured template list as typed values.
// Only valid after Load, which canonicalizes every entry.
func (c *Config) RenderTemplates() []docgen.Template {
	out := make([]docgen.Template, len(c.Render.Templates))
	for i, t := range c.Render.Templates {
		out[i] = docgen.Template(t)
	}
	return out
}

// RenderGradeLevels returns the configured grade expansion list as typed
// values. Only valid after Load, which canonicalizes every entry.
func (c *Config) RenderGradeLevels() []content.GradeLevel {
	out := make([]content.GradeLevel, len(c.Render.GradeLevels))
	for i, g := range c.Render.GradeLevels {
		out[i] = content.GradeLevel(g)
	}
	return out
}

func warnChanged(field, from, to string) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
