package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRecord     = "record"
	KeyTemplate   = "template"
	KeyGrade      = "grade_level"
	KeySubject    = "subject"
	KeySection    = "section"
	KeyPage       = "page"
	KeyPages      = "pages"
	KeyRunID      = "run_id"
	KeyOutput     = "output_path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Record(path string) slog.Attr    { return slog.String(KeyRecord, path) }
func Template(t string) slog.Attr     { return slog.String(KeyTemplate, t) }
func Grade(g string) slog.Attr        { return slog.String(KeyGrade, g) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Page(n int) slog.Attr            { return slog.Int(KeyPage, n) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Output(path string) slog.Attr    { return slog.String(KeyOutput, path) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
