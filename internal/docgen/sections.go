package docgen

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/brightsciences/lessonpress/internal/extract"
	"github.com/brightsciences/lessonpress/internal/layout"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/sanitize"
)

const sectionGap = 10

// renderSection paints one titled section: heading, body via paint, then any
// inline callouts pulled from the section. Returns false when the section has
// nothing to show; required sections log a warning, optional ones skip quietly.
func renderSection(e *layout.Engine, log *slog.Logger, spec extract.SectionSpec, sec extract.Section, paint func(body string)) bool {
	body := sanitize.Sanitize(sec.Body)
	if body == "" && len(sec.Spans) == 0 {
		if !spec.Optional {
			log.Warn("section missing from record body", logfields.Section(spec.Key))
		}
		return false
	}
	e.SectionHeading(spec.Label)
	if body != "" {
		paint(body)
	}
	renderSpanCallouts(e, sec)
	e.Spacer(sectionGap)
	return true
}

// renderSpanCallouts paints the teaching tip and UDL adaptation boxes for a
// section, in that order, when the record tagged them.
func renderSpanCallouts(e *layout.Engine, sec extract.Section) {
	if tip := sanitize.Sanitize(sec.Spans[extract.SpanTeachingTip]); tip != "" {
		e.Spacer(4)
		e.Callout("Teaching Tip", tip)
	}
	if udl := sanitize.Sanitize(sec.Spans[extract.SpanUDL]); udl != "" {
		e.Spacer(4)
		e.Callout("UDL Adaptation", udl)
	}
}

func paintFlow(e *layout.Engine) func(string) {
	return func(body string) { e.FlowText(body, layout.StyleBody) }
}

func paintBullets(e *layout.Engine) func(string) {
	return func(body string) { e.BulletList(extract.SplitListItems(body)) }
}

func paintNumbered(e *layout.Engine) func(string) {
	return func(body string) { e.NumberedList(extract.SplitListItems(body)) }
}

// paintVocabulary renders each list item as a bolded term with its
// definition. Items that don't split into term and definition fall back to a
// plain bullet so nothing from the record is dropped.
func paintVocabulary(e *layout.Engine) func(string) {
	return func(body string) {
		for _, item := range extract.SplitListItems(body) {
			if term, def, ok := splitTerm(item); ok {
				e.LabeledParagraph(term, def)
			} else {
				e.BulletList([]string{item})
			}
		}
	}
}

// maxTermLen bounds how long the left side of a split can be before we
// decide the separator was sentence punctuation, not a term delimiter.
const maxTermLen = 60

var termSeparators = []string{" — ", " – ", " - ", ": "}

// splitTerm divides a vocabulary item into term and definition at the
// earliest separator. Authors emit "Term - definition" and "Term: definition"
// about equally, so both are accepted.
func splitTerm(item string) (term, def string, ok bool) {
	at := -1
	width := 0
	for _, sep := range termSeparators {
		if i := strings.Index(item, sep); i >= 0 && (at < 0 || i < at) {
			at, width = i, len(sep)
		}
	}
	if at < 0 {
		return "", "", false
	}
	term = strings.TrimSpace(item[:at])
	def = strings.TrimSpace(item[at+width:])
	if term == "" || def == "" || utf8.RuneCountInString(term) > maxTermLen {
		return "", "", false
	}
	return term, def, true
}
