package docgen

import (
	"log/slog"

	"github.com/brightsciences/lessonpress/internal/extract"
	"github.com/brightsciences/lessonpress/internal/layout"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/sanitize"
)

// lessonSections is the authoring contract for lesson guide bodies. Keys are
// stable identifiers, Match phrases tolerate the heading drift (emoji
// prefixes, colons, casing) the generation pipeline produces.
var lessonSections = []extract.SectionSpec{
	{Key: "description", Label: "Lesson Description", Match: []string{"lesson description", "description", "lesson overview"}},
	{Key: "phenomenon", Label: "Anchoring Phenomenon", Match: []string{"anchoring phenomenon", "phenomenon"}, Spans: true},
	{Key: "concepts", Label: "Core Concepts", Match: []string{"core concepts", "key concepts", "big ideas"}, Spans: true},
	{Key: "misconceptions", Label: "Common Misconceptions", Match: []string{"misconception"}, Spans: true},
	{Key: "standards", Label: "Standards Alignment", Match: []string{"standards alignment", "standards", "ngss"}},
	{Key: "discussion", Label: "Discussion Questions", Match: []string{"discussion questions", "discussion"}},
	{Key: "vocabulary", Label: "Vocabulary", Match: []string{"vocabulary", "key terms"}},
	{Key: "materials", Label: "Materials", Match: []string{"materials"}},
	{Key: "extensions", Label: "Extension Activities", Match: []string{"extension"}, Optional: true, Spans: true},
	{Key: "crosscurricular", Label: "Cross-Curricular Connections", Match: []string{"cross-curricular", "cross curricular"}, Optional: true},
	{Key: "career", Label: "Career Connection", Match: []string{"career"}, Optional: true},
	{Key: "resources", Label: "Additional Resources", Match: []string{"additional resources", "resources", "further reading"}, Optional: true},
}

// renderLessonGuide paints the teacher-facing guide: description with the
// phenomenon photo beside it, then the remaining sections in fixed order
// regardless of how the record body ordered them.
func renderLessonGuide(req Request, e *layout.Engine, log *slog.Logger) error {
	sections := extract.Extract(req.Record.Body, lessonSections)

	desc := sanitize.Sanitize(sections["description"].Body)
	switch {
	case desc != "":
		e.SectionHeading("Lesson Description")
		e.SideBySide(desc, req.Photo, photoCaption(req))
		renderSpanCallouts(e, sections["description"])
		e.Spacer(sectionGap)
	case req.Photo != nil:
		// No description text, but the photo still anchors page one.
		e.SideBySide("", req.Photo, photoCaption(req))
		e.Spacer(sectionGap)
	default:
		log.Warn("section missing from record body", logfields.Section("description"))
	}

	for _, spec := range lessonSections[1:] {
		sec := sections[spec.Key]
		switch spec.Key {
		case "standards", "materials":
			renderSection(e, log, spec, sec, paintBullets(e))
		case "discussion":
			renderSection(e, log, spec, sec, paintNumbered(e))
		case "vocabulary":
			renderSection(e, log, spec, sec, paintVocabulary(e))
		case "misconceptions":
			renderSection(e, log, spec, sec, paintMisconceptions(e))
		default:
			renderSection(e, log, spec, sec, paintFlow(e))
		}
	}
	return nil
}

func photoCaption(req Request) string {
	if req.Photo == nil {
		return ""
	}
	return req.Record.Title
}

// paintMisconceptions prefers a bulleted rendering since authors usually
// list one misconception per line, but tolerates prose paragraphs.
func paintMisconceptions(e *layout.Engine) func(string) {
	return func(body string) {
		items := extract.SplitListItems(body)
		if len(items) > 1 {
			e.BulletList(items)
			return
		}
		e.FlowText(body, layout.StyleBody)
	}
}
