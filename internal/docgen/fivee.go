package docgen

import (
	"log/slog"

	"github.com/brightsciences/lessonpress/internal/content"
	"github.com/brightsciences/lessonpress/internal/extract"
	"github.com/brightsciences/lessonpress/internal/layout"
	"github.com/brightsciences/lessonpress/internal/logfields"
	"github.com/brightsciences/lessonpress/internal/sanitize"
)

var fiveESections = []extract.SectionSpec{
	{Key: "overview", Label: "Lesson Overview", Match: []string{"lesson overview", "overview", "lesson description"}, Optional: true},
	{Key: "objectives", Label: "Learning Objectives", Match: []string{"learning objectives", "objectives", "students will"}},
	{Key: "engage", Label: "Engage", Match: []string{"engage"}, Spans: true},
	{Key: "explore", Label: "Explore", Match: []string{"explore"}, Spans: true},
	{Key: "explain", Label: "Explain", Match: []string{"explain"}, Spans: true},
	{Key: "elaborate", Label: "Elaborate", Match: []string{"elaborate", "extend"}, Spans: true},
	{Key: "evaluate", Label: "Evaluate", Match: []string{"evaluate", "evaluation"}, Spans: true},
	{Key: "differentiation", Label: "Differentiation", Match: []string{"differentiation", "differentiated support"}, Optional: true, Spans: true},
	{Key: "challenge", Label: "Design Challenge", Match: []string{"design challenge", "engineering challenge"}, Optional: true},
}

var fiveEPhases = []string{"engage", "explore", "explain", "elaborate", "evaluate"}

// renderFiveE paints the inquiry plan: overview and objectives up top, the
// five phases with their own accent colors, then differentiation and the
// design challenge when present.
func renderFiveE(req Request, e *layout.Engine, log *slog.Logger) error {
	sections := extract.Extract(req.Record.Body, fiveESections)

	renderSection(e, log, fiveESections[0], sections["overview"], paintFlow(e))
	renderSection(e, log, fiveESections[1], sections["objectives"], paintBullets(e))

	for i, key := range fiveEPhases {
		spec := fiveESections[2+i]
		sec := sections[key]
		body := sanitize.Sanitize(sec.Body)
		if body == "" && len(sec.Spans) == 0 {
			log.Warn("phase missing from record body", logfields.Section(key))
			continue
		}
		e.PhaseHeading(spec.Label, phaseAccents[key])
		if body != "" {
			e.FlowText(body, layout.StyleBody)
		}
		renderSpanCallouts(e, sec)
		e.Spacer(sectionGap)
	}

	renderSection(e, log, fiveESections[7], sections["differentiation"], paintFlow(e))
	renderChallenge(req, e, log, sections["challenge"])
	return nil
}

// renderChallenge paints the design challenge. Bodies authored with grade
// band variants split on the raw markdown (the band markers are markdown
// emphasis and headings, which sanitizing would erase); engineering design
// records show both bands, graded records show their own.
func renderChallenge(req Request, e *layout.Engine, log *slog.Logger, sec extract.Section) {
	if sec.Body == "" {
		return
	}
	task, ok := extract.SplitGradeBandTask(sec.Body)
	if !ok {
		e.SectionHeading("Design Challenge")
		e.FlowText(sanitize.Sanitize(sec.Body), layout.StyleBody)
		e.Spacer(sectionGap)
		return
	}

	e.SectionHeading("Design Challenge")
	if intro := sanitize.Sanitize(task.Intro); intro != "" {
		e.FlowText(intro, layout.StyleBody)
		e.Spacer(4)
	}
	earlier := sanitize.Sanitize(task.Earlier)
	later := sanitize.Sanitize(task.Later)

	if req.Record.GradeLevel == content.GradeEngineering {
		if earlier != "" {
			e.Callout("Grades K-2", earlier)
			e.Spacer(4)
		}
		if later != "" {
			e.Callout("Grades 3-5", later)
		}
		e.Spacer(sectionGap)
		return
	}

	// A graded record gets its own band. If the author only wrote the other
	// band, that one is better than nothing.
	text, label := earlier, "Grades K-2"
	if req.Record.GradeLevel.Band() == content.BandLater {
		text, label = later, "Grades 3-5"
	}
	if text == "" {
		if req.Record.GradeLevel.Band() == content.BandLater {
			text, label = earlier, "Grades K-2"
		} else {
			text, label = later, "Grades 3-5"
		}
		log.Debug("design challenge missing variant for record band", "band", string(req.Record.GradeLevel.Band()))
	}
	if text != "" {
		e.Callout(label, text)
	}
	e.Spacer(sectionGap)
}
