package docgen

import (
	"log/slog"
	"strings"

	apperrors "github.com/brightsciences/lessonpress/internal/errors"
	"github.com/brightsciences/lessonpress/internal/layout"
	"github.com/brightsciences/lessonpress/internal/sanitize"
)

// rubricColumns fixes the five-column grid. The question column gets the
// extra width; the four level columns split the rest evenly.
var rubricColumns = []layout.TableColumn{
	{Header: "Question", Width: 164},
	{Header: "Exceeds (4)", Width: 92},
	{Header: "Meets (3)", Width: 92},
	{Header: "Approaching (2)", Width: 92},
	{Header: "Beginning (1)", Width: 92},
}

// renderRubric paints the scoring table from the record's pre-structured
// questions. Unlike the prose templates nothing here comes out of the body;
// a record without questions is a contract violation, not a soft skip.
func renderRubric(req Request, e *layout.Engine, log *slog.Logger) error {
	if err := req.Record.ValidateRubric(); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	e.FlowText("Score each response against the level descriptors below. "+
		"Record the level number that best matches the student's work.", layout.StyleBody)
	e.Spacer(12)

	rows := make([][]layout.TableCell, 0, len(req.Record.Questions))
	for _, q := range req.Record.Questions {
		rows = append(rows, []layout.TableCell{
			{Text: sanitize.Sanitize(q.Question), Tag: cognitiveTag(q.BloomsLevel, q.DOKLevel), Bold: true},
			{Text: sanitize.Sanitize(q.Rubric.Exceeds)},
			{Text: sanitize.Sanitize(q.Rubric.Meets)},
			{Text: sanitize.Sanitize(q.Rubric.Approaching)},
			{Text: sanitize.Sanitize(q.Rubric.Beginning)},
		})
	}
	e.Table(layout.Table{Columns: rubricColumns, MinRowHeight: 34, Zebra: true, TintLead: true}, rows)

	e.Spacer(8)
	e.FlowText("4 = Exceeds expectations   3 = Meets expectations   "+
		"2 = Approaching expectations   1 = Beginning", layout.StyleCaption)
	return nil
}

// cognitiveTag builds the small annotation under a question, e.g.
// "Bloom's: Analyze | DOK: 3". Missing parts are left out entirely.
func cognitiveTag(blooms, dok string) string {
	var parts []string
	if b := strings.TrimSpace(blooms); b != "" {
		parts = append(parts, "Bloom's: "+b)
	}
	if d := strings.TrimSpace(dok); d != "" {
		parts = append(parts, "DOK: "+d)
	}
	return strings.Join(parts, " | ")
}
