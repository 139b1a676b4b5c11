package docgen

import (
	"fmt"
	"log/slog"

	"github.com/brightsciences/lessonpress/internal/content"
	apperrors "github.com/brightsciences/lessonpress/internal/errors"
	"github.com/brightsciences/lessonpress/internal/extract"
	"github.com/brightsciences/lessonpress/internal/layout"
	"github.com/brightsciences/lessonpress/internal/sanitize"
)

const (
	// minResponseBox is the smallest writing box worth printing. Anything
	// shorter and a kindergartner's pencil has nowhere to go.
	minResponseBox = 70.0
	maxResponseBox = 220.0

	responsePromptGap = 6.0
	responseBlockGap  = 14.0
)

// exitTicketSections pulls the discussion questions back out of the record
// body; their list items become the ticket's prompts. The pre-structured
// rubric questions are scoring instruments and never appear on the ticket.
var exitTicketSections = []extract.SectionSpec{
	{Key: "discussion", Label: "Discussion Questions", Match: []string{"discussion questions", "discussion"}},
}

// ticketPrompts returns the student prompts for a record: the items of its
// discussion questions section, reduced to plain prose. A record whose body
// has no such section has no prompts.
func ticketPrompts(r *content.Record) []string {
	sections := extract.Extract(r.Body, exitTicketSections)
	var prompts []string
	for _, item := range extract.SplitListItems(sanitize.Sanitize(sections["discussion"].Body)) {
		if item != "" {
			prompts = append(prompts, item)
		}
	}
	return prompts
}

// renderExitTicket paints the student-facing half sheet: name and date line,
// short instructions, then one prompt and writing box per discussion
// question. Boxes share the remaining page height evenly so the last prompt
// is never left with a sliver.
func renderExitTicket(req Request, e *layout.Engine, log *slog.Logger) error {
	prompts := ticketPrompts(req.Record)
	if len(prompts) == 0 {
		return apperrors.ValidationError(fmt.Sprintf("record %q: exit ticket render requires a discussion questions section", req.Record.Title))
	}

	e.NameDateLine()
	e.Spacer(16)
	e.FlowText("Answer each question on your own. You may use words, pictures, or both.", layout.StyleBody)
	e.Spacer(14)

	for i, q := range prompts {
		prompt := fmt.Sprintf("%d. %s", i+1, q)
		promptH := e.MeasureText(prompt, layout.StyleBodyBold, layout.ContentWidth)
		if e.Avail() < promptH+responsePromptGap+minResponseBox {
			e.BreakPage()
		}

		// Split the rest of the page evenly across the prompts still to
		// paint, clamped so one prompt can't claim a whole page of rules.
		remaining := float64(len(prompts) - i)
		boxH := e.Avail()/remaining - promptH - responsePromptGap - responseBlockGap
		if boxH < minResponseBox {
			boxH = minResponseBox
		}
		if boxH > maxResponseBox {
			boxH = maxResponseBox
		}

		e.FlowText(prompt, layout.StyleBodyBold)
		e.Spacer(responsePromptGap)
		e.ResponseBox(boxH)
		e.Spacer(responseBlockGap)
	}
	return nil
}
