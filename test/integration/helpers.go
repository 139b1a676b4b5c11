package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brightsciences/lessonpress/internal/backfill"
	"github.com/brightsciences/lessonpress/internal/content"
	"github.com/brightsciences/lessonpress/internal/docgen"
	"github.com/brightsciences/lessonpress/internal/retry"
)

// shadowsBody carries every section family the four templates recover, so a
// single record exercises section extraction, span callouts, list splitting,
// and grade-band selection together.
const shadowsBody = `## 🔍 Lesson Description

Students investigate how shadows change across a school day by tracing the
shadow of a playground pole each hour and charting its length and direction.

## Anchoring Phenomenon

At noon the flagpole's shadow almost disappears, but by dismissal it
stretches across the entire blacktop.

[TIP]Chalk the shadow outlines at 9am, noon, and 2pm so the change is
visible at a glance.[/TIP]

## Core Concepts

Light travels in straight lines. When an object blocks light, a shadow
forms on the far side of the object.

## Common Misconceptions

- Shadows are reflections of the object.
- Shadows stay the same size all day.

## Standards Alignment

- [[1_PS4_3]] Plan and conduct investigations on light and shadow.
- [[5_ESS1_2]] Represent data about daily shadow patterns.

## Discussion Questions

1. What happened to the pole's shadow between morning and noon?
2. Where would you stand to stay out of the sun at 3pm?
3. How could you use a shadow to tell the time?

## Vocabulary

- **Shadow** - The dark area behind an object that blocks light.
- **Light source**: Anything that gives off its own light.

## Materials

- Sidewalk chalk
- Meter sticks
- Shadow tracking chart

## Engage

Show a time lapse of the playground from sunrise to dismissal and collect
noticings on the board.

## Explore

Teams measure the flagpole shadow every hour and plot the lengths.

[UDL]Offer a pre-marked measuring tape for students still learning to read
a meter stick.[/UDL]

## Explain

Use a flashlight and a pencil to model why the shadow shortens toward noon.

## Elaborate

Students predict tomorrow's noon shadow and justify the prediction.

## Evaluate

Collect an exit drawing of the morning and afternoon shadow positions.

## Design Challenge

Design a shade structure for the reading bench.

**Grades K-2:** "Build a paper canopy that keeps a toy bear shaded at noon."

**Grades 3-5:** "Engineer an adjustable canopy that shades the bench from 10am to 2pm."
`

// plantsBody has discussion questions but its record carries no rubric
// questions, so the rubric is the one document it cannot produce.
const plantsBody = `## Lesson Description

Students grow bean seedlings under different conditions to find out what
plants need to live.

## Materials

- Bean seeds
- Clear cups
- Paper towels

## Discussion Questions

1. What did the seedling in the dark cabinet look like?
2. Why do farmers water their fields?

## Engage

Pass around two seedlings, one leggy and pale, one sturdy and green.

## Explore

Groups set up cups with and without water, light, and soil.
`

const bridgesBody = `## Lesson Description

Teams design, build, and test paper bridges that must hold a cup of pennies
across a 30 cm gap.

## Discussion Questions

1. Where did your bridge bend first?
2. What shape held the most weight?

## Materials

- Copy paper
- Pennies
- Paper cups

## Engage

Show photographs of truss, beam, and arch bridges and ask what they share.

## Explore

Teams fold and test a first bridge, then measure how many pennies it holds.

## Design Challenge

Strengthen your bridge without adding more paper.

**Grades K-2:** "Fold a bridge that holds ten pennies."

**Grades 3-5:** "Engineer a bridge that holds a full cup using two sheets."
`

func shadowsRecord() content.Record {
	return content.Record{
		Title:      "How Shadows Change",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.Grade2,
		Body:       shadowsBody,
		Questions: []content.RubricQuestion{{
			Question:    "Why is the flagpole shadow shortest at noon?",
			BloomsLevel: "Analyze",
			DOKLevel:    "3",
			Rubric: content.RubricLevels{
				Exceeds:     "Explains the sun's position and predicts the pattern for another object.",
				Meets:       "Explains that the sun is highest at noon.",
				Approaching: "Notices the shadow is shorter but not why.",
				Beginning:   "Restates the observation only.",
			},
		}},
	}
}

func plantsRecord() content.Record {
	return content.Record{
		Title:      "What Plants Need",
		Subject:    content.SubjectLifeScience,
		GradeLevel: content.Grade1,
		Body:       plantsBody,
	}
}

func bridgesRecord() content.Record {
	return content.Record{
		Title:      "Strong Bridges",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.GradeEngineering,
		Body:       bridgesBody,
		Questions: []content.RubricQuestion{{
			Question: "How did testing change your design?",
			Rubric: content.RubricLevels{
				Exceeds:     "Names a specific failure and the change it motivated.",
				Meets:       "Describes one change made after testing.",
				Approaching: "Describes testing without a change.",
				Beginning:   "Cannot connect testing to the design.",
			},
		}},
	}
}

// writeRecord writes one record file under root, creating subject folders
// as needed, and returns its absolute path.
func writeRecord(t *testing.T, root, rel string, rec content.Record) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "failed to create record dir")
	data, err := json.Marshal(rec)
	require.NoError(t, err, "failed to marshal record")
	require.NoError(t, os.WriteFile(path, data, 0o644), "failed to write record")
	return path
}

// seedLibrary lays down a small content library spanning three subject
// folders: one fully loaded record, one without rubric questions, and one
// engineering design unit.
func seedLibrary(t *testing.T, root string) {
	t.Helper()
	writeRecord(t, root, "physical-science/shadows.json", shadowsRecord())
	writeRecord(t, root, "life-science/plants.json", plantsRecord())
	writeRecord(t, root, "engineering/bridges.json", bridgesRecord())
}

// openLedger opens a disk-backed ledger under dir and closes it when the
// test finishes.
func openLedger(t *testing.T, dir string) *backfill.Ledger {
	t.Helper()
	ledger, err := backfill.NewLedger(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err, "failed to open ledger")
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

// libraryOptions is the shared baseline for backfill runs over a test
// library. The fixed clock keeps footer dates out of the diff between runs.
func libraryOptions(root, out string, ledger *backfill.Ledger) backfill.Options {
	return backfill.Options{
		Root:         root,
		OutputDir:    out,
		Templates:    docgen.Templates,
		Workers:      4,
		ImageDecodes: 2,
		Policy:       retry.DefaultPolicy(),
		Ledger:       ledger,
		Logger:       quietLogger(),
		Now:          time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requirePDF reads a rendered document and checks the envelope a reader
// needs: the version header up front and the EOF marker at the end.
func requirePDF(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "expected rendered document at %s", path)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "missing PDF header in %s", path)
	require.Contains(t, string(data), "%%EOF", "missing EOF marker in %s", path)
	return data
}

var pageCountRe = regexp.MustCompile(`/Count (\d+)`)

// pdfPages reads the page count out of the document's page tree. Object
// dictionaries stay plain text even when content streams are deflated, so
// scanning the raw bytes is enough.
func pdfPages(t *testing.T, data []byte) int {
	t.Helper()
	pages := 0
	for _, m := range pageCountRe.FindAllSubmatch(data, -1) {
		n, err := strconv.Atoi(string(m[1]))
		require.NoError(t, err)
		if n > pages {
			pages = n
		}
	}
	require.Positive(t, pages, "no page tree count found")
	return pages
}
