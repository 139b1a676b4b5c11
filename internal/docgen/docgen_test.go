package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brightsciences/lessonpress/internal/content"
	apperrors "github.com/brightsciences/lessonpress/internal/errors"
	"github.com/brightsciences/lessonpress/internal/imaging"
	"github.com/brightsciences/lessonpress/internal/layout"
)

const lessonBody = `## 🔍 Lesson Description

Students investigate how shadows change over the course of a day by tracking
the shadow of a playground pole each hour and recording its length and
direction on a shared class chart.

## Anchoring Phenomenon

At noon the flagpole's shadow almost disappears, but by mid afternoon it
stretches across the entire blacktop.

[TIP]Chalk the shadow outlines at 9am, noon, and 2pm so the change is visible
at a glance.[/TIP]

## Core Concepts

Light travels in straight lines. When an object blocks light, a shadow forms
on the far side of the object.

## Common Misconceptions

- Shadows are reflections of the object.
- Shadows stay the same size all day.

## Standards Alignment

- [[1_PS4_3]] Plan and conduct investigations on light and shadow.
- [[5_ESS1_2]] Represent data about daily shadow patterns.

## Discussion Questions

1. What happened to the pole's shadow between morning and noon?
2. Where would you stand to stay out of the sun at 3pm?

## Vocabulary

- **Shadow** - The dark area behind an object that blocks light.
- **Light source**: Anything that gives off its own light.

## Materials

- Sidewalk chalk
- Meter sticks
- Shadow tracking chart
`

const fiveEBody = `## Lesson Overview

Students build an explanation for why shadows move by measuring the same
shadow across a school day.

## Learning Objectives

- Describe how a shadow's length and direction change during a day.
- Support a claim about shadow motion with measured evidence.

## Engage

Show a time lapse of the playground from sunrise to dismissal and collect
noticings on the board.

## Explore

Teams measure the flagpole shadow every hour and plot the lengths.

[UDL]Offer a pre-marked measuring tape for students still learning to read a
meter stick.[/UDL]

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

func guideRecord(body string) *content.Record {
	return &content.Record{
		Title:      "How Shadows Change",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.Grade2,
		Body:       body,
	}
}

func rubricQuestions() []content.RubricQuestion {
	return []content.RubricQuestion{
		{
			Question:    "Why is the flagpole shadow shortest at noon?",
			BloomsLevel: "Analyze",
			DOKLevel:    "3",
			Rubric: content.RubricLevels{
				Exceeds:     "Explains the sun's position and predicts the pattern for another object.",
				Meets:       "Explains that the sun is highest at noon.",
				Approaching: "Notices the shadow is shorter but not why.",
				Beginning:   "Restates the observation only.",
			},
		},
		{
			Question:    "Draw where the shadow will point at 3pm.",
			BloomsLevel: "Apply",
			DOKLevel:    "2",
			Rubric: content.RubricLevels{
				Exceeds:     "Correct direction with an accurate relative length.",
				Meets:       "Correct direction.",
				Approaching: "Shadow drawn on the sunny side.",
				Beginning:   "No shadow drawn.",
			},
		},
	}
}

func renderDoc(t *testing.T, req Request) ([]byte, *Result) {
	t.Helper()
	req.EngineOptions = append(req.EngineOptions, layout.WithoutCompression())
	if req.Now.IsZero() {
		req.Now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	var buf bytes.Buffer
	res, err := Render(req, &buf)
	require.NoError(t, err)
	return buf.Bytes(), res
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), &buf
}

func testPhoto(t *testing.T) *layout.ImageAsset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 140, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	asset, err := imaging.Prepare(buf.Bytes(), "photo")
	require.NoError(t, err)
	return asset
}

func TestRender_LessonGuide_PaintsSectionsInFixedOrder(t *testing.T) {
	out, res := renderDoc(t, Request{Record: guideRecord(lessonBody), Template: TemplateLessonGuide})

	require.GreaterOrEqual(t, res.Pages, 1)
	require.Contains(t, string(out), "(Lesson Description)")
	require.Contains(t, string(out), "(Anchoring Phenomenon)")
	require.Contains(t, string(out), "(TEACHING TIP)")
	require.Contains(t, string(out), "(Standards Alignment)")
	require.Contains(t, string(out), "(1_PS4_3 Plan and conduct investigations on light and shadow.)")
	require.Contains(t, string(out), "(Shadow)")
	require.Contains(t, string(out), "(FOR TEACHER USE)")

	// Section order is the template's, not the record's.
	desc := bytes.Index(out, []byte("(Lesson Description)"))
	mats := bytes.Index(out, []byte("(Materials)"))
	require.Less(t, desc, mats)
}

func TestRender_LessonGuide_LongBodyPaginates(t *testing.T) {
	long := lessonBody + "\n## Extension Activities\n\n" +
		strings.Repeat("Take the chart outside each week and compare how the noon shadow drifts with the seasons. ", 60)
	out, res := renderDoc(t, Request{Record: guideRecord(long), Template: TemplateLessonGuide})

	require.GreaterOrEqual(t, res.Pages, 2)
	require.Contains(t, string(out), "(Page 1 of "+strconv.Itoa(res.Pages)+")")
	require.Contains(t, string(out), "(Page "+strconv.Itoa(res.Pages)+" of "+strconv.Itoa(res.Pages)+")")
}

func TestRender_LessonGuide_MissingRequiredSectionWarnsAndContinues(t *testing.T) {
	body := strings.Replace(lessonBody, "## Materials", "## Supplies Nobody Matches", 1)
	log, logged := captureLogger()
	out, _ := renderDoc(t, Request{Record: guideRecord(body), Template: TemplateLessonGuide, Logger: log})

	require.NotContains(t, string(out), "(Materials)")
	require.Contains(t, logged.String(), "section missing from record body")
	require.Contains(t, logged.String(), "section=materials")
}

func TestRender_LessonGuide_PhotoBesideDescription(t *testing.T) {
	out, _ := renderDoc(t, Request{
		Record:   guideRecord(lessonBody),
		Template: TemplateLessonGuide,
		Photo:    testPhoto(t),
	})

	// Title in the banner plus the caption under the photo.
	require.GreaterOrEqual(t, bytes.Count(out, []byte("(How Shadows Change)")), 2)
	require.Contains(t, string(out), "/XObject")
}

func TestRender_FiveE_PhaseHeadingsAndOwnBandOnly(t *testing.T) {
	rec := guideRecord(fiveEBody)
	rec.GradeLevel = content.Grade4
	out, _ := renderDoc(t, Request{Record: rec, Template: TemplateFiveE})

	for _, phase := range []string{"Engage", "Explore", "Explain", "Elaborate", "Evaluate"} {
		require.Contains(t, string(out), "("+phase+")")
	}
	require.Contains(t, string(out), "(UDL ADAPTATION)")
	require.Contains(t, string(out), "(GRADES 3-5)")
	require.NotContains(t, string(out), "(GRADES K-2)")
	require.Contains(t, string(out), "(Design a shade structure for the reading bench.)")
}

func TestRender_FiveE_EngineeringShowsBothBands(t *testing.T) {
	rec := guideRecord(fiveEBody)
	rec.GradeLevel = content.GradeEngineering
	out, _ := renderDoc(t, Request{Record: rec, Template: TemplateFiveE})

	require.Contains(t, string(out), "(GRADES K-2)")
	require.Contains(t, string(out), "(GRADES 3-5)")
}

func TestRender_Rubric_TableWithCognitiveTags(t *testing.T) {
	rec := guideRecord(lessonBody)
	rec.Questions = rubricQuestions()
	out, res := renderDoc(t, Request{Record: rec, Template: TemplateRubric})

	require.GreaterOrEqual(t, res.Pages, 1)
	require.Contains(t, string(out), "(Exceeds \\(4\\))")
	require.Contains(t, string(out), "(Bloom's: Analyze | DOK: 3)")
	require.Contains(t, string(out), "4 = Exceeds expectations")
}

func TestRender_Rubric_WithoutQuestionsFails(t *testing.T) {
	var buf bytes.Buffer
	_, err := Render(Request{Record: guideRecord(lessonBody), Template: TemplateRubric}, &buf)

	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
	require.Contains(t, err.Error(), "at least one question")
}

func TestRender_ExitTicket_BoxesShareOnePage(t *testing.T) {
	out, res := renderDoc(t, Request{Record: guideRecord(lessonBody), Template: TemplateExitTicket})

	require.Equal(t, 1, res.Pages)
	require.Contains(t, string(out), "(Name:)")
	require.Contains(t, string(out), "(Date:)")
	require.Contains(t, string(out), "(FOR STUDENT USE)")
	require.NotContains(t, string(out), "(FOR TEACHER USE)")
	require.Contains(t, string(out), "(1. What happened to the pole's shadow between morning and noon?)")
	require.Contains(t, string(out), "(2. Where would you stand to stay out of the sun at 3pm?)")
}

func TestRender_ExitTicket_PromptsComeFromDiscussionNotRubric(t *testing.T) {
	rec := guideRecord(lessonBody)
	rec.Questions = rubricQuestions()
	out, _ := renderDoc(t, Request{Record: rec, Template: TemplateExitTicket})

	require.Contains(t, string(out), "stay out of the sun at 3pm")
	require.NotContains(t, string(out), "flagpole shadow shortest at noon")
}

func TestRender_ExitTicket_ManyQuestionsPaginate(t *testing.T) {
	body := "## Lesson Description\n\nShadow stations around the playground.\n\n## Discussion Questions\n\n"
	for i := 0; i < 8; i++ {
		body += strconv.Itoa(i+1) + ". Question number " + strconv.Itoa(i+1) + " about shadows?\n"
	}
	_, res := renderDoc(t, Request{Record: guideRecord(body), Template: TemplateExitTicket})

	require.GreaterOrEqual(t, res.Pages, 2)
}

func TestRender_ExitTicket_WithoutDiscussionSectionFails(t *testing.T) {
	rec := guideRecord(fiveEBody)
	rec.Questions = rubricQuestions()
	var buf bytes.Buffer
	_, err := Render(Request{Record: rec, Template: TemplateExitTicket}, &buf)

	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
	require.Contains(t, err.Error(), "discussion questions")
}

func TestCanRender(t *testing.T) {
	prose := guideRecord(lessonBody)
	require.True(t, CanRender(prose, TemplateLessonGuide))
	require.True(t, CanRender(prose, TemplateFiveE))
	require.True(t, CanRender(prose, TemplateExitTicket))
	require.False(t, CanRender(prose, TemplateRubric))

	scored := guideRecord(fiveEBody)
	scored.Questions = rubricQuestions()
	require.True(t, CanRender(scored, TemplateRubric))
	require.False(t, CanRender(scored, TemplateExitTicket))
}

func TestRender_UnknownTemplateFails(t *testing.T) {
	var buf bytes.Buffer
	_, err := Render(Request{Record: guideRecord(lessonBody), Template: Template("poster")}, &buf)

	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
}

func TestNormalizeTemplate(t *testing.T) {
	got, err := NormalizeTemplate("5E")
	require.NoError(t, err)
	require.Equal(t, TemplateFiveE, got)

	got, err = NormalizeTemplate("Lesson Guide")
	require.NoError(t, err)
	require.Equal(t, TemplateLessonGuide, got)

	_, err = NormalizeTemplate("poster")
	require.Error(t, err)
}

func TestSplitTerm(t *testing.T) {
	cases := []struct {
		in, term, def string
		ok            bool
	}{
		{"Shadow - The dark area behind an object.", "Shadow", "The dark area behind an object.", true},
		{"Light source: Anything that gives off light.", "Light source", "Anything that gives off light.", true},
		{"Orbit – The path of one body around another.", "Orbit", "The path of one body around another.", true},
		{"A sentence without any separator", "", "", false},
		{strings.Repeat("very long left side ", 5) + "- def", "", "", false},
	}
	for _, tc := range cases {
		term, def, ok := splitTerm(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		if ok {
			require.Equal(t, tc.term, term)
			require.Equal(t, tc.def, def)
		}
	}
}

func TestOutputName(t *testing.T) {
	require.Equal(t, "how-shadows-change_lesson-guide.pdf", OutputName("How Shadows Change!", TemplateLessonGuide))
	require.Equal(t, "document_rubric.pdf", OutputName("???", TemplateRubric))
}

func TestRenderFile_WritesPDFAtomically(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), pngBuf.Bytes(), 0o644))

	rec := content.Record{
		Title:      "How Shadows Change",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.Grade2,
		Body:       lessonBody,
		ImagePath:  "photo.png",
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	recordPath := filepath.Join(dir, "shadows.json")
	require.NoError(t, os.WriteFile(recordPath, data, 0o644))

	res, err := RenderFile(context.Background(), FileRequest{
		RecordPath: recordPath,
		Template:   TemplateLessonGuide,
		Now:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Pages, 1)

	out, err := os.ReadFile(filepath.Join(dir, "how-shadows-change_lesson-guide.pdf"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".lessonpress-*"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestRenderFile_BrokenImageDegrades(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte("not an image"), 0o644))

	rec := content.Record{
		Title:      "How Shadows Change",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.Grade2,
		Body:       lessonBody,
		ImagePath:  "photo.png",
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	recordPath := filepath.Join(dir, "shadows.json")
	require.NoError(t, os.WriteFile(recordPath, data, 0o644))

	log, logged := captureLogger()
	_, err = RenderFile(context.Background(), FileRequest{
		RecordPath: recordPath,
		Template:   TemplateLessonGuide,
		Logger:     log,
	})
	require.NoError(t, err)
	require.Contains(t, logged.String(), "image unusable")
}

func TestRenderFile_MissingRecordFails(t *testing.T) {
	_, err := RenderFile(context.Background(), FileRequest{
		RecordPath: filepath.Join(t.TempDir(), "absent.json"),
		Template:   TemplateLessonGuide,
	})
	require.Error(t, err)
}

func TestRenderFile_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	rec := content.Record{
		Title:      "How Shadows Change",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.Grade2,
		Body:       lessonBody,
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	recordPath := filepath.Join(dir, "shadows.json")
	require.NoError(t, os.WriteFile(recordPath, data, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RenderFile(ctx, FileRequest{RecordPath: recordPath, Template: TemplateLessonGuide})
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryRuntime))
}

