package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightsciences/lessonpress/internal/config"
	"github.com/brightsciences/lessonpress/internal/content"
	"github.com/brightsciences/lessonpress/internal/docgen"
)

func testGlobal() *Global {
	return &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// writeTestConfig writes a minimal loadable configuration into dir and
// returns its path.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "lessonpress.yaml")
	cfgYAML := "version: \"1.0\"\n" +
		"content:\n" +
		"  root: ./content\n" +
		"  output: ./dist\n" +
		"ledger:\n" +
		"  path: " + filepath.Join(dir, "ledger.db") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))
	return cfgPath
}

func writeTestRecord(t *testing.T, path string, rec content.Record) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestTemplatesFor(t *testing.T) {
	cfg := &config.Config{}
	cfg.Render.Templates = []string{"lesson-guide", "rubric"}

	t.Run("configured set", func(t *testing.T) {
		templates, err := templatesFor(cfg, "")
		require.NoError(t, err)
		require.Equal(t, []docgen.Template{docgen.TemplateLessonGuide, docgen.TemplateRubric}, templates)
	})

	t.Run("override narrows", func(t *testing.T) {
		templates, err := templatesFor(cfg, "5E")
		require.NoError(t, err)
		require.Equal(t, []docgen.Template{docgen.TemplateFiveE}, templates)
	})

	t.Run("unknown override", func(t *testing.T) {
		_, err := templatesFor(cfg, "newsletter")
		require.Error(t, err)
	})
}

func TestGradeLevelsFor(t *testing.T) {
	t.Run("canonicalizes spellings", func(t *testing.T) {
		grades, err := gradeLevelsFor([]string{"Kindergarten", "grade 3"})
		require.NoError(t, err)
		require.Equal(t, []content.GradeLevel{content.GradeK, content.Grade3}, grades)
	})

	t.Run("unknown grade", func(t *testing.T) {
		_, err := gradeLevelsFor([]string{"7"})
		require.ErrorContains(t, err, "unknown grade level")
	})
}

func TestResolveLogo(t *testing.T) {
	cfg := &config.Config{}

	t.Run("empty passes through", func(t *testing.T) {
		require.Empty(t, resolveLogo("/etc/lessonpress.yaml", cfg))
	})

	t.Run("absolute passes through", func(t *testing.T) {
		cfg.Content.Logo = "/assets/logo.png"
		require.Equal(t, "/assets/logo.png", resolveLogo("/etc/lessonpress.yaml", cfg))
	})

	t.Run("relative joins config dir", func(t *testing.T) {
		cfg.Content.Logo = "assets/logo.png"
		require.Equal(t, "/etc/assets/logo.png", resolveLogo("/etc/lessonpress.yaml", cfg))
	})
}

func TestInitCmdWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()

	cmd := &InitCmd{Output: dir}
	require.NoError(t, cmd.Run(testGlobal(), &CLI{Config: "lessonpress.yaml"}))

	cfgPath := filepath.Join(dir, "lessonpress.yaml")
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "1.0", cfg.Version)

	// A second init without force refuses to clobber.
	require.Error(t, cmd.Run(testGlobal(), &CLI{Config: "lessonpress.yaml"}))
	cmd.Force = true
	require.NoError(t, cmd.Run(testGlobal(), &CLI{Config: "lessonpress.yaml"}))
}

func TestRenderCmdRendersConfiguredTemplates(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	recordPath := filepath.Join(dir, "content", "shadows.json")
	writeTestRecord(t, recordPath, content.Record{
		Title:      "How Shadows Change",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.Grade2,
		Body:       "## Lesson Description\nShadows form when light is blocked.\n",
	})

	outDir := t.TempDir()
	cmd := &RenderCmd{Record: recordPath, Output: outDir}
	require.NoError(t, cmd.Run(testGlobal(), &CLI{Config: cfgPath}))

	// The record has no rubric questions and no discussion section, so only
	// the two teaching documents land.
	guide, err := os.ReadFile(filepath.Join(outDir, "how-shadows-change_lesson-guide.pdf"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(guide, []byte("%PDF-")))
	_, err = os.Stat(filepath.Join(outDir, "how-shadows-change_5e-plan.pdf"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "how-shadows-change_rubric.pdf"))
	require.True(t, os.IsNotExist(err))
}

func TestRenderCmdExplicitAssessmentFailsWithoutQuestions(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	recordPath := filepath.Join(dir, "content", "shadows.json")
	writeTestRecord(t, recordPath, content.Record{
		Title:      "How Shadows Change",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.Grade2,
		Body:       "## Lesson Description\nShadows form when light is blocked.\n",
	})

	cmd := &RenderCmd{Record: recordPath, Template: "rubric", Output: t.TempDir()}
	err := cmd.Run(testGlobal(), &CLI{Config: cfgPath})
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one question")

	cmd = &RenderCmd{Record: recordPath, Template: "exit-ticket", Output: t.TempDir()}
	err = cmd.Run(testGlobal(), &CLI{Config: cfgPath})
	require.Error(t, err)
	require.Contains(t, err.Error(), "discussion questions")
}

func TestRenderCmdUnknownTemplate(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	recordPath := filepath.Join(dir, "content", "shadows.json")
	writeTestRecord(t, recordPath, content.Record{
		Title:      "How Shadows Change",
		Subject:    content.SubjectPhysicalScience,
		GradeLevel: content.Grade2,
		Body:       "## Lesson Description\nBody.\n",
	})

	cmd := &RenderCmd{Record: recordPath, Template: "newsletter"}
	require.Error(t, cmd.Run(testGlobal(), &CLI{Config: cfgPath}))
}

func TestBackfillCmdRendersTree(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	writeTestRecord(t, filepath.Join(dir, "content", "life-science", "plants.json"), content.Record{
		Title:      "What Plants Need",
		Subject:    content.SubjectLifeScience,
		GradeLevel: content.Grade1,
		Body:       "## Lesson Description\nPlants need light and water.\n",
	})

	outDir := filepath.Join(dir, "dist")
	cmd := &BackfillCmd{Root: filepath.Join(dir, "content"), Output: outDir}
	require.NoError(t, cmd.Run(testGlobal(), &CLI{Config: cfgPath}))

	_, err := os.Stat(filepath.Join(outDir, "life-science", "what-plants-need_lesson-guide.pdf"))
	require.NoError(t, err)
}

func TestBackfillCmdGradeLevelFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	writeTestRecord(t, filepath.Join(dir, "content", "plants.json"), content.Record{
		Title:      "What Plants Need",
		Subject:    content.SubjectLifeScience,
		GradeLevel: content.Grade1,
		Body:       "## Lesson Description\nPlants need light and water.\n",
	})

	outDir := filepath.Join(dir, "dist")
	cmd := &BackfillCmd{
		Root:        filepath.Join(dir, "content"),
		Output:      outDir,
		GradeLevels: []string{"K", "grade 2"},
	}
	require.NoError(t, cmd.Run(testGlobal(), &CLI{Config: cfgPath}))

	for _, name := range []string{
		"what-plants-need_kindergarten_lesson-guide.pdf",
		"what-plants-need_grade-2_lesson-guide.pdf",
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, "expected grade variant %s", name)
	}
}
