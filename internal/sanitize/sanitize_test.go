package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize_BoldItalic_StripsMarkers(t *testing.T) {
	require.Equal(t, "warm and cold", Sanitize("**warm** and *cold*"))
	require.Equal(t, "very important", Sanitize("***very important***"))
}

func TestSanitize_UnderscoreEmphasis_Preserved(t *testing.T) {
	got := Sanitize("See standard 2_PS1_1 and _emphasis_ text")
	require.Equal(t, "See standard 2_PS1_1 and _emphasis_ text", got)
}

func TestSanitize_WikiLink_KeepsCodeText(t *testing.T) {
	require.Equal(t, "3-LS4-3", Sanitize("[[3-LS4-3]]"))
	require.Equal(t, "3-LS4-3", Sanitize("[[3-LS4-3|survival standard]]"))
}

func TestSanitize_InlineAndImageLinks_KeepLabel(t *testing.T) {
	require.Equal(t, "NASA eclipse page", Sanitize("[NASA eclipse page](https://example.org/eclipse)"))
	require.Equal(t, "moon phases", Sanitize("![moon phases](phases.png)"))
	require.Equal(t, "", Sanitize("![](decoration.png)"))
}

func TestSanitize_SpanTags_Removed(t *testing.T) {
	got := Sanitize("Before [TIP]inline tip[/TIP] after")
	require.Equal(t, "Before inline tip after", got)
}

func TestSanitize_HeadingMarkersAndRules_Removed(t *testing.T) {
	got := Sanitize("## Heading\n\nBody text.\n\n---\n\nMore text.")
	require.Equal(t, "Heading\n\nBody text.\n\nMore text.", got)
}

func TestSanitize_InlineCodeAndFences_Unwrapped(t *testing.T) {
	got := Sanitize("```\nuse a `thermometer` here\n```")
	require.Equal(t, "use a thermometer here", got)
}

func TestSanitize_BlankRuns_CollapseToSingleBlankLine(t *testing.T) {
	got := Sanitize("one\n\n\n\n\ntwo")
	require.Equal(t, "one\n\ntwo", got)
}

func TestSanitize_CRLF_Normalized(t *testing.T) {
	got := Sanitize("line one\r\nline two\r\n")
	require.Equal(t, "line one\nline two", got)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"**bold** with [[2-ESS1-1]] and [link](u) plus `code`",
		"## Heading\n\n[TIP]tip[/TIP]\n\n---\n\n1. item\n",
		"plain prose stays plain",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		require.Equal(t, once, Sanitize(once))
	}
}

func TestSanitize_ListMarkers_Preserved(t *testing.T) {
	got := Sanitize("- cups\n- **warm** water\n1. stir\n")
	require.Equal(t, "- cups\n- warm water\n1. stir", got)
}
