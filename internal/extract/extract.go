// Package extract recovers named sections, nested tagged spans, and
// grade-band task variants from loosely structured lesson prose.
//
// The generation pipeline and this package share a de facto wire format:
// sections are delimited by Markdown headings with fixed text (optionally
// preceded by a decorative icon), teaching-tip and accessibility spans use
// the [TIP]/[UDL] tag pair, and standards codes use [[double-bracket]]
// wiki-link syntax. Extraction is deliberately forgiving about icon glyphs
// and heading depth, and deliberately strict about nothing else silently
// failing: every declared key is always present in the result, empty when
// its heading is missing.
package extract

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// SectionSpec declares one section a template expects, in template order.
type SectionSpec struct {
	Key      string
	Label    string   // heading label painted by the driver
	Match    []string // matcher phrases, checked in order against normalized heading text
	Optional bool     // omitted from the document without a warning when empty
	Spans    bool     // pull [TIP]/[UDL] spans out of this section's body
}

// Section is one recovered section. Body preserves the raw whitespace
// structure of the source slice; Spans holds any nested tagged spans that
// were pulled out of it.
type Section struct {
	Key   string
	Body  string
	Spans map[string]string
}

// Extract recovers every declared section from body. The result always
// contains an entry for every spec key; a missing heading yields an empty
// section, never an error. Matching normalizes heading text (Unicode NFC,
// lower-case, trimmed) and ignores any leading icon by matching on the
// stable text portion, so encoding drift in generated icons cannot drop a
// section. Each heading binds to at most one spec; specs claim headings in
// declaration order.
func Extract(body string, specs []SectionSpec) map[string]Section {
	src := []byte(strings.ReplaceAll(body, "\r\n", "\n"))
	headings := headingInventory(src)

	claimed := make([]bool, len(headings))
	out := make(map[string]Section, len(specs))

	for _, spec := range specs {
		sec := Section{Key: spec.Key}
		if idx := findHeading(headings, claimed, spec.Match); idx >= 0 {
			claimed[idx] = true
			sec.Body = sliceSection(src, headings, idx)
		}
		if spec.Spans {
			sec.Body, sec.Spans = ExtractSpans(sec.Body)
		}
		out[spec.Key] = sec
	}
	return out
}

// heading is one entry of the document heading inventory.
type heading struct {
	level     int
	folded    string // normalized text for matching
	lineStart int    // byte offset of the heading's first line
	bodyStart int    // byte offset just past the heading (and any setext underline)
}

// headingInventory parses src as Markdown and lists every heading with its
// source offsets. Offsets index into src directly so section bodies can be
// sliced out without re-serializing anything.
func headingInventory(src []byte) []heading {
	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(src))

	var out []heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			return gmast.WalkContinue, nil
		}
		first := lines.At(0)
		last := lines.At(lines.Len() - 1)
		lineStart := lineStartOffset(src, first.Start)
		out = append(out, heading{
			level:     h.Level,
			folded:    normalizeHeading(string(h.Text(src))),
			lineStart: lineStart,
			bodyStart: nextLineOffset(src, last.Stop, isATXHeadingLine(src, lineStart)),
		})
		return gmast.WalkContinue, nil
	})
	return out
}

// findHeading returns the index of the first unclaimed heading matching any
// of the phrases, or -1.
func findHeading(headings []heading, claimed []bool, phrases []string) int {
	for _, phrase := range phrases {
		want := normalizeHeading(phrase)
		if want == "" {
			continue
		}
		for i, h := range headings {
			if claimed[i] {
				continue
			}
			if strings.Contains(h.folded, want) {
				return i
			}
		}
	}
	return -1
}

// sliceSection captures raw text from the end of heading idx to the next
// heading of equal-or-shallower depth, or end of input. Deeper headings stay
// inside the body; they belong to the section's own sub-structure.
func sliceSection(src []byte, headings []heading, idx int) string {
	start := headings[idx].bodyStart
	end := len(src)
	for _, h := range headings[idx+1:] {
		if h.level <= headings[idx].level {
			end = h.lineStart
			break
		}
	}
	if start >= end {
		return ""
	}
	return string(src[start:end])
}

// normalizeHeading prepares heading text for matching: Unicode NFC, trimmed,
// trailing colons removed, lower-cased. Leading icon glyphs are left in
// place; matching is containment on the stable text portion.
func normalizeHeading(s string) string {
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ": \t")
	return strings.ToLower(s)
}

// lineStartOffset walks back from off to the start of its line.
func lineStartOffset(src []byte, off int) int {
	if off > len(src) {
		off = len(src)
	}
	i := bytes.LastIndexByte(src[:off], '\n')
	return i + 1
}

// nextLineOffset walks forward from off past the end of the current line.
// Setext headings own one more line, the underline, which must not leak into
// the section body. ATX headings never do; a "---" after one is a thematic
// break that belongs to the body.
func nextLineOffset(src []byte, off int, atx bool) int {
	i := advancePastLine(src, off)
	if atx {
		return i
	}
	if underline := setextUnderlineEnd(src, i); underline > i {
		return underline
	}
	return i
}

// isATXHeadingLine reports whether the line at lineStart opens with ATX
// heading markers.
func isATXHeadingLine(src []byte, lineStart int) bool {
	i := lineStart
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i < len(src) && src[i] == '#'
}

func advancePastLine(src []byte, off int) int {
	for off < len(src) && src[off] != '\n' {
		off++
	}
	if off < len(src) {
		off++
	}
	return off
}

// setextUnderlineEnd reports the offset past a setext underline line ("==="
// or "---") starting at off, or off when the line is not an underline.
func setextUnderlineEnd(src []byte, off int) int {
	i := off
	seen := 0
	for i < len(src) && src[i] != '\n' {
		c := src[i]
		if c != '=' && c != '-' && c != ' ' && c != '\t' {
			return off
		}
		if c == '=' || c == '-' {
			seen++
		}
		i++
	}
	if seen == 0 {
		return off
	}
	if i < len(src) {
		i++
	}
	return i
}
