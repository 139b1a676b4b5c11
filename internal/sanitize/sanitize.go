// Package sanitize reduces generated lesson prose to plain text. The
// generation pipeline emits Markdown-flavored markup; print layout wants bare
// prose with reference codes intact.
//
// Sanitize is an ordered rewrite pipeline and is idempotent: running it on
// already-sanitized text is a no-op.
package sanitize

import (
	"regexp"
	"strings"
)

type rewriteRule struct {
	name string
	re   *regexp.Regexp
	repl string
}

// Rules run in declaration order. Emphasis markers strip longest-first so a
// shorter pattern never leaves stray marker characters behind; wiki-links
// resolve before regular links so standards codes keep their code text.
var rules = []rewriteRule{
	{"emphasis-triple", regexp.MustCompile(`\*{3}([^*]+)\*{3}`), "$1"},
	{"emphasis-double", regexp.MustCompile(`\*{2}([^*]+)\*{2}`), "$1"},
	{"emphasis-single", regexp.MustCompile(`\*([^\s*][^*\n]*)\*`), "$1"},
	{"wiki-link", regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|[^\[\]]*)?\]\]`), "$1"},
	{"image-link", regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`), "$1"},
	{"inline-link", regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`), "$1"},
	{"span-tag", regexp.MustCompile(`\[/?[A-Z][A-Z0-9_]{1,31}\]`), ""},
	{"heading-marker", regexp.MustCompile(`(?m)^#{1,6}[ \t]+`), ""},
	{"rule-line", regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,}|_{3,})[ \t]*$`), ""},
	{"code-fence", regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*$"), ""},
	{"inline-code", regexp.MustCompile("`([^`\n]+)`"), "$1"},
	{"trailing-space", regexp.MustCompile(`(?m)[ \t]+$`), ""},
	{"blank-run", regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Sanitize strips structural markup from text, preserving prose and domain
// reference codes. Underscore emphasis is deliberately left untouched:
// science prose carries snake_case standard codes and chemical notation
// that underscore stripping would corrupt.
func Sanitize(text string) string {
	s := strings.ReplaceAll(text, "\r\n", "\n")
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return strings.TrimSpace(s)
}
