package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// GradeBandTask is a task block split into its differentiated variants.
// Intro holds any shared text that precedes the first band marker.
type GradeBandTask struct {
	Intro   string
	Earlier string // grades K-2
	Later   string // grades 3-5
}

// Generated task blocks label band variants in one of three phrasings:
//
//	**Grades K-2:** "Build a model..."    inline bold label with quoted text
//	### Grades K-2                        sub-heading, text in following lines
//	**Grades K-2**                        bare bold label, text in following lines
//
// Hyphen, en dash, and em dash all appear in the wild between the grade
// numbers, as do "Grade"/"Grades". A band phrase mentioned mid-sentence is
// prose, not a marker; markers carry no letters before the phrase.
var (
	bandMarkerPrefixRe = regexp.MustCompile(`^[\s#*_]+`)
	earlierBandRe      = regexp.MustCompile(`(?i)grades?\s*k\s*[-\x{2013}\x{2014}]\s*2`)
	laterBandRe        = regexp.MustCompile(`(?i)grades?\s*3\s*[-\x{2013}\x{2014}]\s*5`)
)

// SplitGradeBandTask splits body into per-band task text. It reports false
// when no band marker is present, in which case the caller should render
// the block undifferentiated. Lines accumulate into whichever band's marker
// was seen last; inline text on the marker line itself seeds that band, so
// all three phrasings reduce to one scan.
func SplitGradeBandTask(body string) (GradeBandTask, bool) {
	var intro, earlier, later []string
	cur := &intro
	for _, line := range strings.Split(body, "\n") {
		band, rest, ok := matchBandLine(line)
		if !ok {
			*cur = append(*cur, line)
			continue
		}
		if band == bandEarlier {
			cur = &earlier
		} else {
			cur = &later
		}
		if rest != "" {
			*cur = append(*cur, rest)
		}
	}
	task := GradeBandTask{
		Intro:   strings.TrimSpace(strings.Join(intro, "\n")),
		Earlier: stripWrappingQuotes(strings.Join(earlier, "\n")),
		Later:   stripWrappingQuotes(strings.Join(later, "\n")),
	}
	return task, task.Earlier != "" || task.Later != ""
}

const (
	bandEarlier = "earlier"
	bandLater   = "later"
)

// matchBandLine reports whether line is a band marker, and returns any text
// that follows the label on the same line. Heading and emphasis markers are
// stripped before matching; icon glyphs before the phrase are tolerated,
// letters are not.
func matchBandLine(line string) (band, rest string, ok bool) {
	stripped := bandMarkerPrefixRe.ReplaceAllString(line, "")
	loc := earlierBandRe.FindStringIndex(stripped)
	band = bandEarlier
	if loc == nil {
		loc = laterBandRe.FindStringIndex(stripped)
		band = bandLater
	}
	if loc == nil || hasASCIILetterBefore(stripped, loc[0]) {
		return "", "", false
	}
	rest = strings.TrimLeft(stripped[loc[1]:], ":* \t")
	return band, strings.TrimSpace(rest), true
}

// hasASCIILetterBefore guards against prose mentions ("for grades K-2 we").
// Only ASCII letters disqualify; icon glyphs and their mojibake forms are
// non-ASCII and stay tolerated.
func hasASCIILetterBefore(s string, end int) bool {
	for _, r := range s[:end] {
		if r < 128 && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// stripWrappingQuotes removes one pair of straight or curly quotes wrapping
// the whole text. Inline quotes stay.
func stripWrappingQuotes(s string) string {
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) < 2 {
		return s
	}
	pairs := map[rune]rune{'"': '"', '“': '”', '‘': '’', '\'': '\''}
	if closing, ok := pairs[rs[0]]; ok && rs[len(rs)-1] == closing {
		return strings.TrimSpace(string(rs[1 : len(rs)-1]))
	}
	return s
}
