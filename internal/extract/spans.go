package extract

import (
	"regexp"
	"strings"
)

// Span names as they appear in Section.Spans.
const (
	SpanTeachingTip = "tip"
	SpanUDL         = "udl"
)

var (
	tipSpanRe = regexp.MustCompile(`(?s)\[TIP\](.*?)\[/TIP\]`)
	udlSpanRe = regexp.MustCompile(`(?s)\[UDL\](.*?)\[/UDL\]`)

	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// ExtractSpans pulls [TIP] and [UDL] tagged spans out of body. Multiple
// spans of the same kind concatenate in order, separated by a blank line.
// The remainder keeps its paragraph structure with the holes closed up.
// Unbalanced tags are left alone here; the sanitizer strips strays later.
func ExtractSpans(body string) (string, map[string]string) {
	spans := make(map[string]string, 2)
	body = pullSpan(body, tipSpanRe, SpanTeachingTip, spans)
	body = pullSpan(body, udlSpanRe, SpanUDL, spans)
	body = blankRunRe.ReplaceAllString(body, "\n\n")
	return body, spans
}

func pullSpan(body string, re *regexp.Regexp, name string, spans map[string]string) string {
	var parts []string
	out := re.ReplaceAllStringFunc(body, func(m string) string {
		sub := re.FindStringSubmatch(m)
		if text := strings.TrimSpace(sub[1]); text != "" {
			parts = append(parts, text)
		}
		return ""
	})
	if len(parts) > 0 {
		spans[name] = strings.Join(parts, "\n\n")
	}
	return out
}
