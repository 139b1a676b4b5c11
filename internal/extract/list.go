package extract

import (
	"regexp"
	"strings"
)

var listMarkerRe = regexp.MustCompile(`^\s*(?:[-*+\x{2022}]|\d{1,3}[.)])\s+`)

// SplitListItems splits a section body into discrete items. Bulleted and
// numbered markers both count, with the marker stripped; a wrapped item's
// continuation lines fold back into it with a single space. Bodies that
// carry no markers at all split one item per non-blank line, which is how
// vocabulary and materials sections sometimes arrive.
func SplitListItems(body string) []string {
	var items []string
	open := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			open = false
			continue
		}
		if m := listMarkerRe.FindString(line); m != "" {
			items = append(items, strings.TrimSpace(line[len(m):]))
			open = true
			continue
		}
		if open {
			items[len(items)-1] += " " + trimmed
			continue
		}
		items = append(items, trimmed)
	}
	return items
}
