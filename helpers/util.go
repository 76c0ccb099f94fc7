package helpers

import "strings"

// CollapseSpaces reduces every whitespace run in s to a single space and trims.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Shorten collapses whitespace and truncates s to at most width runes,
// cutting at a word boundary and appending "..." when anything was dropped.
func Shorten(s string, width int) string {
	s = CollapseSpaces(s)
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	cut := string(runes[:width-3])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ") + "..."
}
