package logutil

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptRunes bounds widget text copied into log events.
const DefaultExcerptRunes = 64

// Excerpt returns s quoted for logs, cut to at most max runes.
// Control characters are escaped so a widget value cannot break log lines.
func Excerpt(s string, max int) string {
	if max <= 0 {
		max = DefaultExcerptRunes
	}
	if utf8.RuneCountInString(s) <= max {
		return strconv.Quote(s)
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == max {
			break
		}
		b.WriteRune(r)
		n++
	}
	return strconv.Quote(b.String()) + "..."
}

// Text is Excerpt with the default bound.
func Text(s string) string {
	return Excerpt(s, DefaultExcerptRunes)
}
