package output

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title capitalizes every word, e.g. "equivalent sites" -> "Equivalent Sites".
func Title(s string) string {
	// a Caser keeps state, so each call gets its own
	return cases.Title(language.English).String(s)
}

// FormatHeader returns a markdown heading of the given level.
func FormatHeader(level int, title string) string {
	level = min(max(level, 1), 6)
	return strings.Repeat("#", level) + " " + title
}

// FormatKeyValue returns a markdown list item "- **key:** value".
func FormatKeyValue(key, value string) string {
	return "- **" + key + ":** " + value
}
