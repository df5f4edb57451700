// Package artifact persists generated structures, one directory per variant.
package artifact

import "strings"

// forbidden lists the characters that are not safe in directory names.
const forbidden = `\/*?:"<>|`

// Sanitize replaces every character that is not safe in a directory name
// with an underscore. Sanitize(Sanitize(x)) == Sanitize(x) for every x.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) {
			return '_'
		}
		return r
	}, name)
}
