// Package sanitize cleans user-supplied text before it is stored or sent to
// a provider.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding are peeled off.
const maxPasses = 8

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// stripHTML sanitizes and unescapes until the text stops changing, so
// entity-encoded markup cannot come back as live HTML. Input still changing
// after maxPasses loses its angle brackets.
func stripHTML(s string) string {
	for range maxPasses {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			return s
		}
		s = next
	}
	return angleBrackets.Replace(s)
}

// Text strips HTML and control characters (newline and tab survive),
// collapses runs of spaces, trims and truncates to max runes.
// A max of zero or less disables truncation.
func Text(s string, max int) string {
	return clean(s, max, false)
}

// Line is like Text but also folds newlines and tabs into single spaces.
func Line(s string, max int) string {
	return clean(s, max, true)
}

func clean(s string, max int, singleLine bool) string {
	s = stripHTML(s)

	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		switch {
		case r == '\r':
			continue
		case r == '\n' || r == '\t':
			if singleLine {
				r = ' '
			}
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			r = ' '
		}

		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}

	out := strings.TrimSpace(b.String())
	if max > 0 {
		if runes := []rune(out); len(runes) > max {
			out = strings.TrimSpace(string(runes[:max]))
		}
	}
	return out
}
