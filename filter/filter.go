// Package filter removes whisper artifacts from raw transcripts.
package filter

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	controlToken = regexp.MustCompile(`<\|[^|]*\|>`)
	bracketTag   = regexp.MustCompile(`\[\w[\w\s]*\]`)
	annotation   = regexp.MustCompile(`\([A-Za-z][A-Za-z\s]*\)`)
	musicNotes   = regexp.MustCompile(`♪+`)
	whitespace   = regexp.MustCompile(`\s{2,}`)
)

// Phrases whisper emits on silence or music. Compared after lowercasing and
// trimming punctuation.
var denylist = map[string]struct{}{
	"thank you for watching":  {},
	"thank you for listening": {},
	"thanks for watching":     {},
	"thanks for listening":    {},
}

// Clean strips tag tokens, bracketed and parenthetical annotations and
// music glyphs, normalizes whitespace, and returns "" when what remains is
// a known hallucinated phrase. Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	text := raw
	for {
		next := strip(text)
		if next == text {
			break
		}
		text = next
	}
	text = whitespace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if IsBoilerplate(text) {
		return ""
	}
	return text
}

func strip(text string) string {
	text = controlToken.ReplaceAllString(text, "")
	text = bracketTag.ReplaceAllString(text, "")
	text = annotation.ReplaceAllString(text, "")
	return musicNotes.ReplaceAllString(text, "")
}

// IsBoilerplate reports whether text is exactly one of the denylisted
// phrases, ignoring case and surrounding punctuation.
func IsBoilerplate(text string) bool {
	key := strings.TrimFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	_, ok := denylist[key]
	return ok
}
