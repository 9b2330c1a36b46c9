// Package textnorm repairs Hebrew text that PDF extraction emitted in visual
// (reversed) order and strips layout artifacts so merchant names can be
// matched and displayed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/bidi"
)

// Normalize returns s with whitespace collapsed, bidi control characters
// removed, and every Hebrew run that reads in visual order flipped back to
// logical order. Runs with no direction evidence are left alone, which makes
// Normalize idempotent.
func Normalize(s string) string {
	return normalize(s, false)
}

// Visual is Normalize for text known to come from a visual-order source.
// Runs without direction evidence are assumed reversed. Normalize(Visual(s))
// equals Visual(s).
func Visual(s string) string {
	return normalize(s, true)
}

// HasHebrew reports whether s contains a Hebrew letter.
func HasHebrew(s string) bool {
	for _, r := range s {
		if isHebrewLetter(r) {
			return true
		}
	}
	return false
}

func normalize(s string, assumeVisual bool) string {
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Bidi_Control, r) || r == '\u200b' || r == '\ufeff' {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); {
		if !isHebrewLetter(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		end := runEnd(runes, i)
		run := string(runes[i:end])
		score := direction(runes[i:end])
		if score < 0 || (score == 0 && assumeVisual) {
			run = bidi.ReverseString(run)
		}
		b.WriteString(run)
		i = end
	}
	return b.String()
}

// runEnd returns the index just past the last Hebrew letter of the run that
// starts at i. A run stops at the first Latin letter or digit.
func runEnd(runes []rune, i int) int {
	last := i
	for j := i; j < len(runes); j++ {
		r := runes[j]
		if isHebrewLetter(r) {
			last = j
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
	}
	return last + 1
}

// direction scores a run: positive for logical order, negative for visual.
// Final letter forms only occur at the end of a word and non-final כ מ נ
// never do, so each word's first and last letters vote. Non-final פ and צ
// end loanwords (סקייפ, שופ) and carry no vote.
func direction(run []rune) int {
	score := 0
	start := -1
	for j := 0; j <= len(run); j++ {
		if j < len(run) && isHebrewLetter(run[j]) {
			if start < 0 {
				start = j
			}
			continue
		}
		if start >= 0 {
			score += endAffinity(run[j-1]) - endAffinity(run[start])
			start = -1
		}
	}
	return score
}

func endAffinity(r rune) int {
	switch r {
	case 'ך', 'ם', 'ן', 'ף', 'ץ':
		return 1
	case 'כ', 'מ', 'נ':
		return -1
	}
	return 0
}

func isHebrewLetter(r rune) bool {
	return r >= 'א' && r <= 'ת' || r >= 'װ' && r <= 'ײ'
}
