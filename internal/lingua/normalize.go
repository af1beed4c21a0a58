// Package lingua provides the locale-aware term normalization used by the
// query compiler: transition splitting, character-class cleaning and
// dictionary hyphenation for German compound words.
package lingua

import (
	"strings"
	"unicode"
)

// CharClass selects the allow-list used by TrimQuery.
type CharClass int

const (
	// ClassDefault allows letters, decimal digits, "-", ".", "|" and space.
	ClassDefault CharClass = iota
	// ClassPermissive additionally allows "," and "_". Used when the
	// trimmed term feeds phrase and prefix clauses.
	ClassPermissive
)

// isLetter reports whether r is in Ll, Lu, Lt or Lo. Modifier letters are
// deliberately excluded; they never appear in meaningful product terms.
func isLetter(r rune) bool {
	return unicode.In(r, unicode.Ll, unicode.Lu, unicode.Lt, unicode.Lo)
}

func isDigit(r rune) bool {
	return unicode.Is(unicode.Nd, r)
}

// isTransition reports whether a boundary should be inserted between a and b:
// digit→letter, letter→digit or lowercase→uppercase.
func isTransition(a, b rune) bool {
	switch {
	case isDigit(a) && isLetter(b):
		return true
	case isLetter(a) && isDigit(b):
		return true
	case unicode.IsLower(a) && unicode.IsUpper(b):
		return true
	}
	return false
}

// splitTransitions inserts a single space at every matched boundary pair.
// Both runes of a matched pair are consumed before scanning resumes, so a
// three-rune chain spanning two overlapping transitions (digit-letter-digit)
// is split only once. Callers rely on this exact behavior; do not "fix" it.
func splitTransitions(term string) string {
	runes := []rune(term)
	var b strings.Builder
	b.Grow(len(term) + len(term)/4)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if i+1 < len(runes) && isTransition(runes[i], runes[i+1]) {
			b.WriteRune(' ')
			i++
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}

// Normalize splits a raw phrase into normalized tokens: transition
// splitting, lowercasing, removal of everything that is not a letter,
// decimal digit or space, then whitespace tokenization. Normalize is
// idempotent on its own output.
func Normalize(term string) []string {
	s := strings.ToLower(splitTransitions(term))
	mapped := strings.Map(func(r rune) rune {
		if isLetter(r) || isDigit(r) || r == ' ' {
			return r
		}
		return ' '
	}, s)
	return strings.Fields(mapped)
}

func allowed(r rune, class CharClass) bool {
	if isLetter(r) || isDigit(r) {
		return true
	}
	switch r {
	case '-', '.', '|', ' ':
		return true
	case ',', '_':
		return class == ClassPermissive
	}
	return false
}

// CleanPhrase lowercases a raw phrase and collapses every disallowed rune
// and whitespace run into a single space. Unlike Normalize it keeps
// hyphens, dots and pipes inside tokens.
func CleanPhrase(term string) string {
	mapped := strings.Map(func(r rune) rune {
		if allowed(r, ClassDefault) {
			return r
		}
		return ' '
	}, term)
	return strings.ToLower(strings.Join(strings.Fields(mapped), " "))
}

// TrimQuery bounds a raw term for query construction: trim, cap at limit
// runes (before cleaning, to bound cost), replace disallowed runes with a
// space, then strip space and hyphen runs from both ends.
func TrimQuery(term string, limit int, class CharClass) string {
	s := strings.TrimSpace(term)
	if runes := []rune(s); len(runes) > limit {
		s = string(runes[:limit])
	}
	s = strings.Map(func(r rune) rune {
		if allowed(r, class) {
			return r
		}
		return ' '
	}, s)
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
}
