package lingua

import "strings"

// Liang-style pattern hyphenation for German compound splitting. The
// pattern and exception tables are process-wide read-only state, built once
// at package initialization.

const (
	hyphenLeftMin  = 2
	hyphenRightMin = 2
)

// IsGerman reports whether locale is a German shop locale (de-de, de-at, ...).
func IsGerman(locale string) bool {
	l := strings.ToLower(locale)
	return l == "de" || strings.HasPrefix(l, "de-")
}

// Hyphenate re-splits tokens at syllable boundaries for German locales so
// that agglutinative compounds in product names become partially matchable.
// For all other locales it is the identity transform.
func Hyphenate(tokens []string, locale string) []string {
	if !IsGerman(locale) {
		return tokens
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, hyphenateWord(tok)...)
	}
	return out
}

// hyphenateWord splits a single lowercase word at valid break positions.
func hyphenateWord(word string) []string {
	if parts, ok := hyphenExceptions[word]; ok {
		return append([]string(nil), parts...)
	}

	runes := []rune(word)
	if len(runes) < hyphenLeftMin+hyphenRightMin {
		return []string{word}
	}

	// Dot-delimit the word so patterns can anchor at its edges.
	w := make([]rune, 0, len(runes)+2)
	w = append(w, '.')
	w = append(w, runes...)
	w = append(w, '.')

	// points[x] is the strongest pattern value at the boundary before w[x].
	points := make([]int, len(w)+1)
	for i := 0; i < len(w); i++ {
		maxLen := hyphenMaxPattern
		if rest := len(w) - i; rest < maxLen {
			maxLen = rest
		}
		for j := i + 1; j <= i+maxLen; j++ {
			vals, ok := hyphenPatterns[string(w[i:j])]
			if !ok {
				continue
			}
			for k, v := range vals {
				if v > points[i+k] {
					points[i+k] = v
				}
			}
		}
	}

	// Odd values mark break positions; word rune p sits at w[p+1].
	var parts []string
	last := 0
	for p := hyphenLeftMin; p <= len(runes)-hyphenRightMin; p++ {
		if points[p+1]%2 == 1 {
			parts = append(parts, string(runes[last:p]))
			last = p
		}
	}
	parts = append(parts, string(runes[last:]))
	return parts
}
