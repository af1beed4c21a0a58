package lingua

import "strings"

// The compact German pattern set below follows the Liang convention: odd
// digits request a break, even digits veto one, digits bind to the boundary
// before the following letter. The onset block encodes the core German
// syllabification rule (a single consonant before a vowel opens the next
// syllable); the cluster block keeps the digraphs sch, ch, ck, ph, th and st
// from being torn apart by the onset rule.
var hyphenRawPatterns = buildRawPatterns()

func buildRawPatterns() []string {
	patterns := []string{
		// Cluster corrections.
		"1sch", "s2ch", "c2h", "c2k", "p2h", "t2h", "s2t",
		// Never break right after a word-initial vowel.
		".a2", ".e2", ".i2", ".o2", ".u2", ".ä2", ".ö2", ".ü2",
		// Double consonants break between the pair.
		"b1b", "d1d", "f1f", "g1g", "l1l", "m1m", "n1n", "p1p", "r1r", "s1s", "t1t",
	}
	// Onset rule: consonant + vowel starts a new syllable.
	for _, c := range "bcdfghjklmnpqrstvwxz" {
		for _, v := range "aeiouyäöü" {
			patterns = append(patterns, "1"+string(c)+string(v))
		}
	}
	return patterns
}

// hyphenExceptions lists words whose break positions override the patterns,
// mostly catalog vocabulary where the compact pattern set falls short.
var hyphenExceptions = buildExceptions(
	"pro-dukt",
	"pro-duk-te",
	"kin-der-wa-gen",
	"ta-schen-lam-pe",
	"fahr-rad",
	"wasch-ma-schi-ne",
	"son-nen-bril-le",
	"re-gen-ja-cke",
	"ja-cke",
	"schrau-ben-zie-her",
	"ku-gel-schrei-ber",
	"hand-schu-he",
	"fern-se-her",
	"staub-sau-ger",
)

var (
	hyphenPatterns   map[string][]int
	hyphenMaxPattern int
)

func init() {
	hyphenPatterns = make(map[string][]int, len(hyphenRawPatterns))
	for _, raw := range hyphenRawPatterns {
		letters, vals := compilePattern(raw)
		hyphenPatterns[letters] = vals
		if n := len([]rune(letters)); n > hyphenMaxPattern {
			hyphenMaxPattern = n
		}
	}
}

// compilePattern splits a textual pattern like ".ab1a" into its letter key
// and the value attached to each of the len(letters)+1 boundaries.
func compilePattern(raw string) (string, []int) {
	var letters []rune
	vals := []int{0}
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			vals[len(vals)-1] = int(r - '0')
			continue
		}
		letters = append(letters, r)
		vals = append(vals, 0)
	}
	return string(letters), vals
}

func buildExceptions(words ...string) map[string][]string {
	m := make(map[string][]string, len(words))
	for _, w := range words {
		parts := strings.Split(w, "-")
		m[strings.Join(parts, "")] = parts
	}
	return m
}
