// Package suggest produces search-phrase completions by running a prefix
// query with highlighting and mining the highlighted snippets for the
// matched word plus up to three words following it.
package suggest

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/cloudsearch"
	"github.com/shopgrid/searchbridge/internal/lingua"
)

const (
	// minPhraseLength gates suggestion lookups; single characters match
	// half the catalog.
	minPhraseLength = 2
	maxSuggestions  = 10
	resultSize      = 100

	// specialChars are trimmed from both ends of every mined word.
	specialChars = `,.+/([{}])'"`
)

var (
	// highlightPattern captures a highlighted word and up to three
	// following words of at least four characters each, optionally led by
	// an ampersand.
	highlightPattern = regexp.MustCompile(
		`\$start\$(\S+)\$end\$( ?[& ]*\S{4,})?( ?[& ]*\S{4,})?( ?[& ]*\S{4,})?`)

	// markerPattern scrubs leftover marker tokens from a joined suggestion.
	markerPattern = regexp.MustCompile(`\$\S+?\$`)
)

// Service produces search suggestions for partial phrases.
type Service struct {
	backend Backend
	logger  *zap.Logger
}

// New creates a suggestion service.
func New(backend Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, logger: logger}
}

// Suggestions returns up to ten completions for a partial search phrase,
// most frequent first. Phrases shorter than two characters yield an empty
// list without a backend round trip.
func (s *Service) Suggestions(ctx context.Context, shopNumber int64, locale, phrase string) ([]string, error) {
	if len([]rune(phrase)) < minPhraseLength {
		return []string{}, nil
	}

	cleaned := lingua.CleanPhrase(phrase)
	params := buildParams(cleaned, shopNumber)

	s.logger.Debug("suggestion lookup",
		zap.String("phrase", cleaned),
		zap.Int64("shop_number", shopNumber),
	)

	resp, err := s.backend.Search(ctx, locale, params)
	if err != nil {
		return nil, err
	}

	suggestions := mine(cleaned, resp)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

// buildParams compiles the suggestion query: every token of the cleaned
// phrase must match exactly or as a prefix.
func buildParams(cleaned string, shopNumber int64) cloudsearch.Params {
	var parts []string
	for _, tok := range strings.Split(cleaned, " ") {
		parts = append(parts, conjoin([]string{
			"'" + tok + "'",
			"(prefix '" + tok + "')",
		}, "or"))
	}

	highlight := cloudsearch.HighlightOptions{
		Format:  "text",
		PreTag:  cloudsearch.HighlightStart,
		PostTag: cloudsearch.HighlightEnd,
	}

	return cloudsearch.Params{
		"q":         conjoin(parts, "and"),
		"q.parser":  "structured",
		"q.options": cloudsearch.QueryOptions{Fields: []string{cloudsearch.FieldName, cloudsearch.FieldChildNames}},
		"fq":        fmt.Sprintf("%s:%d", cloudsearch.FieldShopNumber, shopNumber),
		"size":      resultSize,
		"return":    cloudsearch.FieldName + "," + cloudsearch.FieldChildNames,
		"highlight." + cloudsearch.FieldName:       highlight,
		"highlight." + cloudsearch.FieldChildNames: highlight,
	}
}

func conjoin(conditions []string, op string) string {
	filtered := conditions[:0:0]
	for _, c := range conditions {
		if c != "" {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) < 2 {
		return strings.Join(filtered, "")
	}
	return "(" + op + " " + strings.Join(filtered, " ") + ")"
}

// counter tallies suggestions while preserving first-seen order, so equal
// counts rank deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(s string) {
	if _, ok := c.counts[s]; !ok {
		c.order = append(c.order, s)
	}
	c.counts[s]++
}

// mine extracts ranked suggestions from the highlighted name fields.
func mine(cleaned string, resp *cloudsearch.Response) []string {
	counts := newCounter()

	if resp != nil {
		for _, hit := range resp.Hits.Hit {
			if h := hit.Highlights[cloudsearch.FieldName]; h != "" {
				mineHighlight(cleaned, counts, h)
			}
			if h := hit.Highlights[cloudsearch.FieldChildNames]; h != "" {
				mineHighlight(cleaned, counts, h)
			}
		}
	}

	return rank(counts)
}

// mineHighlight records every cumulative word sequence starting at a
// highlighted word: the word alone, then with one, two and three
// following words.
func mineHighlight(cleaned string, counts *counter, highlight string) {
	for _, part := range strings.Split(highlight, cloudsearch.ChildNameSeparator) {
		for _, match := range highlightPattern.FindAllStringSubmatch(part, -1) {
			if match[1] == "" {
				continue
			}
			for end := 1; end <= 4 && match[end] != ""; end++ {
				addSuggestion(cleaned, counts, match[1:end+1])
			}
		}
	}
}

// addSuggestion joins a word sequence into one suggestion and counts it.
// Sequences that clean down to something shorter than the query itself
// are discarded; they can only be fragments of the typed phrase.
func addSuggestion(cleaned string, counts *counter, words []string) {
	trimmed := make([]string, len(words))
	for i, w := range words {
		trimmed[i] = strings.TrimRight(strings.Trim(w, specialChars), "-")
	}

	suggestion := strings.Join(trimmed, "")
	suggestion = strings.TrimSpace(markerPattern.ReplaceAllString(suggestion, ""))

	if len([]rune(suggestion)) < len([]rune(cleaned)) {
		return
	}
	counts.add(suggestion)
}

// rank orders suggestions by count, merges casing variants (first-seen
// casing wins, counts summed) and re-ranks on the merged counts.
func rank(counts *counter) []string {
	type scored struct {
		key   string
		count int
	}

	sorted := make([]scored, 0, len(counts.order))
	for _, key := range counts.order {
		sorted = append(sorted, scored{key: key, count: counts.counts[key]})
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].count > sorted[j].count })

	merged := make(map[string]*scored)
	var order []string
	for i := range sorted {
		lower := strings.ToLower(sorted[i].key)
		if m, ok := merged[lower]; ok {
			m.count += sorted[i].count
			continue
		}
		merged[lower] = &sorted[i]
		order = append(order, lower)
	}

	final := make([]scored, 0, len(order))
	for _, lower := range order {
		final = append(final, *merged[lower])
	}
	sort.SliceStable(final, func(i, j int) bool { return final[i].count > final[j].count })

	out := make([]string, len(final))
	for i, s := range final {
		out[i] = s.key
	}
	return out
}
