package query

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/shopgrid/searchbridge/internal/cloudsearch"
	"github.com/shopgrid/searchbridge/internal/lingua"
)

const (
	// maxTermLength caps the raw term before cleaning.
	maxTermLength = 60
	// matchAll is the backend's "match everything" sentinel, used both as
	// the wildcard input token and as the query when no term query exists.
	matchAll = "matchall"

	facetSize           = 5000
	facetSizeCategories = 20

	fuzzyOperator = "~2"
)

// weightedFields is the field list (with boosts) the backend matches
// free-text queries against.
var weightedFields = []string{
	"name^2",
	"child_names",
	"item_numbers",
	"tags",
	"categories_searchable",
	"attributes_searchable",
	"options_searchable",
	"properties_searchable",
	"manufacturer_searchable",
	"name_normalized^0.5",
}

// Compile translates a request into backend query parameters. fuzzy swaps
// the structured term query for a single edit-distance-2 token (the
// deterministic zero-hit fallback); discovery requests facet buckets
// instead of products: size zero, no highlighting, and no price clause so
// the price facet reflects the true global extremes.
func Compile(req Request, fuzzy, discovery bool) cloudsearch.Params {
	var searchQuery string
	if fuzzy {
		searchQuery = lingua.TrimQuery(strings.ToLower(req.Term), maxTermLength, lingua.ClassDefault) + fuzzyOperator
	} else {
		searchQuery = buildTermQuery(req.Term, req.Locale)
	}

	params := setupParams(req, searchQuery, !discovery)
	if discovery {
		addFacets(req, params)
		params["size"] = 0 // no results, just facets
	}
	addSort(req, params)

	if req.Term != "" && !discovery {
		addHighlighting(params)
	}

	return params
}

// buildTermQuery builds the full-text disjunction for a term. Empty terms
// and the wildcard token yield no term query at all.
func buildTermQuery(term, locale string) string {
	if term == "" || term == "*" {
		return ""
	}
	return conjunction(termQueryParts(term, locale), "or")
}

// termQueryParts assembles the disjunction branches. Each branch is added
// only if non-empty; the item-number equality clause at the end is
// unconditional so item-number lookups survive even when every other
// branch is empty.
func termQueryParts(term, locale string) []string {
	var parts []string

	trimmed := lingua.TrimQuery(term, maxTermLength, lingua.ClassPermissive)
	normalized := lingua.Normalize(term)
	hyphenated := lingua.Hyphenate(normalized, locale)

	quoted := make([]string, len(hyphenated))
	for i, tok := range hyphenated {
		quoted[i] = "'" + tok + "'"
	}

	// Every sub-token has to be found.
	parts = append(parts, conjunction(quoted, "and"))

	// As above, restricted to the item-number field as prefix matches.
	parts = append(parts, fieldPrefixQuery(quoted, cloudsearch.FieldItemNumbers))

	if len(quoted) > 1 {
		// Whole phrase with a boost, to recover matches the per-token
		// conjunction loses to stop-words.
		parts = append(parts, fmt.Sprintf("(term boost=2 '%s')", trimmed))
	}

	if len([]rune(trimmed)) > 1 {
		parts = append(parts, fmt.Sprintf("(prefix '%s')", trimmed))
	}

	if len(normalized) > 1 {
		var nameParts []string
		for _, tok := range normalized {
			test := strings.ReplaceAll(tok, "'", "")
			// Short and numeric tokens are too noisy for name-prefix matching.
			if isNumericish(test) || len([]rune(test)) <= 2 {
				continue
			}
			nameParts = append(nameParts, fmt.Sprintf("(prefix field=name '%s')", tok))
		}
		if len(nameParts) > 0 {
			parts = append(parts, conjunction(nameParts, "and"))
		}
	}

	itemNumberTerm := strings.TrimSpace(stripItemNumberChars(trimmed))
	parts = append(parts, fmt.Sprintf("%s:'%s'", cloudsearch.FieldItemNumbers, itemNumberTerm))

	return parts
}

// isNumericish reports whether a token reads as a number; a leading digit
// counts, matching the float-prefix parsing this replaces.
func isNumericish(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	r := []rune(s)[0]
	return r >= '0' && r <= '9'
}

// stripItemNumberChars removes apostrophes and backslashes, which item
// numbers never contain but quoting would otherwise trip over.
func stripItemNumberChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\'' || r == '\\' {
			return ' '
		}
		return r
	}, s)
}

// conjunction joins non-empty conditions with a boolean operator. A single
// surviving condition is returned bare, without the operator wrapper.
func conjunction(conditions []string, op string) string {
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

// fieldPrefixQuery wraps each condition in a prefix match on a field and
// conjoins them.
func fieldPrefixQuery(conditions []string, field string) string {
	wrapped := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if c == "" {
			continue
		}
		wrapped = append(wrapped, fmt.Sprintf("(prefix field='%s' %s)", field, c))
	}
	return conjunction(wrapped, "and")
}

// setupParams builds the base parameter set: returned fields, weighted
// query options, the backend-side filter expression and pagination.
func setupParams(req Request, searchQuery string, withPrice bool) cloudsearch.Params {
	params := cloudsearch.Params{
		"return":    cloudsearch.FieldUID,
		"q.options": cloudsearch.QueryOptions{Fields: weightedFields},
		"fq":        conjunction(filterConditions(req, withPrice), "and"),
	}

	// Structured parsing for boolean expressions and the matchall sentinel;
	// anything else goes through the backend's default parser.
	if searchQuery == "" || strings.HasPrefix(searchQuery, "(") {
		params["q.parser"] = "structured"
	}
	if searchQuery == "" {
		searchQuery = matchAll
	}
	params["q"] = searchQuery

	if req.Offset != 0 {
		params["start"] = req.Offset
	}
	params["size"] = req.Limit

	return params
}

// filterConditions returns the top-level backend-side filter conjuncts:
// shop scope, the compiled filter expression and (unless suppressed) the
// price range clause.
func filterConditions(req Request, withPrice bool) []string {
	conditions := []string{
		fmt.Sprintf("%s:%d", cloudsearch.FieldShopNumber, req.ShopNumber),
		compileFilters(req),
	}
	if withPrice {
		conditions = append(conditions, priceClause(req))
	}
	return conditions
}

// compileFilters renders the generic filters in reverse insertion order.
// Order carries no boolean semantics; it is kept for reproducible output.
func compileFilters(req Request) string {
	filters := req.effectiveFilters()
	var clauses []string

	for i := len(filters) - 1; i >= 0; i-- {
		f := filters[i]

		switch f.Key {
		case KeyPriceMin, KeyPriceMax, KeyOnlyActive:
			// Handled as the price range and activity flag, not here.
			continue
		case KeyOnlyDiscounted:
			if truthy(f.Values) {
				clauses = append(clauses, cloudsearch.FieldDiscount+":{1,}")
			}
			continue
		}

		rendered := filterStrings(f)
		if len(rendered) == 1 {
			clauses = append(clauses, rendered[0])
		} else {
			clauses = append(clauses, "(or "+strings.Join(rendered, " ")+")")
		}
	}

	return strings.Join(clauses, " ")
}

// filterStrings renders one filter's per-value clauses, values in reverse
// enumeration order.
func filterStrings(f FilterSpec) []string {
	out := make([]string, 0, len(f.Values))
	for i := len(f.Values) - 1; i >= 0; i-- {
		value := escapeValue(f.Values[i])

		switch f.Source {
		case SourceManufacturer:
			out = append(out, fmt.Sprintf("%s:'%s'", f.Source, value))
		case SourceCategories:
			// Prefix to match descendants, phrase to match the category itself.
			out = append(out, fmt.Sprintf("(or (prefix field=%s '%s%s')(phrase field=%s '%s'))",
				f.Source, value, cloudsearch.CategorySeparator, f.Source, value))
		case SourceAttributes, SourceOptions, SourceProperties:
			out = append(out, composite(f.Source, f.Key, value))
		default:
			// Pre-namespace data: search all three composite fields.
			out = append(out, composite(cloudsearch.FieldAttributes, f.Key, value))
			out = append(out, composite(cloudsearch.FieldOptions, f.Key, value))
			out = append(out, composite(cloudsearch.FieldProperties, f.Key, value))
		}
	}
	return out
}

func composite(field, key, value string) string {
	return fmt.Sprintf("%s:'%s%s%s'", field, key, cloudsearch.FacetValueSeparator, value)
}

// escapeValue backslash-escapes apostrophes and backslashes for quoting.
func escapeValue(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// truthy interprets a passthrough filter value as a flag.
func truthy(values []string) bool {
	if len(values) == 0 {
		return false
	}
	switch strings.ToLower(values[0]) {
	case "", "0", "false":
		return false
	}
	return true
}

// priceClause renders the price range with bracket/brace bound syntax:
// brackets close finite bounds, braces leave a side unbounded.
func priceClause(req Request) string {
	if req.MinPrice == nil && req.MaxPrice == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(cloudsearch.FieldDisplayAmount)
	b.WriteString(":")
	if req.MinPrice != nil {
		b.WriteString("[")
		b.WriteString(formatAmount(*req.MinPrice))
	} else {
		b.WriteString("{")
	}
	b.WriteString(",")
	if req.MaxPrice != nil {
		b.WriteString(formatAmount(*req.MaxPrice))
		b.WriteString("]")
	} else {
		b.WriteString("}")
	}
	return b.String()
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// addFacets requests bucket enumeration for the discovery query. Category
// and manufacturer facets are skipped when that filter is already active:
// counts under an applied equality filter would only re-offer the selected
// value.
func addFacets(req Request, params cloudsearch.Params) {
	bucketSorted := cloudsearch.FacetOptions{Sort: "bucket", Size: facetSize}

	params["facet.attributes"] = bucketSorted
	params["facet.options"] = bucketSorted
	params["facet.properties"] = bucketSorted

	if !req.hasFilterValues(SourceCategories) {
		params["facet.categories"] = cloudsearch.FacetOptions{Sort: "count", Size: facetSizeCategories}
	}
	if !req.hasFilterValues(SourceManufacturer) {
		params["facet.manufacturer"] = bucketSorted
	}

	params["facet.display_amount"] = bucketSorted
}

// addSort sets the sort directive. Random sorting seeds a per-request
// expression; the backend's _rand alone does not change between requests.
func addSort(req Request, params cloudsearch.Params) {
	switch req.Sort {
	case SortPriceAsc:
		params["sort"] = cloudsearch.FieldDisplayAmount + " asc"
	case SortPriceDesc:
		params["sort"] = cloudsearch.FieldDisplayAmount + " desc"
	case SortRandom:
		params["sort"] = "random desc"
		params["expr.random"] = fmt.Sprintf("sin(_rand*%d)", rand.Intn(101))
	default:
		params["sort"] = "_score desc"
	}
}

// addHighlighting requests highlighted snippets for the fields the
// suggestion extractor and storefront consume. The highlight fields must
// also be returned fields, or the backend errors.
func addHighlighting(params cloudsearch.Params) {
	params["return"] = "name,uid,child_names,attributes_searchable"

	highlight := cloudsearch.HighlightOptions{
		Format:  "text",
		PreTag:  cloudsearch.HighlightStart,
		PostTag: cloudsearch.HighlightEnd,
	}
	params["highlight."+cloudsearch.FieldName] = highlight
	params["highlight."+cloudsearch.FieldChildNames] = highlight
	params["highlight."+cloudsearch.FieldAttributesSearchable] = highlight
}
