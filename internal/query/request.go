// Package query compiles structured catalog search requests into the
// backend's boolean expression grammar.
package query

// Sort selects the result ordering of a search request.
type Sort string

// Supported sort modes. Unknown values compile as relevance.
const (
	SortRelevance Sort = "relevance"
	SortPriceAsc  Sort = "priceAsc"
	SortPriceDesc Sort = "priceDesc"
	SortRandom    Sort = "random"
)

// ParseSort maps a raw sort string to a Sort, defaulting to relevance.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortPriceAsc, SortPriceDesc, SortRandom:
		return Sort(s)
	default:
		return SortRelevance
	}
}

// Filter namespaces. A FilterSpec whose source matches none of these is
// compiled with the legacy fallback against all three composite namespaces.
const (
	SourceManufacturer = "manufacturer"
	SourceCategories   = "categories"
	SourceAttributes   = "attributes"
	SourceOptions      = "options"
	SourceProperties   = "properties"
)

// Special filter keys. The price bounds and activity flag are handled
// outside the generic filter compiler; only_discounted compiles to a
// discount existence clause.
const (
	KeyPriceMin       = "display_amount >="
	KeyPriceMax       = "display_amount <="
	KeyOnlyActive     = "onlyActive"
	KeyOnlyDiscounted = "only_discounted"
)

// FilterSpec is one filter in its normalized form: key, source namespace
// and an ordered value list. Bare scalar and bare list inputs are folded
// into this shape at the request boundary, before compilation.
type FilterSpec struct {
	Key    string
	Source string
	Values []string
}

// Request is the immutable specification a query is compiled from. It is
// built once per request; Compile never mutates it.
type Request struct {
	ShopNumber int64
	Locale     string
	Term       string

	// Price bounds; nil means unbounded on that side.
	MinPrice *float64
	MaxPrice *float64

	// Filters in insertion order. CategoryPath, when set, overrides any
	// categories filter in the list.
	Filters      []FilterSpec
	CategoryPath string

	Sort   Sort
	Offset int
	Limit  int
}

// specialKeys pass through filter normalization untouched; the compiler
// gives each its own treatment.
var specialKeys = map[string]bool{
	KeyPriceMin:       true,
	KeyPriceMax:       true,
	KeyOnlyActive:     true,
	KeyOnlyDiscounted: true,
}

// NormalizeFilters drops filters with empty value lists and defaults a
// missing source to the filter key, mirroring the legacy pre-namespace
// format. Special keys are passed through as-is.
func NormalizeFilters(filters []FilterSpec) []FilterSpec {
	out := make([]FilterSpec, 0, len(filters))
	for _, f := range filters {
		if specialKeys[f.Key] {
			out = append(out, f)
			continue
		}
		if len(f.Values) == 0 {
			continue
		}
		if f.Source == "" {
			f.Source = f.Key
		}
		out = append(out, f)
	}
	return out
}

// effectiveFilters resolves the category override: a set CategoryPath
// replaces the values of an existing categories filter in place, or
// appends one.
func (r Request) effectiveFilters() []FilterSpec {
	filters := NormalizeFilters(r.Filters)
	if r.CategoryPath == "" {
		return filters
	}
	category := FilterSpec{
		Key:    SourceCategories,
		Source: SourceCategories,
		Values: []string{r.CategoryPath},
	}
	for i, f := range filters {
		if f.Key == SourceCategories {
			filters[i] = category
			return filters
		}
	}
	return append(filters, category)
}

// hasFilterValues reports whether the request carries an active filter for
// the given key.
func (r Request) hasFilterValues(key string) bool {
	for _, f := range r.effectiveFilters() {
		if f.Key == key && len(f.Values) > 0 {
			return true
		}
	}
	return false
}
