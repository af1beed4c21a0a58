// Package facet normalizes raw backend facet responses into localized,
// de-duplicated filter descriptors and extracts product-id lists from hits.
package facet

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopgrid/searchbridge/internal/cloudsearch"
	"github.com/shopgrid/searchbridge/internal/domain/catalog"
)

const (
	// maxFacetValues caps the values of one multiselect filter. The
	// backend returns up to 5000 buckets per facet; clients choke far
	// earlier than that.
	maxFacetValues = 200
	// minFacetValues is the minimum bucket count for a facet to appear.
	minFacetValues = 1
	// minHitsForFacets gates facet generation: facets over a handful of
	// hits are statistically meaningless and expose near-unique values.
	minHitsForFacets = 3
	// maxSharedPathLevels bounds the category prefix collapsing scan.
	maxSharedPathLevels = 10

	// pathGlyph joins the remaining category path segments for display.
	pathGlyph = " » "
)

// compositeSources in collision-priority order: a display name claimed by
// an earlier source is discarded from later ones.
var compositeSources = []string{
	cloudsearch.FieldOptions,
	cloudsearch.FieldProperties,
	cloudsearch.FieldAttributes,
}

// ParseFilters converts a raw backend response into the ordered filter
// list: price first, then categories, then manufacturer, then the
// composite facets sorted by localized label.
func ParseFilters(resp *cloudsearch.Response, locale string) []catalog.Filter {
	if resp == nil {
		return nil
	}

	coll := newCollator(locale)

	var filters []catalog.Filter
	if resp.Hits.Found > minHitsForFacets {
		filters = compositeFilters(resp, coll)

		if m := resp.Facets[cloudsearch.FieldManufacturer]; len(m.Buckets) >= minFacetValues {
			filters = prepend(filters, manufacturerFilter(m.Buckets, locale, coll))
		}
		if c := resp.Facets[cloudsearch.FieldCategories]; len(c.Buckets) >= minFacetValues {
			filters = prepend(filters, categoryFilter(c.Buckets, locale))
		}
	}

	if minimum, maximum := priceRange(resp); minimum != 0 || maximum != 0 {
		filters = prepend(filters, catalog.NewRange(
			cloudsearch.FieldDisplayAmount,
			catalog.Translate("price", locale),
			minimum, maximum,
		))
	}

	return filters
}

// ExtractProductIDs maps every hit to its product identifier and returns
// the backend-reported found count, which may exceed the id count when
// pagination truncates the hit array. A zero found count yields an empty
// list regardless of hit array contents.
func ExtractProductIDs(resp *cloudsearch.Response) ([]string, int64) {
	if resp == nil || resp.Hits.Found == 0 {
		return []string{}, 0
	}
	ids := make([]string, 0, len(resp.Hits.Hit))
	for _, hit := range resp.Hits.Hit {
		if hit.Fields.UID != "" {
			ids = append(ids, hit.Fields.UID)
		}
	}
	return ids, resp.Hits.Found
}

type rawValue struct {
	value string
	hits  int64
}

// compositeFilters merges the three composite facet namespaces into
// multiselect filters. Buckets encode "<name>$fv$<value>"; buckets with an
// empty half are dropped, and a display name seen under a
// higher-priority namespace claims it for good.
func compositeFilters(resp *cloudsearch.Response, coll *collator) []catalog.Filter {
	claimed := make(map[string]string)
	grouped := make(map[string]map[string][]rawValue)

	for _, source := range compositeSources {
		buckets := resp.Facets[source].Buckets
		for _, bucket := range buckets {
			parts := strings.Split(bucket.Value, cloudsearch.FacetValueSeparator)
			if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
				continue
			}
			name, value := parts[0], parts[1]

			if owner, ok := claimed[name]; ok && owner != source {
				continue
			}
			claimed[name] = source

			if grouped[source] == nil {
				grouped[source] = make(map[string][]rawValue)
			}
			grouped[source][name] = append(grouped[source][name], rawValue{value: value, hits: bucket.Count})
		}
	}

	var filters []catalog.Filter
	for source, byName := range grouped {
		for name, raws := range byName {
			if len(raws) < minFacetValues {
				continue
			}

			sort.Slice(raws, func(i, j int) bool { return raws[i].value < raws[j].value })

			values := make([]catalog.Value, 0, min(len(raws), maxFacetValues))
			for _, r := range raws {
				values = append(values, catalog.Value{ID: r.value, Label: r.value, Hits: r.hits})
				if len(values) >= maxFacetValues {
					break
				}
			}
			coll.sortValues(values)

			filters = append(filters, catalog.NewMultiselect(name, name, source, values))
		}
	}

	sort.SliceStable(filters, func(i, j int) bool {
		return coll.compare(filters[i].Label, filters[j].Label) < 0
	})

	return filters
}

// manufacturerFilter builds the brand filter from its facet buckets,
// sorted by value under the locale collation.
func manufacturerFilter(buckets []cloudsearch.Bucket, locale string, coll *collator) catalog.Filter {
	sorted := append([]cloudsearch.Bucket(nil), buckets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return coll.compare(sorted[i].Value, sorted[j].Value) < 0
	})

	values := make([]catalog.Value, 0, len(sorted))
	for _, b := range sorted {
		values = append(values, catalog.Value{ID: b.Value, Label: b.Value, Hits: b.Count})
	}

	return catalog.NewMultiselect(
		cloudsearch.FieldManufacturer,
		catalog.Translate("manufacturer", locale),
		cloudsearch.FieldManufacturer,
		values,
	)
}

// categoryFilter builds the category filter. The path prefix shared by all
// buckets is uninformative for the current result set and is stripped:
// the first segment is dropped from every path while all paths agree on it
// and each keeps at least two segments, for at most ten levels.
func categoryFilter(buckets []cloudsearch.Bucket, locale string) catalog.Filter {
	paths := make([][]string, len(buckets))
	for i, b := range buckets {
		paths[i] = strings.Split(b.Value, cloudsearch.CategorySeparator)
	}

	for level := 0; level < maxSharedPathLevels; level++ {
		shared := paths[0][0]
		agree := true
		for _, p := range paths {
			if len(p) < 2 || p[0] != shared {
				agree = false
				break
			}
		}
		if !agree {
			break
		}
		for i := range paths {
			paths[i] = paths[i][1:]
		}
	}

	values := make([]catalog.Value, len(buckets))
	for i, b := range buckets {
		values[i] = catalog.Value{
			ID:    b.Value,
			Label: strings.Join(paths[i], pathGlyph),
			Hits:  b.Count,
		}
	}

	return catalog.NewMultiselect(
		cloudsearch.FieldCategories,
		catalog.Translate("category", locale),
		cloudsearch.FieldCategories,
		values,
	)
}

// priceRange computes the price extremes over the display-amount facet.
// Non-numeric bucket values are ignored.
func priceRange(resp *cloudsearch.Response) (minimum, maximum float64) {
	first := true
	for _, b := range resp.Facets[cloudsearch.FieldDisplayAmount].Buckets {
		v, err := strconv.ParseFloat(b.Value, 64)
		if err != nil {
			continue
		}
		if first {
			minimum, maximum = v, v
			first = false
			continue
		}
		if v < minimum {
			minimum = v
		}
		if v > maximum {
			maximum = v
		}
	}
	return minimum, maximum
}

func prepend(filters []catalog.Filter, f catalog.Filter) []catalog.Filter {
	return append([]catalog.Filter{f}, filters...)
}
