package facet

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shopgrid/searchbridge/internal/domain/catalog"
)

// collator wraps an ICU-style collator configured for a shop locale with
// uppercase-first ordering, matching how shops expect brand and option
// lists to read.
type collator struct {
	c *collate.Collator
}

func newCollator(locale string) *collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	if t, err := tag.SetTypeForKey("kf", "upper"); err == nil {
		tag = t
	}
	return &collator{c: collate.New(tag, collate.OptionsFromTag(tag))}
}

func (co *collator) compare(a, b string) int {
	return co.c.CompareString(a, b)
}

// sortValues orders filter values by label under the locale's collation.
func (co *collator) sortValues(values []catalog.Value) {
	sort.SliceStable(values, func(i, j int) bool {
		return co.compare(values[i].Label, values[j].Label) < 0
	})
}
