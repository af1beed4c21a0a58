// Package cloudsearch holds the wire model shared by the query compiler,
// the facet parser and the HTTP client: the flat parameter map sent to the
// search backend and the raw hit/facet response it returns.
package cloudsearch

// Reserved token sequences in the backend's data encoding. Both are assumed
// never to occur in real product data.
const (
	// FacetValueSeparator joins display name and value inside composite
	// facet bucket values: "<name>$fv$<value>".
	FacetValueSeparator = "$fv$"
	// CategorySeparator separates hierarchy levels in category values.
	CategorySeparator = "=>"
)

// Highlight markers wrapping matched text in highlighted fields.
const (
	HighlightStart = "$start$"
	HighlightEnd   = "$end$"
)

// ChildNameSeparator joins the names of a product's children inside the
// highlighted child-name field.
const ChildNameSeparator = "$next$"

// Index field names.
const (
	FieldUID                  = "uid"
	FieldName                 = "name"
	FieldChildNames           = "child_names"
	FieldItemNumbers          = "item_numbers"
	FieldCategories           = "categories"
	FieldManufacturer         = "manufacturer"
	FieldAttributes           = "attributes"
	FieldOptions              = "options"
	FieldProperties           = "properties"
	FieldAttributesSearchable = "attributes_searchable"
	FieldDisplayAmount        = "display_amount"
	FieldDiscount             = "discount"
	FieldShopNumber           = "shop_number"
)

// QueryOptions configures the backend's field weighting for a query.
type QueryOptions struct {
	Fields []string `json:"fields"`
}

// FacetOptions requests bucket enumeration for one facet.
type FacetOptions struct {
	Sort string `json:"sort"`
	Size int    `json:"size"`
}

// HighlightOptions requests highlighting for one field.
type HighlightOptions struct {
	Format  string `json:"format"`
	PreTag  string `json:"pre_tag"`
	PostTag string `json:"post_tag"`
}

// Response is the raw backend search response. Missing hit arrays and
// facet maps decode to their zero values; consumers tolerate both.
type Response struct {
	Hits   Hits             `json:"hits"`
	Facets map[string]Facet `json:"facets"`
}

// Hits is the hit section of a response.
type Hits struct {
	Found int64 `json:"found"`
	Start int64 `json:"start"`
	Hit   []Hit `json:"hit"`
}

// Hit is a single matching document.
type Hit struct {
	ID         string            `json:"id"`
	Fields     HitFields         `json:"fields"`
	Highlights map[string]string `json:"highlights"`
}

// HitFields carries the returned document fields.
type HitFields struct {
	UID string `json:"uid"`
}

// Facet is one facet's bucket list.
type Facet struct {
	Buckets []Bucket `json:"buckets"`
}

// Bucket is a distinct facet value and its matching-document count.
type Bucket struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}
