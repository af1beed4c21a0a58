package catalog

// Filter types.
const (
	TypeRange       = "range"
	TypeMultiselect = "multiselect"
)

// Value is a single selectable filter value with its matching-document count.
type Value struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Hits  int64  `json:"hits"`
}

// Filter is a normalized, localized filter descriptor. A range filter
// carries Minimum/Maximum and never Values; a multiselect filter carries
// Values and never bounds. The constructors enforce this.
type Filter struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Type    string  `json:"type"`
	Source  string  `json:"source,omitempty"`
	Minimum float64 `json:"minimum,omitempty"`
	Maximum float64 `json:"maximum,omitempty"`
	Values  []Value `json:"values,omitempty"`
}

// NewRange creates a range filter with numeric bounds.
func NewRange(id, label string, minimum, maximum float64) Filter {
	return Filter{
		ID:      id,
		Label:   label,
		Type:    TypeRange,
		Minimum: minimum,
		Maximum: maximum,
	}
}

// NewMultiselect creates a multiselect filter with an ordered value list.
func NewMultiselect(id, label, source string, values []Value) Filter {
	return Filter{
		ID:     id,
		Label:  label,
		Type:   TypeMultiselect,
		Source: source,
		Values: values,
	}
}
