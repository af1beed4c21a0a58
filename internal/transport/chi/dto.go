package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopgrid/searchbridge/internal/domain/catalog"
	"github.com/shopgrid/searchbridge/internal/query"
)

// searchRequest is the body shared by the search, products and filters
// endpoints.
type searchRequest struct {
	SearchPhrase string    `json:"searchPhrase"`
	Filters      filterSet `json:"filters"`
	CategoryPath string    `json:"categoryPath"`
	Sort         string    `json:"sort"`
	Offset       int       `json:"offset"`
	Limit        *int      `json:"limit"`
}

type suggestRequest struct {
	SearchPhrase string `json:"searchPhrase"`
}

type productsResponse struct {
	ProductIDs        []string `json:"productIds"`
	TotalProductCount int64    `json:"totalProductCount"`
}

type filtersResponse struct {
	Filters []catalog.Filter `json:"filters"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// filterSet decodes the storefront's filter object. The object's key
// order is significant downstream, so it is decoded with a token stream
// instead of a map. The price filter is folded into explicit bounds; all
// other entries become FilterSpecs in wire order.
type filterSet struct {
	minPrice *float64
	maxPrice *float64
	filters  []query.FilterSpec
}

// priceFilterKey carries the price range inside the filter object.
const priceFilterKey = "display_amount"

func (f *filterSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode filters: %w", err)
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("filters must be an object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode filters: %w", err)
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode filter %q: %w", key, err)
		}

		if key == priceFilterKey {
			if err := f.decodePrice(raw); err != nil {
				return err
			}
			continue
		}

		var value filterValue
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("decode filter %q: %w", key, err)
		}
		f.filters = append(f.filters, query.FilterSpec{
			Key:    key,
			Source: value.Source,
			Values: value.Values,
		})
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode filters: %w", err)
	}
	return nil
}

func (f *filterSet) decodePrice(raw json.RawMessage) error {
	var bounds struct {
		Minimum *float64 `json:"minimum"`
		Maximum *float64 `json:"maximum"`
	}
	if err := json.Unmarshal(raw, &bounds); err != nil {
		return fmt.Errorf("decode price filter: %w", err)
	}
	f.minPrice = bounds.Minimum
	f.maxPrice = bounds.Maximum
	return nil
}

// filterValue accepts the three wire forms of a filter entry: a bare
// scalar, a bare list, or the full {source, values} object.
type filterValue struct {
	Source string
	Values []string
}

func (v *filterValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty filter value")
	}

	switch trimmed[0] {
	case '{':
		var full struct {
			Source string          `json:"source"`
			Values json.RawMessage `json:"values"`
		}
		if err := json.Unmarshal(trimmed, &full); err != nil {
			return err
		}
		v.Source = full.Source
		if len(full.Values) == 0 {
			return nil
		}
		values, err := decodeValues(full.Values)
		if err != nil {
			return err
		}
		v.Values = values
		return nil
	default:
		values, err := decodeValues(trimmed)
		if err != nil {
			return err
		}
		v.Values = values
		return nil
	}
}

func decodeValues(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		values := make([]string, 0, len(items))
		for _, item := range items {
			s, err := scalarString(item)
			if err != nil {
				return nil, err
			}
			values = append(values, s)
		}
		return values, nil
	}

	s, err := scalarString(trimmed)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

// scalarString renders a JSON scalar the way it appears in index data:
// strings verbatim, numbers and booleans in their literal form.
func scalarString(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case bool:
		return strconv.FormatBool(s), nil
	default:
		return "", fmt.Errorf("filter value must be a scalar, got %T", v)
	}
}
