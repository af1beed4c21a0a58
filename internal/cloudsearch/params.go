package cloudsearch

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Params is the flat key→value parameter map of one backend query. Scalar
// values pass through as-is; structured values (query options, facet and
// highlight directives) are serialized to JSON strings at the transport
// boundary by Encode.
type Params map[string]any

// Encode converts the parameter map to URL query values, JSON-encoding
// every non-scalar value.
func (p Params) Encode() (url.Values, error) {
	values := make(url.Values, len(p))
	for key, v := range p {
		switch t := v.(type) {
		case string:
			values.Set(key, t)
		case int:
			values.Set(key, strconv.Itoa(t))
		case int64:
			values.Set(key, strconv.FormatInt(t, 10))
		case float64:
			values.Set(key, strconv.FormatFloat(t, 'f', -1, 64))
		case bool:
			values.Set(key, strconv.FormatBool(t))
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode param %s: %w", key, err)
			}
			values.Set(key, string(encoded))
		}
	}
	return values, nil
}
