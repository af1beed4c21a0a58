package cloudsearch

import (
	"testing"
)

func TestParamsEncode_Scalars(t *testing.T) {
	params := Params{
		"q":     "matchall",
		"size":  20,
		"start": int64(40),
		"boost": 1.5,
		"flag":  true,
	}

	values, err := params.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for key, want := range map[string]string{
		"q":     "matchall",
		"size":  "20",
		"start": "40",
		"boost": "1.5",
		"flag":  "true",
	} {
		if got := values.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestParamsEncode_StructsAsJSON(t *testing.T) {
	params := Params{
		"q.options":    QueryOptions{Fields: []string{"name^2", "tags"}},
		"facet.colors": FacetOptions{Sort: "bucket", Size: 5000},
	}

	values, err := params.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := values.Get("q.options"); got != `{"fields":["name^2","tags"]}` {
		t.Errorf("q.options = %q", got)
	}
	if got := values.Get("facet.colors"); got != `{"sort":"bucket","size":5000}` {
		t.Errorf("facet.colors = %q", got)
	}
}
