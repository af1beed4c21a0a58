package chi

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopgrid/searchbridge/internal/query"
)

func TestFilterSetDecode_PreservesOrderAndForms(t *testing.T) {
	body := `{
		"display_amount": {"minimum": 5, "maximum": 100},
		"Color": "blue",
		"Size": ["m", "l"],
		"Material": {"source": "attributes", "values": ["wood", 42]}
	}`

	var fs filterSet
	if err := json.Unmarshal([]byte(body), &fs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fs.minPrice == nil || *fs.minPrice != 5 {
		t.Errorf("expected minPrice=5, got %v", fs.minPrice)
	}
	if fs.maxPrice == nil || *fs.maxPrice != 100 {
		t.Errorf("expected maxPrice=100, got %v", fs.maxPrice)
	}

	expected := []query.FilterSpec{
		{Key: "Color", Values: []string{"blue"}},
		{Key: "Size", Values: []string{"m", "l"}},
		{Key: "Material", Source: "attributes", Values: []string{"wood", "42"}},
	}
	if !reflect.DeepEqual(fs.filters, expected) {
		t.Errorf("expected %+v, got %+v", expected, fs.filters)
	}
}

func TestFilterSetDecode_ScalarForms(t *testing.T) {
	var fs filterSet
	if err := json.Unmarshal([]byte(`{"Rating": 4, "Active": true}`), &fs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []query.FilterSpec{
		{Key: "Rating", Values: []string{"4"}},
		{Key: "Active", Values: []string{"true"}},
	}
	if !reflect.DeepEqual(fs.filters, expected) {
		t.Errorf("expected %+v, got %+v", expected, fs.filters)
	}
}

func TestFilterSetDecode_PartialPriceBounds(t *testing.T) {
	var fs filterSet
	if err := json.Unmarshal([]byte(`{"display_amount": {"maximum": 99}}`), &fs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fs.minPrice != nil {
		t.Errorf("expected nil minPrice, got %v", *fs.minPrice)
	}
	if fs.maxPrice == nil || *fs.maxPrice != 99 {
		t.Errorf("expected maxPrice=99, got %v", fs.maxPrice)
	}
	if len(fs.filters) != 0 {
		t.Errorf("expected no generic filters, got %+v", fs.filters)
	}
}

func TestFilterSetDecode_EmptyValuesKept(t *testing.T) {
	// Dropping empty value lists is the compiler's job, not the decoder's.
	var fs filterSet
	if err := json.Unmarshal([]byte(`{"Color": {"source": "options", "values": []}}`), &fs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fs.filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(fs.filters))
	}
	if len(fs.filters[0].Values) != 0 {
		t.Errorf("expected empty values, got %v", fs.filters[0].Values)
	}
}

func TestFilterSetDecode_Null(t *testing.T) {
	var fs filterSet
	if err := json.Unmarshal([]byte(`null`), &fs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.filters != nil || fs.minPrice != nil || fs.maxPrice != nil {
		t.Errorf("expected zero filterSet, got %+v", fs)
	}
}

func TestFilterSetDecode_RejectsNonObject(t *testing.T) {
	var fs filterSet
	if err := json.Unmarshal([]byte(`["Color"]`), &fs); err == nil {
		t.Fatal("expected error for array filters")
	}
}

func TestFilterSetDecode_RejectsNestedValue(t *testing.T) {
	var fs filterSet
	if err := json.Unmarshal([]byte(`{"Color": {"values": [{"nested": true}]}}`), &fs); err == nil {
		t.Fatal("expected error for non-scalar filter value")
	}
}

func TestSearchRequestDecode(t *testing.T) {
	body := `{"searchPhrase": "shoes", "sort": "priceAsc", "offset": 20, "limit": 40}`

	var req searchRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.SearchPhrase != "shoes" {
		t.Errorf("expected searchPhrase=shoes, got %q", req.SearchPhrase)
	}
	if req.Sort != "priceAsc" {
		t.Errorf("expected sort=priceAsc, got %q", req.Sort)
	}
	if req.Offset != 20 {
		t.Errorf("expected offset=20, got %d", req.Offset)
	}
	if req.Limit == nil || *req.Limit != 40 {
		t.Errorf("expected limit=40, got %v", req.Limit)
	}
}

func TestSearchRequestDecode_MissingLimit(t *testing.T) {
	var req searchRequest
	if err := json.Unmarshal([]byte(`{"searchPhrase": "shoes"}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Limit != nil {
		t.Errorf("expected nil limit, got %d", *req.Limit)
	}
}
