package category

import (
	"context"
	"errors"
	"testing"

	"github.com/shopgrid/searchbridge/internal/domain"
	"github.com/shopgrid/searchbridge/internal/platform"
	"github.com/shopgrid/searchbridge/internal/query"
	"github.com/shopgrid/searchbridge/internal/usecase/search"
)

// --- Mocks ---

type mockCategories struct {
	category platform.Category
	err      error
	calls    int
}

func (m *mockCategories) Category(_ context.Context, _ string) (platform.Category, error) {
	m.calls++
	return m.category, m.err
}

type mockSearcher struct {
	result search.Result
	err    error
	last   query.Request
	calls  int
}

func (m *mockSearcher) Search(_ context.Context, req query.Request) (search.Result, error) {
	m.calls++
	m.last = req
	return m.result, m.err
}

func enabledConfig() Config {
	return Config{Enabled: true, ShopNumber: 30177, Locale: "de-de"}
}

// --- Tests ---

func TestProductIDs_ListsViaIndex(t *testing.T) {
	categories := &mockCategories{category: platform.Category{ID: "cat-1", Path: "Root=>Shoes"}}
	searcher := &mockSearcher{result: search.Result{ProductIDs: []string{"1", "2"}, TotalProductCount: 40}}
	svc := New(enabledConfig(), categories, searcher, nil)

	result, handled, err := svc.ProductIDs(context.Background(), "cat-1", query.SortPriceAsc, 20, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("expected the index to handle the request")
	}
	if result.TotalProductCount != 40 {
		t.Errorf("total = %d", result.TotalProductCount)
	}

	req := searcher.last
	if req.CategoryPath != "Root=>Shoes" {
		t.Errorf("category path = %q", req.CategoryPath)
	}
	if req.Sort != query.SortPriceAsc || req.Offset != 20 || req.Limit != 20 {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.ShopNumber != 30177 || req.Locale != "de-de" {
		t.Errorf("shop scope not applied: %+v", req)
	}
}

func TestProductIDs_FallsThrough(t *testing.T) {
	cases := []struct {
		name       string
		cfg        Config
		categoryID string
		sort       query.Sort
	}{
		{"disabled", Config{Enabled: false}, "cat-1", query.SortPriceAsc},
		{"sale category", enabledConfig(), "sale", query.SortPriceAsc},
		{"empty category", enabledConfig(), "", query.SortPriceAsc},
		{"relevance sort", enabledConfig(), "cat-1", query.SortRelevance},
		{"random sort", enabledConfig(), "cat-1", query.SortRandom},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			categories := &mockCategories{}
			searcher := &mockSearcher{}
			svc := New(tc.cfg, categories, searcher, nil)

			_, handled, err := svc.ProductIDs(context.Background(), tc.categoryID, tc.sort, 0, 20)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if handled {
				t.Error("expected fall-through")
			}
			if categories.calls != 0 || searcher.calls != 0 {
				t.Error("fall-through must not call collaborators")
			}
		})
	}
}

func TestProductIDs_LimitTooLarge(t *testing.T) {
	categories := &mockCategories{}
	svc := New(enabledConfig(), categories, &mockSearcher{}, nil)

	_, _, err := svc.ProductIDs(context.Background(), "cat-1", query.SortPriceDesc, 0, 101)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if categories.calls != 0 {
		t.Error("validation must run before the category lookup")
	}
}

func TestProductIDs_CategoryLookupError(t *testing.T) {
	categories := &mockCategories{err: domain.NewUpstreamError("product", 404, "not found")}
	svc := New(enabledConfig(), categories, &mockSearcher{}, nil)

	_, _, err := svc.ProductIDs(context.Background(), "missing", query.SortPriceAsc, 0, 20)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
