package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/cloudsearch"
	"github.com/shopgrid/searchbridge/internal/domain"
	"github.com/shopgrid/searchbridge/internal/platform"
	"github.com/shopgrid/searchbridge/internal/query"
	categoryuc "github.com/shopgrid/searchbridge/internal/usecase/category"
	searchuc "github.com/shopgrid/searchbridge/internal/usecase/search"
	suggestuc "github.com/shopgrid/searchbridge/internal/usecase/suggest"
)

type stubBackend struct {
	resp  *cloudsearch.Response
	err   error
	calls []cloudsearch.Params
}

func (b *stubBackend) Search(_ context.Context, _ string, params cloudsearch.Params) (*cloudsearch.Response, error) {
	b.calls = append(b.calls, params)
	if b.err != nil {
		return nil, b.err
	}
	if b.resp != nil {
		return b.resp, nil
	}
	return &cloudsearch.Response{}, nil
}

func respWithIDs(ids ...string) *cloudsearch.Response {
	resp := &cloudsearch.Response{}
	resp.Hits.Found = int64(len(ids))
	for _, id := range ids {
		resp.Hits.Hit = append(resp.Hits.Hit, cloudsearch.Hit{Fields: cloudsearch.HitFields{UID: id}})
	}
	return resp
}

func newTestServer(t *testing.T, backend *stubBackend, category *categoryuc.Service) *httptest.Server {
	t.Helper()

	srv := NewServer(
		searchuc.New(backend, zap.NewNop()),
		suggestuc.New(backend, zap.NewNop()),
		category,
		30177,
		"de-de",
		zap.NewNop(),
	)

	r := chi.NewRouter()
	srv.Routes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func errorCode(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var code string
	if err := json.Unmarshal(body["code"], &code); err != nil {
		t.Fatalf("decode error code: %v", err)
	}
	return code
}

func TestSearchProducts(t *testing.T) {
	backend := &stubBackend{resp: respWithIDs("p1", "p2")}
	ts := newTestServer(t, backend, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/search", `{"searchPhrase": "schuhe"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ids []string
	if err := json.Unmarshal(body["productIds"], &ids); err != nil {
		t.Fatalf("decode productIds: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Errorf("expected [p1 p2], got %v", ids)
	}

	if len(backend.calls) != 1 {
		t.Fatalf("expected 1 backend call, got %d", len(backend.calls))
	}
	fq, _ := backend.calls[0]["fq"].(string)
	if !strings.Contains(fq, "shop_number:30177") {
		t.Errorf("expected shop scope in fq, got %q", fq)
	}
}

func TestSearchProducts_InvalidBody(t *testing.T) {
	ts := newTestServer(t, &stubBackend{}, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/search", `{`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != codeBadRequest {
		t.Errorf("expected %s, got %s", codeBadRequest, code)
	}
}

func TestSearchProducts_LimitTooLarge(t *testing.T) {
	backend := &stubBackend{}
	ts := newTestServer(t, backend, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/search", `{"searchPhrase": "x", "limit": 101}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != codeValidation {
		t.Errorf("expected %s, got %s", codeValidation, code)
	}
	if len(backend.calls) != 0 {
		t.Errorf("expected no backend call, got %d", len(backend.calls))
	}
}

func TestSearchProducts_SaleCategoryIgnored(t *testing.T) {
	backend := &stubBackend{}
	ts := newTestServer(t, backend, nil)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/search", `{"categoryPath": "SALE"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(backend.calls) != 1 {
		t.Fatalf("expected 1 backend call, got %d", len(backend.calls))
	}
	fq, _ := backend.calls[0]["fq"].(string)
	if strings.Contains(fq, "categories") {
		t.Errorf("expected no category clause, got %q", fq)
	}
}

func TestGetProducts_RequiresCriteria(t *testing.T) {
	ts := newTestServer(t, &stubBackend{}, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/products", `{}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != codeValidation {
		t.Errorf("expected %s, got %s", codeValidation, code)
	}
}

func TestGetFilters(t *testing.T) {
	resp := respWithIDs("p1", "p2", "p3", "p4")
	resp.Facets = map[string]cloudsearch.Facet{
		"manufacturer": {Buckets: []cloudsearch.Bucket{{Value: "Acme", Count: 3}}},
	}
	ts := newTestServer(t, &stubBackend{resp: resp}, nil)

	httpResp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/filters", `{"searchPhrase": "schuhe"}`)

	if httpResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", httpResp.StatusCode)
	}

	var filters []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body["filters"], &filters); err != nil {
		t.Fatalf("decode filters: %v", err)
	}
	if len(filters) != 1 || filters[0].ID != "manufacturer" {
		t.Errorf("expected manufacturer filter, got %+v", filters)
	}
}

func TestGetFilters_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t, &stubBackend{}, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/filters", `{"searchPhrase": "schuhe"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(body["filters"]) != "[]" {
		t.Errorf("expected empty array, got %s", body["filters"])
	}
}

func TestGetSuggestions_ShortPhrase(t *testing.T) {
	backend := &stubBackend{}
	ts := newTestServer(t, backend, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/suggestions", `{"searchPhrase": "a"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(body["suggestions"]) != "[]" {
		t.Errorf("expected empty array, got %s", body["suggestions"])
	}
	if len(backend.calls) != 0 {
		t.Errorf("expected no backend call, got %d", len(backend.calls))
	}
}

func TestSearchProducts_UpstreamError(t *testing.T) {
	backend := &stubBackend{err: domain.NewUpstreamError("cloudsearch", http.StatusInternalServerError, "boom")}
	ts := newTestServer(t, backend, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/search", `{"searchPhrase": "schuhe"}`)

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != codeUpstream {
		t.Errorf("expected %s, got %s", codeUpstream, code)
	}
}

type stubCategoryReader struct {
	cat platform.Category
}

func (r *stubCategoryReader) Category(context.Context, string) (platform.Category, error) {
	return r.cat, nil
}

type stubSearcher struct {
	result searchuc.Result
	req    query.Request
}

func (s *stubSearcher) Search(_ context.Context, req query.Request) (searchuc.Result, error) {
	s.req = req
	return s.result, nil
}

func TestGetCategoryProducts(t *testing.T) {
	searcher := &stubSearcher{result: searchuc.Result{ProductIDs: []string{"p1"}, TotalProductCount: 1}}
	category := categoryuc.New(
		categoryuc.Config{Enabled: true, ShopNumber: 30177, Locale: "de-de"},
		&stubCategoryReader{cat: platform.Category{ID: "c1", Path: "Root=>Shoes"}},
		searcher,
		zap.NewNop(),
	)
	ts := newTestServer(t, &stubBackend{}, category)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/categories/c1/products?sort=priceAsc&limit=50", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ids []string
	if err := json.Unmarshal(body["productIds"], &ids); err != nil {
		t.Fatalf("decode productIds: %v", err)
	}
	if len(ids) != 1 || ids[0] != "p1" {
		t.Errorf("expected [p1], got %v", ids)
	}
	if searcher.req.CategoryPath != "Root=>Shoes" {
		t.Errorf("expected category path from platform, got %q", searcher.req.CategoryPath)
	}
	if searcher.req.Limit != 50 {
		t.Errorf("expected limit=50, got %d", searcher.req.Limit)
	}
}

func TestGetCategoryProducts_Disabled(t *testing.T) {
	ts := newTestServer(t, &stubBackend{}, nil)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/categories/c1/products?sort=priceAsc", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(body["productIds"]) != "[]" {
		t.Errorf("expected empty array, got %s", body["productIds"])
	}
}

func TestGetCategoryProducts_BadLimit(t *testing.T) {
	ts := newTestServer(t, &stubBackend{}, nil)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/categories/c1/products?sort=priceAsc&limit=abc", "")

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != codeValidation {
		t.Errorf("expected %s, got %s", codeValidation, code)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, &stubBackend{}, nil)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var status string
	if err := json.Unmarshal(body["status"], &status); err != nil || status != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
}
