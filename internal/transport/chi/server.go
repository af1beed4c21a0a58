package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/domain"
	"github.com/shopgrid/searchbridge/internal/domain/catalog"
	"github.com/shopgrid/searchbridge/internal/query"
	categoryuc "github.com/shopgrid/searchbridge/internal/usecase/category"
	searchuc "github.com/shopgrid/searchbridge/internal/usecase/search"
	suggestuc "github.com/shopgrid/searchbridge/internal/usecase/suggest"
)

const defaultLimit = 20

// Error codes returned to storefront clients.
const (
	codeBadRequest = "EBADREQUEST"
	codeValidation = "EVALIDATION"
	codeUpstream   = "EUPSTREAM"
	codeInternal   = "EINTERNAL"
)

// Server exposes the search pipeline over HTTP.
type Server struct {
	search     *searchuc.Service
	suggest    *suggestuc.Service
	category   *categoryuc.Service
	shopNumber int64
	locale     string
	logger     *zap.Logger
}

// NewServer creates an HTTP API server. The category service may be nil
// when category listing is disabled.
func NewServer(
	search *searchuc.Service,
	suggest *suggestuc.Service,
	category *categoryuc.Service,
	shopNumber int64,
	locale string,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:     search,
		suggest:    suggest,
		category:   category,
		shopNumber: shopNumber,
		locale:     locale,
		logger:     logger,
	}
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.SearchProducts)
	r.Post("/v1/products", s.GetProducts)
	r.Post("/v1/filters", s.GetFilters)
	r.Post("/v1/suggestions", s.GetSuggestions)
	r.Get("/v1/categories/{categoryID}/products", s.GetCategoryProducts)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchProducts handles POST /v1/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), s.queryRequest(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productsResponse{
		ProductIDs:        res.ProductIDs,
		TotalProductCount: res.TotalProductCount,
	})
}

// GetProducts handles POST /v1/products. Unlike search, it rejects
// requests that carry no search criteria at all.
func (s *Server) GetProducts(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.search.Products(r.Context(), s.queryRequest(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productsResponse{
		ProductIDs:        res.ProductIDs,
		TotalProductCount: res.TotalProductCount,
	})
}

// GetFilters handles POST /v1/filters.
func (s *Server) GetFilters(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := s.search.Filters(r.Context(), s.queryRequest(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if filters == nil {
		filters = []catalog.Filter{}
	}

	writeJSON(w, http.StatusOK, filtersResponse{Filters: filters})
}

// GetSuggestions handles POST /v1/suggestions.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	suggestions, err := s.suggest.Suggestions(r.Context(), s.shopNumber, s.locale, req.SearchPhrase)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

// GetCategoryProducts handles GET /v1/categories/{categoryID}/products.
// When category listing does not apply to the request, an empty result
// is returned so the caller falls back to its own pipeline.
func (s *Server) GetCategoryProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	sort := r.URL.Query().Get("sort")
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "offset must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "limit must be an integer")
		return
	}

	if s.category == nil {
		writeJSON(w, http.StatusOK, categoryProductsResponse(searchuc.Result{}, false))
		return
	}

	res, handled, err := s.category.ProductIDs(r.Context(), categoryID, query.ParseSort(sort), offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categoryProductsResponse(res, handled))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// queryRequest maps a decoded request body onto the compiler input,
// filling in the shop identity this instance serves.
func (s *Server) queryRequest(req searchRequest) query.Request {
	limit := defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	// A storefront-wide sale listing is not a real category path.
	categoryPath := req.CategoryPath
	if categoryPath == "SALE" {
		categoryPath = ""
	}

	return query.Request{
		ShopNumber:   s.shopNumber,
		Locale:       s.locale,
		Term:         req.SearchPhrase,
		Filters:      req.Filters.filters,
		MinPrice:     req.Filters.minPrice,
		MaxPrice:     req.Filters.maxPrice,
		CategoryPath: categoryPath,
		Sort:         query.ParseSort(req.Sort),
		Offset:       req.Offset,
		Limit:        limit,
	}
}

func categoryProductsResponse(res searchuc.Result, handled bool) productsResponse {
	if !handled || res.ProductIDs == nil {
		res.ProductIDs = []string{}
	}
	return productsResponse{
		ProductIDs:        res.ProductIDs,
		TotalProductCount: res.TotalProductCount,
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.As(err, &upstream):
		s.logger.Error("upstream error",
			zap.String("service", upstream.Service),
			zap.Int("status", upstream.StatusCode),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, codeUpstream, "upstream service failure")
	default:
		s.logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
