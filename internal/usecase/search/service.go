// Package search orchestrates catalog product search: it compiles the
// request, executes it, retries once with fuzzy matching on an empty
// result, and normalizes the backend's facets into filter descriptors.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/cloudsearch"
	"github.com/shopgrid/searchbridge/internal/domain"
	"github.com/shopgrid/searchbridge/internal/domain/catalog"
	"github.com/shopgrid/searchbridge/internal/facet"
	"github.com/shopgrid/searchbridge/internal/metrics"
	"github.com/shopgrid/searchbridge/internal/query"
)

// maxLimit caps the page size a client may request.
const maxLimit = 100

// Result is a page of product identifiers plus the backend's total count.
type Result struct {
	ProductIDs        []string
	TotalProductCount int64
}

// Service handles product search, product listing and filter discovery.
type Service struct {
	backend Backend
	logger  *zap.Logger
}

// New creates a search service.
func New(backend Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, logger: logger}
}

// Search runs a term search and returns the matching product ids.
func (s *Service) Search(ctx context.Context, req query.Request) (Result, error) {
	if err := validateLimit(req.Limit); err != nil {
		return Result{}, err
	}

	resp, err := s.run(ctx, req, false)
	if err != nil {
		return Result{}, err
	}

	ids, total := facet.ExtractProductIDs(resp)
	return Result{ProductIDs: ids, TotalProductCount: total}, nil
}

// Products runs a criteria-based product listing. Unlike Search, it
// rejects requests that carry no criteria at all, since an unconstrained
// listing of the whole catalog is always a client bug.
func (s *Service) Products(ctx context.Context, req query.Request) (Result, error) {
	if !hasCriteria(req) {
		return Result{}, fmt.Errorf("%w: searchPhrase, filters or categoryId has to be set", domain.ErrInvalidArgument)
	}
	return s.Search(ctx, req)
}

// Filters runs the request in discovery mode and returns the normalized,
// localized filter descriptors for the current result set.
func (s *Service) Filters(ctx context.Context, req query.Request) ([]catalog.Filter, error) {
	if err := validateLimit(req.Limit); err != nil {
		return nil, err
	}

	resp, err := s.run(ctx, req, true)
	if err != nil {
		return nil, err
	}

	return facet.ParseFilters(resp, req.Locale), nil
}

// run executes the primary query and falls back to a single fuzzy query
// when it finds nothing. The fallback is skipped for termless requests,
// where the fuzzy query would be identical to the primary one.
func (s *Service) run(ctx context.Context, req query.Request, discovery bool) (*cloudsearch.Response, error) {
	resp, err := s.backend.Search(ctx, req.Locale, query.Compile(req, false, discovery))
	if err != nil {
		return nil, err
	}
	if resp.Hits.Found > 0 || !hasTerm(req) {
		return resp, nil
	}

	metrics.FuzzyFallbacksTotal.Inc()
	s.logger.Debug("zero hits, retrying fuzzy",
		zap.String("term", req.Term),
		zap.Int64("shop_number", req.ShopNumber),
	)

	return s.backend.Search(ctx, req.Locale, query.Compile(req, true, discovery))
}

func validateLimit(limit int) error {
	if limit > maxLimit {
		return fmt.Errorf("%w: limit must not exceed %d", domain.ErrInvalidArgument, maxLimit)
	}
	return nil
}

func hasTerm(req query.Request) bool {
	term := strings.TrimSpace(req.Term)
	return term != "" && term != "*"
}

func hasCriteria(req query.Request) bool {
	return hasTerm(req) ||
		len(req.Filters) > 0 ||
		req.CategoryPath != "" ||
		req.MinPrice != nil ||
		req.MaxPrice != nil
}
