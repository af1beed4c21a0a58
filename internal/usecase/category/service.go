// Package category serves price-sorted category product listings from the
// search index instead of the platform's own category pages, which cannot
// sort by price across child products.
package category

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/domain"
	"github.com/shopgrid/searchbridge/internal/query"
	"github.com/shopgrid/searchbridge/internal/usecase/search"
)

const maxLimit = 100

// skipCategory is a virtual category with no index-side path; it always
// falls through to the platform listing.
const skipCategory = "sale"

// Config gates the index-backed category listing per shop.
type Config struct {
	Enabled    bool
	ShopNumber int64
	Locale     string
}

// Service resolves category listings through the search index.
type Service struct {
	cfg        Config
	categories CategoryReader
	searcher   Searcher
	logger     *zap.Logger
}

// New creates a category listing service.
func New(cfg Config, categories CategoryReader, searcher Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, categories: categories, searcher: searcher, logger: logger}
}

// ProductIDs lists a category's products sorted by price. The boolean
// result reports whether the index handled the request: disabled shops,
// the virtual sale category and non-price sorts fall through to the
// platform listing and return an unhandled empty result.
func (s *Service) ProductIDs(ctx context.Context, categoryID string, sort query.Sort, offset, limit int) (search.Result, bool, error) {
	if !s.handles(categoryID, sort) {
		return search.Result{}, false, nil
	}
	if limit > maxLimit {
		return search.Result{}, false, fmt.Errorf("%w: the limit can't be greater than %d", domain.ErrInvalidArgument, maxLimit)
	}

	cat, err := s.categories.Category(ctx, categoryID)
	if err != nil {
		return search.Result{}, false, err
	}

	s.logger.Debug("category listing via index",
		zap.String("category_id", categoryID),
		zap.String("path", cat.Path),
	)

	result, err := s.searcher.Search(ctx, query.Request{
		ShopNumber:   s.cfg.ShopNumber,
		Locale:       s.cfg.Locale,
		CategoryPath: cat.Path,
		Sort:         sort,
		Offset:       offset,
		Limit:        limit,
	})
	if err != nil {
		return search.Result{}, false, err
	}
	return result, true, nil
}

func (s *Service) handles(categoryID string, sort query.Sort) bool {
	if !s.cfg.Enabled || categoryID == "" || categoryID == skipCategory {
		return false
	}
	return sort == query.SortPriceAsc || sort == query.SortPriceDesc
}
