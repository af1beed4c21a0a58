package category

import (
	"context"

	"github.com/shopgrid/searchbridge/internal/platform"
	"github.com/shopgrid/searchbridge/internal/query"
	"github.com/shopgrid/searchbridge/internal/usecase/search"
)

// CategoryReader resolves a category id to its full hierarchy path.
type CategoryReader interface {
	Category(ctx context.Context, categoryID string) (platform.Category, error)
}

// Searcher runs a compiled product search.
type Searcher interface {
	Search(ctx context.Context, req query.Request) (search.Result, error)
}
