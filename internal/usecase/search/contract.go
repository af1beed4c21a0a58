package search

import (
	"context"

	"github.com/shopgrid/searchbridge/internal/cloudsearch"
)

// Backend executes one compiled query against the search backend for the
// endpoint matching the given shop locale.
type Backend interface {
	Search(ctx context.Context, locale string, params cloudsearch.Params) (*cloudsearch.Response, error)
}
