package suggest

import (
	"context"

	"github.com/shopgrid/searchbridge/internal/cloudsearch"
)

// Backend executes one compiled query against the search backend. The
// suggestion backend uses a much shorter timeout than product search;
// the composition root wires a separate client here.
type Backend interface {
	Search(ctx context.Context, locale string, params cloudsearch.Params) (*cloudsearch.Response, error)
}
