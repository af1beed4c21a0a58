package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/domain"
)

// Category is a product category as the platform's product service
// returns it. Path is the full hierarchy path in index encoding.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Tokens provides a valid platform access token.
type Tokens interface {
	Token(ctx context.Context) (string, error)
}

// CategoryClient reads categories from the platform's product service.
type CategoryClient struct {
	base   string
	shopID string
	tokens Tokens
	http   *http.Client
	logger *zap.Logger
}

// NewCategoryClient creates a category client for one shop.
func NewCategoryClient(creds Credentials, shopID string, tokens Tokens, timeout time.Duration, logger *zap.Logger) *CategoryClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryClient{
		base:   creds.serviceURL(serviceProduct),
		shopID: shopID,
		tokens: tokens,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Category fetches one category by id.
func (c *CategoryClient) Category(ctx context.Context, categoryID string) (Category, error) {
	accessToken, err := c.tokens.Token(ctx)
	if err != nil {
		return Category{}, err
	}

	endpoint := fmt.Sprintf("%sv1/%s/categories/%s", c.base, c.shopID, url.PathEscape(categoryID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Category{}, fmt.Errorf("build category request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return Category{}, fmt.Errorf("category request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Category{}, fmt.Errorf("read category response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return Category{}, domain.NewUpstreamError(serviceProduct, resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	var category Category
	if err := json.Unmarshal(body, &category); err != nil {
		return Category{}, domain.NewUpstreamError(serviceProduct, resp.StatusCode, "malformed category response: "+err.Error())
	}

	return category, nil
}
