package cloudsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/domain"
	"github.com/shopgrid/searchbridge/internal/metrics"
)

const serviceName = "cloudsearch"

// Limit on the error payload kept from a failed backend response.
const maxErrorBody = 2048

// Config holds the backend client settings.
type Config struct {
	// Endpoints maps a short language code ("de", "en") to a search URL.
	// Locales starting with "de" use the German endpoint, everything else
	// falls back to English.
	Endpoints map[string]string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Client executes compiled queries against the search backend. It never
// retries; the only repeated request in the system is the designed fuzzy
// fallback issued by the caller.
type Client struct {
	endpoints map[string]string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient creates a search backend client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoints: cfg.Endpoints,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// URL returns the backend endpoint for a shop locale.
func (c *Client) URL(locale string) string {
	lang := locale
	if len(lang) > 2 {
		lang = lang[:2]
	}
	lang = strings.ToLower(lang)
	if lang != "de" {
		lang = "en"
	}
	return c.endpoints[lang]
}

// Search executes one query and decodes the raw response. Non-success
// statuses and undecodable bodies surface as upstream failures carrying the
// backend's status and payload.
func (c *Client) Search(ctx context.Context, locale string, params Params) (*Response, error) {
	values, err := params.Encode()
	if err != nil {
		return nil, err
	}

	endpoint := c.URL(locale)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewUpstreamError(serviceName, resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		c.logger.Warn("malformed backend response", zap.Error(err))
		return nil, domain.NewUpstreamError(serviceName, resp.StatusCode, "malformed response body: "+err.Error())
	}

	return &decoded, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
