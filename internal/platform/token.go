// Package platform talks to the commerce platform's REST services: OAuth
// token retrieval with refresh-token rotation and category lookups.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/domain"
)

const (
	serviceAuth    = "auth"
	serviceProduct = "product"

	// tokenValidityMargin refreshes tokens a minute before they expire, so
	// an in-flight request never carries a token that dies mid-call.
	tokenValidityMargin = time.Minute

	maxErrorBody = 2048
)

// ErrTokenNotFound is returned by a TokenStore when no token is cached.
var ErrTokenNotFound = errors.New("token not found")

// Credentials identify this service against the platform's OAuth endpoint.
type Credentials struct {
	// API is the service URL template, e.g. "https://{serviceName}.shopgate.services/".
	API          string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (c Credentials) serviceURL(service string) string {
	return strings.Replace(c.API, "{serviceName}", service, 1)
}

// token is an access token plus the rotated refresh token it came with.
type token struct {
	Value        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	Expires      time.Time `json:"expires"`
}

func (t token) valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.Expires.Add(-tokenValidityMargin))
}

// TokenStore shares tokens between instances so they don't burn through
// refresh-token rotations independently. A nil store disables sharing.
type TokenStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TokenSource hands out a valid access token, refreshing it on demand.
// Safe for concurrent use.
type TokenSource struct {
	creds  Credentials
	http   *http.Client
	store  TokenStore
	logger *zap.Logger

	mu           sync.Mutex
	current      token
	refreshToken string
}

// NewTokenSource creates a token source. store may be nil.
func NewTokenSource(creds Credentials, store TokenStore, timeout time.Duration, logger *zap.Logger) *TokenSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSource{
		creds:        creds,
		http:         &http.Client{Timeout: timeout},
		store:        store,
		logger:       logger,
		refreshToken: creds.RefreshToken,
	}
}

func (ts *TokenSource) storeKey() string {
	return "searchbridge:platform:token:" + ts.creds.ClientID
}

// Token returns a valid access token, loading a shared one or refreshing
// against the auth service when the held token is missing or about to
// expire.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	if ts.current.valid(now) {
		return ts.current.Value, nil
	}

	if ts.loadShared(ctx, now) {
		return ts.current.Value, nil
	}

	if err := ts.refresh(ctx); err != nil {
		return "", err
	}
	return ts.current.Value, nil
}

// loadShared adopts a still-valid token from the shared store, including
// its rotated refresh token.
func (ts *TokenSource) loadShared(ctx context.Context, now time.Time) bool {
	if ts.store == nil {
		return false
	}

	data, err := ts.store.Get(ctx, ts.storeKey())
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			ts.logger.Warn("token store read failed", zap.Error(err))
		}
		return false
	}

	var shared token
	if err := json.Unmarshal(data, &shared); err != nil {
		ts.logger.Warn("discarding undecodable shared token", zap.Error(err))
		return false
	}
	if !shared.valid(now) {
		return false
	}

	ts.current = shared
	if shared.RefreshToken != "" {
		ts.refreshToken = shared.RefreshToken
	}
	return true
}

// refresh exchanges the refresh token for a new access token. The platform
// rotates refresh tokens; the returned one replaces ours.
func (ts *TokenSource) refresh(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {ts.refreshToken},
	}

	endpoint := ts.creds.serviceURL(serviceAuth) + "oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(ts.creds.ClientID, ts.creds.ClientSecret)

	resp, err := ts.http.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.NewUpstreamError(serviceAuth, resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.NewUpstreamError(serviceAuth, resp.StatusCode, "malformed token response: "+err.Error())
	}

	if payload.RefreshToken != "" && payload.RefreshToken != ts.refreshToken {
		ts.refreshToken = payload.RefreshToken
	}
	ts.current = token{
		Value:        payload.AccessToken,
		RefreshToken: ts.refreshToken,
		Expires:      time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}

	ts.share(ctx)
	return nil
}

func (ts *TokenSource) share(ctx context.Context) {
	if ts.store == nil {
		return
	}
	data, err := json.Marshal(ts.current)
	if err != nil {
		return
	}
	ttl := time.Until(ts.current.Expires)
	if ttl <= 0 {
		return
	}
	if err := ts.store.SetWithTTL(ctx, ts.storeKey(), data, ttl); err != nil {
		ts.logger.Warn("token store write failed", zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
