package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shopgrid/searchbridge/internal/cloudsearch"
	"github.com/shopgrid/searchbridge/internal/config"
	logpkg "github.com/shopgrid/searchbridge/internal/logger"
	"github.com/shopgrid/searchbridge/internal/metrics"
	"github.com/shopgrid/searchbridge/internal/platform"
	chiTransport "github.com/shopgrid/searchbridge/internal/transport/chi"
	categoryuc "github.com/shopgrid/searchbridge/internal/usecase/category"
	searchuc "github.com/shopgrid/searchbridge/internal/usecase/search"
	suggestuc "github.com/shopgrid/searchbridge/internal/usecase/suggest"
	"github.com/shopgrid/searchbridge/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchbridge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int64("shop_number", cfg.Shop.Number),
		zap.String("locale", cfg.Shop.Locale),
	)

	// Register backend metrics explicitly (no init())
	metrics.RegisterBackendMetrics()

	// Two backend clients: product searches tolerate slow responses,
	// suggestions do not.
	searchClient := cloudsearch.NewClient(cloudsearch.Config{
		Endpoints: cfg.Cloudsearch.Endpoints,
		Timeout:   time.Duration(cfg.Cloudsearch.SearchTimeoutMs) * time.Millisecond,
		Logger:    logger,
	})
	suggestClient := cloudsearch.NewClient(cloudsearch.Config{
		Endpoints: cfg.Cloudsearch.Endpoints,
		Timeout:   time.Duration(cfg.Cloudsearch.SuggestTimeoutMs) * time.Millisecond,
		Logger:    logger,
	})

	searchSvc := searchuc.New(searchClient, logger)
	suggestSvc := suggestuc.New(suggestClient, logger)

	categorySvc, closeStore := buildCategoryService(cfg, searchSvc, logger)
	defer closeStore()

	server := chiTransport.NewServer(searchSvc, suggestSvc, categorySvc, cfg.Shop.Number, cfg.Shop.Locale, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCategoryService assembles the index-backed category listing when it
// is enabled: platform credentials, an optional Redis-shared token source
// and the category client. Returns a nil service when the feature is off;
// the returned cleanup is always safe to call.
func buildCategoryService(cfg config.Config, searcher *searchuc.Service, logger *zap.Logger) (*categoryuc.Service, func()) {
	if !cfg.Cloudsearch.CategoryListing {
		return nil, func() {}
	}

	creds := platform.Credentials{
		API:          cfg.Platform.API,
		ClientID:     cfg.Platform.ClientID,
		ClientSecret: cfg.Platform.ClientSecret,
		RefreshToken: cfg.Platform.RefreshToken,
	}
	timeout := time.Duration(cfg.Platform.TimeoutSec) * time.Second

	// Pass nil interface (not typed nil pointer!) if Redis is not configured.
	var store platform.TokenStore
	cleanup := func() {}
	if len(cfg.Redis.Addrs) > 0 {
		redisStore, err := platform.NewRedisStore(platform.RedisConfig{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create token store", zap.Error(err))
		}
		store = redisStore
		cleanup = redisStore.Close
		logger.Info("Sharing platform tokens via redis", zap.Strings("addrs", cfg.Redis.Addrs))
	}

	tokens := platform.NewTokenSource(creds, store, timeout, logger)
	categories := platform.NewCategoryClient(creds, cfg.Shop.ID(), tokens, timeout, logger)

	return categoryuc.New(categoryuc.Config{
		Enabled:    true,
		ShopNumber: cfg.Shop.Number,
		Locale:     cfg.Shop.Locale,
	}, categories, searcher, logger), cleanup
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "EINTERNAL",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
