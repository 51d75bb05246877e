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

	"github.com/gitdocs/docsearch/internal/config"
	"github.com/gitdocs/docsearch/internal/db"
	dbElastic "github.com/gitdocs/docsearch/internal/db/elastic"
	"github.com/gitdocs/docsearch/internal/db/guard"
	dbMemory "github.com/gitdocs/docsearch/internal/db/memory"
	dbRedis "github.com/gitdocs/docsearch/internal/db/redis"
	logpkg "github.com/gitdocs/docsearch/internal/logger"
	"github.com/gitdocs/docsearch/internal/metrics"
	"github.com/gitdocs/docsearch/internal/telemetry"
	chiTransport "github.com/gitdocs/docsearch/internal/transport/chi"
	healthuc "github.com/gitdocs/docsearch/internal/usecase/health"
	searchuc "github.com/gitdocs/docsearch/internal/usecase/search"
	"github.com/gitdocs/docsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_driver", cfg.Search.Driver),
		zap.Strings("search_addrs", cfg.Search.Addrs),
		zap.String("search_index", cfg.Search.Index),
	)

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Tracing, env, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	store, err := buildExecutor(ctx, cfg.Search, logger)
	if err != nil {
		logger.Fatal("Failed to create search executor", zap.Error(err))
	}

	// Decorator chain: backend -> guard (breaker, spans, metrics)
	executor := guard.New(store, cfg.Search.Driver, guard.Settings{
		MaxRequests:      cfg.Breaker.MaxRequests,
		Interval:         time.Duration(cfg.Breaker.IntervalSec) * time.Second,
		Timeout:          time.Duration(cfg.Breaker.TimeoutSec) * time.Second,
		FailureThreshold: cfg.Breaker.FailureThreshold,
	}, logger)
	defer executor.Close()

	searchSvc := searchuc.New(executor, cfg.Search.Index, logger, searchuc.WithTimeout(cfg.Search.Timeout()))
	healthSvc := healthuc.New(executor, executor)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.BadRequestHandler,
	})

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
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("Error during tracer shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// readyWaiter is implemented by network-backed executors.
type readyWaiter interface {
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// buildExecutor creates the search backend for the configured driver and waits until it answers.
func buildExecutor(ctx context.Context, cfg config.SearchConfig, logger *zap.Logger) (db.Executor, error) {
	var (
		store db.Executor
		err   error
	)
	switch cfg.Driver {
	case config.DriverElastic:
		store, err = dbElastic.NewStore(dbElastic.Config{
			URLs:     cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			KeyPrefix: cfg.KeyPrefix,
		})
	case config.DriverMemory:
		store, err = buildMemory(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown search driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if rw, ok := store.(readyWaiter); ok {
		if err := rw.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("search backend not ready: %w", err)
		}
	}
	logger.Info("Connected to search backend", zap.String("driver", cfg.Driver))
	return store, nil
}

func buildMemory(cfg config.SearchConfig, logger *zap.Logger) (*dbMemory.Store, error) {
	store, err := dbMemory.NewStore(cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	if cfg.Fixtures == "" {
		return store, nil
	}

	docs, err := dbMemory.LoadFixtures(cfg.Fixtures)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	if err := store.Add(docs...); err != nil {
		store.Close()
		return nil, fmt.Errorf("index fixtures: %w", err)
	}
	logger.Info("Loaded fixtures", zap.String("path", cfg.Fixtures), zap.Int("documents", len(docs)))
	return store, nil
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
						"code":    "internal_error",
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

			// Canonical log line: one line per request
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
