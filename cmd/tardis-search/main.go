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

	"github.com/kailas-cloud/tardis-search/internal/config"
	dbRedis "github.com/kailas-cloud/tardis-search/internal/db/redis"
	"github.com/kailas-cloud/tardis-search/internal/domain"
	logpkg "github.com/kailas-cloud/tardis-search/internal/logger"
	"github.com/kailas-cloud/tardis-search/internal/metrics"
	indexrepo "github.com/kailas-cloud/tardis-search/internal/repository/index"
	recordsrepo "github.com/kailas-cloud/tardis-search/internal/repository/records"
	searchrepo "github.com/kailas-cloud/tardis-search/internal/repository/search"
	chiTransport "github.com/kailas-cloud/tardis-search/internal/transport/chi"
	accessuc "github.com/kailas-cloud/tardis-search/internal/usecase/access"
	healthuc "github.com/kailas-cloud/tardis-search/internal/usecase/health"
	searchuc "github.com/kailas-cloud/tardis-search/internal/usecase/search"
	"github.com/kailas-cloud/tardis-search/internal/version"
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

	logger.Info("Starting tardis-search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("time_zone", cfg.Search.TimeZone),
	)

	loc, err := cfg.Search.Location()
	if err != nil {
		logger.Fatal("Invalid time zone", zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Effective planner layout, shared by the index manager.
	plannerCfg := searchuc.NewPlanner(searchuc.PlannerConfig{
		Location: loc,
		Indexes: map[domain.EntityType]string{
			domain.Experiment: cfg.Search.Indexes.Experiment,
			domain.Dataset:    cfg.Search.Indexes.Dataset,
			domain.Datafile:   cfg.Search.Indexes.Datafile,
		},
	}).Config()

	// Repositories
	records := recordsrepo.New(store, cfg.Search.KeyPrefix)
	engine := searchuc.NewInstrumentedEngine(
		searchrepo.New(store, cfg.Search.KeyPrefix, cfg.Search.MaxHits),
	)
	indexes := indexrepo.New(store, cfg.Search.KeyPrefix, indexrepo.Layout{
		Indexes:         plannerCfg.Indexes,
		TextFields:      plannerCfg.TextFields,
		InstrumentField: plannerCfg.InstrumentField,
		DateField:       plannerCfg.DateField,
	})

	if cfg.Search.CreateIndexes {
		created, err := indexes.Ensure(ctx)
		if err != nil {
			logger.Fatal("Failed to create search indexes", zap.Error(err))
		}
		logger.Info("Search indexes ready", zap.Strings("created", created))
	}

	// Use case services
	accessFilter := accessuc.NewFilter(accessuc.NewPolicy(records, cfg.Access.PublicPrincipal))
	searchSvc := searchuc.New(engine, accessFilter, searchuc.Config{
		Planner: plannerCfg,
		Timeout: cfg.Search.Timeout(),
	})
	healthSvc := healthuc.New(store, indexes)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.Tokens))
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
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
