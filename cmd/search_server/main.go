// Command search_server starts the boolean query HTTP service.
//
// It loads a built index from disk, serves GET /api/v1/search over it,
// caches results in Redis with singleflight-deduped recomputation,
// publishes per-query analytics events to Kafka, and hot-reloads the
// active index whenever index_builder announces a completed build on
// its Kafka topic. If Postgres is configured, an X-Api-Key header and
// per-key rate limiting gate every search request; otherwise the
// server runs unauthenticated.
//
// Usage:
//
//	go run ./cmd/search_server [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corpuslex/corpuslex/internal/analytics"
	"github.com/corpuslex/corpuslex/internal/auth/apikey"
	"github.com/corpuslex/corpuslex/internal/auth/ratelimit"
	"github.com/corpuslex/corpuslex/internal/queryengine"
	"github.com/corpuslex/corpuslex/internal/searchserver"
	"github.com/corpuslex/corpuslex/internal/searchserver/cache"
	"github.com/corpuslex/corpuslex/pkg/config"
	"github.com/corpuslex/corpuslex/pkg/health"
	"github.com/corpuslex/corpuslex/pkg/kafka"
	"github.com/corpuslex/corpuslex/pkg/logger"
	"github.com/corpuslex/corpuslex/pkg/metrics"
	"github.com/corpuslex/corpuslex/pkg/middleware"
	"github.com/corpuslex/corpuslex/pkg/postgres"
	pkgredis "github.com/corpuslex/corpuslex/pkg/redis"
	"github.com/corpuslex/corpuslex/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search_server", "port", cfg.Server.Port, "index_dir", cfg.Search.IndexDir)

	engine, err := queryengine.Load(cfg.Search.IndexDir)
	if err != nil {
		slog.Error("failed to load index", "dir", cfg.Search.IndexDir, "error", err)
		os.Exit(1)
	}
	ref := searchserver.NewEngineRef(engine)
	slog.Info("index loaded", "dir", cfg.Search.IndexDir, "documents", len(engine.Universe()))

	var db *postgres.Client
	var validator *apikey.Validator
	db, err = postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, api key auth disabled", "error", err)
	} else {
		defer db.Close()
		validator = apikey.NewValidator(db)
		slog.Info("api key auth enabled")
	}
	limiter := ratelimit.New(time.Minute)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisBreaker := resilience.NewCircuitBreaker("redis", resilience.CircuitBreakerConfig{})
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, nil)
	aggregator := analytics.NewAggregator(analyticsConsumer)
	analyticsConsumer = kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	aggregator = analytics.NewAggregator(analyticsConsumer)
	go func() {
		if err := aggregator.Start(ctx); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started")
	analyticsHandler := analytics.NewHandler(aggregator)

	invalidate := func(ctx context.Context) error {
		if queryCache == nil {
			return nil
		}
		return redisBreaker.Execute(func() error {
			return queryCache.Invalidate(ctx)
		})
	}
	reloadConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.BuildComplete, searchserver.ReloadHandler(ref, invalidate))
	go func() {
		if err := reloadConsumer.Start(ctx); err != nil {
			slog.Error("reload consumer error", "error", err)
		}
	}()
	slog.Info("hot-reload consumer started", "topic", cfg.Kafka.Topics.BuildComplete)

	checker := health.NewChecker()
	checker.Register("index_engine", func(ctx context.Context) health.ComponentHealth {
		if ref.Get() != nil {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents", len(ref.Get().Universe()))}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "no index loaded"}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if db == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	m := metrics.New()
	h := searchserver.New(ref, queryCache, collector, cfg.Search.DefaultLimit, cfg.Search.MaxLimit, int64(cfg.Search.MaxConcurrentQueries))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /metrics", metrics.Handler().ServeHTTP)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.RateLimitAPIKey(validator, limiter)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search_server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search_server stopped")
}
