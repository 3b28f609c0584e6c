// Command build_api starts the rebuild-orchestration control plane.
//
// The service accepts rebuild requests via POST /api/v1/builds,
// validates them, persists a PENDING row to PostgreSQL, and publishes
// a build-requested event to Kafka for index_builder --serve to pick
// up. GET /api/v1/builds/{id} reports build status. It exposes a
// health endpoint at GET /health.
//
// Usage:
//
//	go run ./cmd/build_api [-config configs/development.yaml]
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

	"github.com/corpuslex/corpuslex/internal/buildcontrol/handler"
	"github.com/corpuslex/corpuslex/internal/buildcontrol/publisher"
	"github.com/corpuslex/corpuslex/pkg/config"
	"github.com/corpuslex/corpuslex/pkg/kafka"
	"github.com/corpuslex/corpuslex/pkg/logger"
	"github.com/corpuslex/corpuslex/pkg/middleware"
	"github.com/corpuslex/corpuslex/pkg/postgres"
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
	slog.Info("starting build_api", "port", cfg.Server.Port)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgres")

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.BuildRequested)
	defer producer.Close()
	slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.BuildRequested)

	pub := publisher.New(db, producer)
	h := handler.New(pub)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/builds", h.RequestBuild)
	mux.HandleFunc("GET /api/v1/builds/{id}", h.GetBuild)
	mux.HandleFunc("GET /health", h.Health)

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("build_api listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("build_api stopped")
}
