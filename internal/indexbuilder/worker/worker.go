// Package worker runs index_builder as a long-lived process that
// executes full rebuilds in response to Kafka events instead of a
// single one-shot CLI invocation. It is additive to the pure builder
// contract: the same indexbuilder.Build function backs both.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/corpuslex/corpuslex/internal/indexbuilder"
	"github.com/corpuslex/corpuslex/pkg/config"
	"github.com/corpuslex/corpuslex/pkg/kafka"
	"github.com/corpuslex/corpuslex/pkg/postgres"
	"github.com/corpuslex/corpuslex/pkg/resilience"
)

// ErrStopped is returned by Run when the worker exits because its
// context was cancelled, distinguishing a clean shutdown from a fetch
// or handler failure.
var ErrStopped = errors.New("worker stopped")

// BuildRequested is the payload published to the build-requested topic
// by build_api when a client asks for a rebuild.
type BuildRequested struct {
	BuildID     string `json:"build_id"`
	StemmedPath string `json:"stemmed_path"`
	TSVPath     string `json:"tsv_path"`
	OutputDir   string `json:"output_dir"`
	HashCapacity uint32 `json:"hash_capacity"`
}

// BuildCompleted is published to the build-complete topic once a build
// finishes, successfully or not, so search_server can hot-reload.
type BuildCompleted struct {
	BuildID string `json:"build_id"`
	OutputDir string `json:"output_dir"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Stats   indexbuilder.Stats `json:"stats"`
}

// Worker consumes build requests and runs indexbuilder.Build for each.
type Worker struct {
	cfg      *config.Config
	consumer *kafka.Consumer
	producer *kafka.Producer
	db       *postgres.Client
	logger   *slog.Logger
}

// New wires a Worker's Postgres connection and Kafka producer/consumer
// from cfg. The consumer is constructed but not started until Run.
func New(cfg *config.Config) (*Worker, error) {
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	w := &Worker{
		cfg:      cfg,
		producer: kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.BuildComplete),
		db:       db,
		logger:   slog.Default().With("component", "index_builder_worker"),
	}
	w.consumer = kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.BuildRequested, w.handle)
	return w, nil
}

// Run consumes build-requested events until the process receives
// SIGINT/SIGTERM.
func (w *Worker) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w.logger.Info("index builder worker ready", "topic", w.cfg.Kafka.Topics.BuildRequested)
	if err := w.consumer.Start(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ErrStopped
	}
	return nil
}

func (w *Worker) handle(ctx context.Context, _ []byte, value []byte) error {
	req, err := kafka.DecodeJSON[BuildRequested](value)
	if err != nil {
		w.logger.Error("failed to decode build request", "error", err)
		return err
	}

	w.logger.Info("running build", "build_id", req.BuildID)
	err = resilience.Retry(ctx, "mark-build-running", resilience.RetryConfig{}, func() error {
		_, err := w.db.DB.ExecContext(ctx,
			`UPDATE index_builds SET status = 'RUNNING', started_at = now() WHERE id = $1`, req.BuildID)
		return err
	})
	if err != nil {
		w.logger.Warn("failed to mark build running", "build_id", req.BuildID, "error", err)
	}

	stats, buildErr := indexbuilder.Build(req.StemmedPath, req.TSVPath, req.OutputDir, req.HashCapacity)

	result := BuildCompleted{BuildID: req.BuildID, OutputDir: req.OutputDir, Stats: stats}
	status := "COMPLETED"
	if buildErr != nil {
		result.Success = false
		result.Error = buildErr.Error()
		status = "FAILED"
		w.logger.Error("build failed", "build_id", req.BuildID, "error", buildErr)
	} else {
		result.Success = true
		w.logger.Info("build completed", "build_id", req.BuildID,
			"documents_indexed", stats.DocumentsIndexed, "unique_terms", stats.UniqueTerms)
	}

	err = resilience.Retry(ctx, "update-build-record", resilience.RetryConfig{}, func() error {
		_, err := w.db.DB.ExecContext(ctx,
			`UPDATE index_builds SET status = $1, finished_at = now(), error = $2 WHERE id = $3`,
			status, result.Error, req.BuildID)
		return err
	})
	if err != nil {
		w.logger.Warn("failed to update build record", "build_id", req.BuildID, "error", err)
	}

	return w.producer.Publish(ctx, kafka.Event{Key: req.BuildID, Value: result})
}
