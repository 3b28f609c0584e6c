// Package publisher persists build requests to PostgreSQL and publishes
// build-requested events to Kafka for index_builder to consume.
package publisher

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/corpuslex/corpuslex/internal/buildcontrol"
	apperrors "github.com/corpuslex/corpuslex/pkg/errors"
	"github.com/corpuslex/corpuslex/pkg/kafka"
	"github.com/corpuslex/corpuslex/pkg/postgres"
	"github.com/corpuslex/corpuslex/pkg/resilience"
)

// Publisher coordinates build-request persistence and Kafka event
// production.
type Publisher struct {
	db       *postgres.Client
	producer *kafka.Producer
	logger   *slog.Logger
}

// New creates a Publisher with the given database and Kafka producer.
func New(db *postgres.Client, producer *kafka.Producer) *Publisher {
	return &Publisher{
		db:       db,
		producer: producer,
		logger:   slog.Default().With("component", "build-publisher"),
	}
}

// RequestBuild inserts a PENDING row into index_builds and publishes a
// BuildRequestedEvent for index_builder to pick up.
func (p *Publisher) RequestBuild(ctx context.Context, req *buildcontrol.BuildRequest) (*buildcontrol.BuildResponse, error) {
	buildID := uuid.NewString()

	err := resilience.Retry(ctx, "insert-build-record", resilience.RetryConfig{}, func() error {
		return p.db.InTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO index_builds (id, status, stemmed_path, tsv_path, output_dir, hash_capacity, created_at)
				 VALUES ($1, 'PENDING', $2, $3, $4, $5, now())`,
				buildID, req.StemmedPath, req.TSVPath, req.OutputDir, req.HashCapacity)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("inserting build record: %w", err)
	}

	event := kafka.Event{
		Key: buildID,
		Value: buildcontrol.BuildRequestedEvent{
			BuildID:      buildID,
			StemmedPath:  req.StemmedPath,
			TSVPath:      req.TSVPath,
			OutputDir:    req.OutputDir,
			HashCapacity: req.HashCapacity,
			RequestedAt:  time.Now().UTC(),
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		p.logger.Error("failed to publish build request, row stuck in PENDING",
			"build_id", buildID, "error", err)
	}

	return &buildcontrol.BuildResponse{BuildID: buildID, Status: "PENDING"}, nil
}

// Status looks up the current state of a build by ID.
func (p *Publisher) Status(ctx context.Context, buildID string) (*buildcontrol.BuildStatus, error) {
	var status buildcontrol.BuildStatus
	var errMsg sql.NullString
	var startedAt, finishedAt sql.NullTime
	err := p.db.DB.QueryRowContext(ctx,
		`SELECT id, status, error, started_at, finished_at, created_at
		 FROM index_builds WHERE id = $1`, buildID).
		Scan(&status.BuildID, &status.Status, &errMsg, &startedAt, &finishedAt, &status.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, 404, "build not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying build status: %w", err)
	}
	if errMsg.Valid {
		status.Error = errMsg.String
	}
	if startedAt.Valid {
		status.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		status.FinishedAt = &finishedAt.Time
	}
	return &status, nil
}
