package searchserver

import (
	"context"
	"log/slog"

	"github.com/corpuslex/corpuslex/internal/queryengine"
	"github.com/corpuslex/corpuslex/pkg/kafka"
)

// buildCompleted mirrors worker.BuildCompleted's JSON shape without
// importing the indexbuilder worker package, keeping search_server
// decoupled from the build side's internals.
type buildCompleted struct {
	BuildID   string `json:"build_id"`
	OutputDir string `json:"output_dir"`
	Success   bool   `json:"success"`
}

// ReloadHandler returns a kafka.MessageHandler that loads the newly
// built index named in each completion event and swaps it into ref.
// A failed load is logged and does not disturb the currently serving
// engine.
func ReloadHandler(ref *EngineRef, invalidate func(context.Context) error) kafka.MessageHandler {
	log := slog.Default().With("component", "search-server-reload")
	return func(ctx context.Context, _ []byte, value []byte) error {
		event, err := kafka.DecodeJSON[buildCompleted](value)
		if err != nil {
			log.Error("failed to decode build completion event", "error", err)
			return nil
		}
		if !event.Success {
			log.Warn("skipping reload for failed build", "build_id", event.BuildID)
			return nil
		}

		engine, err := queryengine.Load(event.OutputDir)
		if err != nil {
			log.Error("failed to load rebuilt index, keeping current engine", "build_id", event.BuildID, "dir", event.OutputDir, "error", err)
			return nil
		}

		ref.Swap(engine)
		log.Info("hot reload complete", "build_id", event.BuildID, "dir", event.OutputDir)

		if invalidate != nil {
			if err := invalidate(ctx); err != nil {
				log.Error("cache invalidation after reload failed", "error", err)
			}
		}
		return nil
	}
}
