package analytics

import (
	"context"
	"log/slog"

	"github.com/corpuslex/corpuslex/pkg/kafka"
)

// Collector buffers analytics events in a channel and publishes them to
// Kafka one at a time from a background goroutine, so Track never
// blocks the request path that calls it.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan any
	logger   *slog.Logger
	done     chan struct{}
}

// NewCollector creates a Collector publishing through producer, with a
// channel buffer of bufferSize events (default 10000).
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop. It runs until ctx is cancelled, then
// drains whatever is still buffered before returning.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				if err := c.producer.Publish(ctx, kafka.Event{Key: "analytics", Value: event}); err != nil {
					c.logger.Error("failed to publish analytics event", "error", err)
				}
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues event for publishing. If the buffer is full the event
// is dropped rather than blocking the caller.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting new events and waits for the publish loop to
// exit.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			if err := c.producer.Publish(context.Background(), kafka.Event{Key: "analytics", Value: event}); err != nil {
				c.logger.Error("failed to publish remaining event", "error", err)
			}
		default:
			return
		}
	}
}
