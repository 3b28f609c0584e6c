// Package analytics collects query-serving events, publishes them to
// Kafka, and aggregates them in memory for the GET /api/v1/analytics
// endpoint.
package analytics

import "time"

// EventType distinguishes the two event shapes carried on the
// analytics-events topic.
type EventType string

const (
	EventSearch EventType = "search"
	EventBuild  EventType = "build"
)

// SearchEvent records one completed query evaluation.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// BuildEvent records one completed index build. Nothing in this
// repository publishes it; index_builder's worker mode publishes
// worker.BuildCompleted to the build-complete topic instead. The
// aggregator counts any non-search message on analytics-events as a
// build.
type BuildEvent struct {
	Type             EventType `json:"type"`
	BuildID          string    `json:"build_id"`
	DocumentsIndexed uint64    `json:"documents_indexed"`
	UniqueTerms      uint64    `json:"unique_terms"`
	LatencyMs        int64     `json:"latency_ms"`
	Success          bool      `json:"success"`
	Timestamp        time.Time `json:"timestamp"`
}
