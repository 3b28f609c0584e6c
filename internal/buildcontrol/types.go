// Package buildcontrol defines the request/response types and Kafka event
// schema used by the build control plane to request full index rebuilds
// from index_builder.
package buildcontrol

import "time"

// BuildRequest is the JSON body accepted by the build control HTTP endpoint.
type BuildRequest struct {
	StemmedPath  string `json:"stemmed_path"`
	TSVPath      string `json:"tsv_path"`
	OutputDir    string `json:"output_dir"`
	HashCapacity uint32 `json:"hash_capacity"`
}

// BuildResponse is returned to the caller after a build is accepted.
type BuildResponse struct {
	BuildID string `json:"build_id"`
	Status  string `json:"status"`
}

// BuildRequestedEvent is the Kafka message payload published once a build
// request is persisted and ready for index_builder to pick up.
type BuildRequestedEvent struct {
	BuildID      string    `json:"build_id"`
	StemmedPath  string    `json:"stemmed_path"`
	TSVPath      string    `json:"tsv_path"`
	OutputDir    string    `json:"output_dir"`
	HashCapacity uint32    `json:"hash_capacity"`
	RequestedAt  time.Time `json:"requested_at"`
}

// BuildStatus is the row shape returned by GET /api/v1/builds/{id}.
type BuildStatus struct {
	BuildID    string     `json:"build_id"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
