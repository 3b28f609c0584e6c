// Package searchserver wraps queryengine.Engine with the HTTP surface,
// caching, analytics and hot-reload machinery search_server needs on
// top of the pure, sequential core.
package searchserver

import (
	"sync/atomic"

	"github.com/corpuslex/corpuslex/internal/queryengine"
)

// EngineRef holds a swappable, atomically-read pointer to the currently
// active Engine. Readers always see a fully loaded, immutable Engine;
// Swap installs a newly built one without ever exposing a partial
// state, preserving the load-once immutability the core engine
// requires while letting the server pick up rebuilt indexes.
type EngineRef struct {
	ptr atomic.Pointer[queryengine.Engine]
}

// NewEngineRef wraps an already-loaded engine.
func NewEngineRef(engine *queryengine.Engine) *EngineRef {
	ref := &EngineRef{}
	ref.ptr.Store(engine)
	return ref
}

// Get returns the currently active engine.
func (r *EngineRef) Get() *queryengine.Engine {
	return r.ptr.Load()
}

// Swap installs engine as the active one, atomically.
func (r *EngineRef) Swap(engine *queryengine.Engine) {
	r.ptr.Store(engine)
}
