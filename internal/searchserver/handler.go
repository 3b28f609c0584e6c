package searchserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/corpuslex/corpuslex/internal/analytics"
	"github.com/corpuslex/corpuslex/internal/queryengine"
	"github.com/corpuslex/corpuslex/internal/searchserver/cache"
	"github.com/corpuslex/corpuslex/pkg/logger"
	"github.com/corpuslex/corpuslex/pkg/middleware"
	"github.com/corpuslex/corpuslex/pkg/tracing"
)

// searchResponse is the JSON body returned by the /api/v1/search endpoint.
type searchResponse struct {
	Query   string       `json:"query"`
	Total   int          `json:"total"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
	Results []resultItem `json:"results"`
}

type resultItem struct {
	DocID uint32 `json:"doc_id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Handler serves boolean queries over the currently active engine.
type Handler struct {
	engine       *EngineRef
	cache        *cache.QueryCache
	collector    *analytics.Collector
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
	sem          *semaphore.Weighted
}

// New wires a Handler. cache and collector are optional; pass nil to
// disable either. maxConcurrentQueries bounds simultaneous query
// evaluations; pass 0 to leave evaluation unbounded.
func New(engine *EngineRef, queryCache *cache.QueryCache, collector *analytics.Collector, defaultLimit, maxLimit int, maxConcurrentQueries int64) *Handler {
	h := &Handler{
		engine:       engine,
		cache:        queryCache,
		collector:    collector,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       slog.Default().With("component", "search-handler"),
	}
	if maxConcurrentQueries > 0 {
		h.sem = semaphore.NewWeighted(maxConcurrentQueries)
	}
	return h
}

// Search handles GET /api/v1/search?q=<query>&offset=<n>&limit=<n>.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = parsed
	}

	limit := h.defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxLimit {
			parsed = h.maxLimit
		}
		limit = parsed
	}

	ctx, rootSpan := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	defer rootSpan.Log()
	defer rootSpan.End()

	engine := h.engine.Get()
	compute := func() (queryengine.Page, error) {
		if h.sem != nil {
			if err := h.sem.Acquire(ctx, 1); err != nil {
				return queryengine.Page{}, err
			}
			defer h.sem.Release(1)
		}
		result, err := engine.SearchContext(ctx, query)
		if err != nil {
			return queryengine.Page{}, err
		}
		_, pageSpan := tracing.StartChildSpan(ctx, "paginate")
		page := result.Paginate(offset, limit)
		pageSpan.End()
		return page, nil
	}

	var page queryengine.Page
	var err error
	cacheHit := false
	if h.cache != nil {
		page, cacheHit, err = h.cache.GetOrCompute(ctx, query, offset, limit, compute)
	} else {
		page, err = compute()
	}
	if err != nil {
		log.Warn("query evaluation failed", "query", query, "error", err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := searchResponse{Query: query, Total: page.Total, Offset: offset, Limit: limit, Results: make([]resultItem, 0, len(page.DocIDs))}
	for _, docID := range page.DocIDs {
		meta, _ := engine.Meta(docID)
		resp.Results = append(resp.Results, resultItem{DocID: docID, Title: meta.Title, URL: meta.URL})
	}

	latencyMs := time.Since(start).Milliseconds()
	log.Info("search completed", "query", query, "total", page.Total, "returned", len(resp.Results), "cache_hit", cacheHit, "latency_ms", latencyMs)

	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventSearch,
			Query:     query,
			TotalHits: page.Total,
			Returned:  len(resp.Results),
			LatencyMs: latencyMs,
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// CacheInvalidate handles POST /api/v1/cache/invalidate, a manual
// trigger; the hot-reload path invalidates the cache directly rather
// than through this endpoint.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": fmt.Sprint(message)})
}
