// Package handler exposes the build control plane's HTTP surface: request
// a rebuild and poll its status.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corpuslex/corpuslex/internal/buildcontrol"
	"github.com/corpuslex/corpuslex/internal/buildcontrol/publisher"
	"github.com/corpuslex/corpuslex/internal/buildcontrol/validator"
	apperrors "github.com/corpuslex/corpuslex/pkg/errors"
	"github.com/corpuslex/corpuslex/pkg/logger"
)

// Handler serves the build control HTTP endpoints.
type Handler struct {
	publisher *publisher.Publisher
	logger    *slog.Logger
}

// New wires a Handler around the given Publisher.
func New(pub *publisher.Publisher) *Handler {
	return &Handler{
		publisher: pub,
		logger:    slog.Default().With("component", "build-handler"),
	}
}

// RequestBuild handles POST /api/v1/builds.
func (h *Handler) RequestBuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req buildcontrol.BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validator.ValidateBuildRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.publisher.RequestBuild(ctx, &req)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("build request failed", "error", err, "status_code", statusCode)
		h.writeError(w, statusCode, "build request failed")
		return
	}
	log.Info("build requested", "build_id", resp.BuildID)
	h.writeJSON(w, http.StatusAccepted, resp)
}

// GetBuild handles GET /api/v1/builds/{id}.
func (h *Handler) GetBuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buildID := r.PathValue("id")
	if buildID == "" {
		h.writeError(w, http.StatusBadRequest, "build id is required")
		return
	}

	status, err := h.publisher.Status(ctx, buildID)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		h.writeError(w, statusCode, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
