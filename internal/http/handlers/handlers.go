package handlers

import (
	"context"
	"net/http"

	"fastfeet/internal/logx"
)

// ReadinessChecker reports whether backing stores are reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Handlers holds the operational endpoints.
type Handlers struct {
	Logger logx.Logger
	Ready  ReadinessChecker
}

// New creates a Handlers instance with the given logger.
func New(logger logx.Logger, ready ReadinessChecker) *Handlers {
	return &Handlers{Logger: logger, Ready: ready}
}

// Ping handles GET /ping and returns 200 with {"message":"pong"}.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.Logger, w, r, http.StatusOK, map[string]string{"message": "pong"})
}

// HealthcheckHead handles HEAD /healthcheck: 204 when the database answers, 503 otherwise.
func (h *Handlers) HealthcheckHead(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready.Ready(r.Context()); err != nil {
			if h.Logger != nil {
				h.Logger.Warn("healthcheck failed", logx.Err(err))
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotFound returns a JSON 404 error for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.Logger, w, r, http.StatusNotFound, "route not found")
}
