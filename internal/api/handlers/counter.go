package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smokebuddy/internal/core"
	"smokebuddy/internal/responder"
	"smokebuddy/internal/types"
)

// CounterReader returns the record after the lazy day rollover.
// *tracker.Service satisfies it.
type CounterReader interface {
	Current(ctx context.Context) (*types.CounterRecord, error)
}

// counterResponse is the body of GET /v1/counter.
type counterResponse struct {
	types.CounterRecord
	Summary string `json:"summary"`
}

// CounterHandler serves the read-only counter status.
type CounterHandler struct {
	counter CounterReader
	logger  *slog.Logger
}

// NewCounterHandler creates a CounterHandler.
func NewCounterHandler(counter CounterReader, logger *slog.Logger) *CounterHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CounterHandler{counter: counter, logger: logger}
}

// RegisterRoutes mounts GET /counter (under /v1).
func (h *CounterHandler) RegisterRoutes(r chi.Router) {
	r.Get("/counter", h.HandleGet)
}

// HandleGet returns the current record and its status text.
func (h *CounterHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.counter.Current(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read counter", "error", err)
		core.Error(w, r, err)
		return
	}

	core.Data(w, r, http.StatusOK, counterResponse{
		CounterRecord: *rec,
		Summary:       responder.StatusText(*rec),
	})
}
