package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/pkg/api"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	store   Pinger
	version string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, store Pinger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		store:   store,
		version: version,
	}
}

// Health обрабатывает GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		WriteError(h.logger, w, r, apperr.Internal("storage is unavailable", err))
		return
	}

	sendJSON(h.logger, w, http.StatusOK, "OK", api.HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}
