package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/vidtube/internal/models"
)

// GraphService is implemented by *graph.Service.
type GraphService interface {
	ChannelProfile(ctx context.Context, handle, viewerID string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, viewerID string) ([]*models.WatchedVideo, error)
	Subscribe(ctx context.Context, subscriberID, handle string) error
	Unsubscribe(ctx context.Context, subscriberID, handle string) error
	RecordView(ctx context.Context, userID, videoID string) error
}

// ChannelHandler обрабатывает запросы каналов и истории просмотров
type ChannelHandler struct {
	logger *slog.Logger
	graph  GraphService
}

// NewChannelHandler создает новый handler каналов
func NewChannelHandler(logger *slog.Logger, graph GraphService) *ChannelHandler {
	return &ChannelHandler{logger: logger, graph: graph}
}

// ChannelProfile обрабатывает GET /api/v1/users/c/{username}
func (h *ChannelHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	profile, err := h.graph.ChannelProfile(r.Context(), r.PathValue("username"), userID)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, "User channel fetched successfully", profile)
}

// Subscribe обрабатывает POST /api/v1/users/c/{username}/subscription
func (h *ChannelHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.changeSubscription(w, r, h.graph.Subscribe, "Subscribed successfully")
}

// Unsubscribe обрабатывает DELETE /api/v1/users/c/{username}/subscription
func (h *ChannelHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.changeSubscription(w, r, h.graph.Unsubscribe, "Unsubscribed successfully")
}

func (h *ChannelHandler) changeSubscription(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, subscriberID, handle string) error,
	message string,
) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	handle := r.PathValue("username")
	if err := change(r.Context(), userID, handle); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	profile, err := h.graph.ChannelProfile(r.Context(), handle, userID)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, message, profile)
}

// WatchHistory обрабатывает GET /api/v1/users/history
func (h *ChannelHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	history, err := h.graph.WatchHistory(r.Context(), userID)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, "Watch history fetched successfully", history)
}

// RecordView обрабатывает POST /api/v1/users/history/{videoID}
func (h *ChannelHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	if err := h.graph.RecordView(r.Context(), userID, r.PathValue("videoID")); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, "View recorded", struct{}{})
}
