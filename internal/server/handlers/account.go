package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/internal/server/objectstore"
	"github.com/iudanet/vidtube/pkg/api"
)

// AccountService is implemented by *account.Service.
type AccountService interface {
	CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error)
	UploadURL(ctx context.Context, userID string, kind models.MediaKind) (*objectstore.Upload, error)
	UpdateMedia(ctx context.Context, userID string, kind models.MediaKind, key string) (*models.PublicUser, error)
}

// AccountHandler обрабатывает запросы профиля текущего пользователя
type AccountHandler struct {
	logger   *slog.Logger
	accounts AccountService
}

// NewAccountHandler создает новый handler профиля
func NewAccountHandler(logger *slog.Logger, accounts AccountService) *AccountHandler {
	return &AccountHandler{logger: logger, accounts: accounts}
}

// CurrentUser обрабатывает GET /api/v1/users/current-user
func (h *AccountHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	user, err := h.accounts.CurrentUser(r.Context(), userID)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, "User fetched successfully", user)
}

// UpdateAccount обрабатывает PATCH /api/v1/users/update-account
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	var req api.UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	user, err := h.accounts.UpdateAccount(r.Context(), userID, req.FullName, req.Email)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, "Account details updated successfully", user)
}

// UploadURL обрабатывает POST /api/v1/users/media/upload-url
func (h *AccountHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	var req api.UploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	kind := models.MediaKind(req.Kind)
	if !kind.Valid() {
		WriteError(h.logger, w, r, apperr.BadRequest("kind must be avatar or cover_image"))
		return
	}

	upload, err := h.accounts.UploadURL(r.Context(), userID, kind)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, "Upload URL created", api.UploadURLResponse{
		URL:       upload.URL,
		Method:    upload.Method,
		Headers:   upload.Headers,
		Key:       upload.Key,
		ExpiresAt: upload.ExpiresAt,
	})
}

// UpdateAvatar обрабатывает PATCH /api/v1/users/avatar
func (h *AccountHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, models.MediaAvatar, "Avatar image updated successfully")
}

// UpdateCoverImage обрабатывает PATCH /api/v1/users/cover-image
func (h *AccountHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateMedia(w, r, models.MediaCoverImage, "Cover image updated successfully")
}

func (h *AccountHandler) updateMedia(w http.ResponseWriter, r *http.Request, kind models.MediaKind, message string) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	var req api.UpdateMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	user, err := h.accounts.UpdateMedia(r.Context(), userID, kind, req.Key)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusOK, message, user)
}
