package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/account"
	"github.com/iudanet/vidtube/internal/server/session"
	"github.com/iudanet/vidtube/pkg/api"
)

// SessionService is implemented by *session.Manager.
type SessionService interface {
	Login(ctx context.Context, identifier, password string) (*models.PublicUser, *session.Pair, error)
	Refresh(ctx context.Context, presented string) (*session.Pair, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// Registrar is the registration part of *account.Service.
type Registrar interface {
	Register(ctx context.Context, in account.RegisterInput) (*models.PublicUser, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger    *slog.Logger
	sessions  SessionService
	registrar Registrar
	cookies   CookieConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, sessions SessionService, registrar Registrar, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		sessions:  sessions,
		registrar: registrar,
		cookies:   cookies,
	}
}

// Register обрабатывает POST /api/v1/users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	user, err := h.registrar.Register(r.Context(), account.RegisterInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	sendJSON(h.logger, w, http.StatusCreated, "User registered successfully", user)
}

// Login обрабатывает POST /api/v1/users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	user, pair, err := h.sessions.Login(r.Context(), req.Identifier(), req.Password)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	h.cookies.setSession(w, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)

	sendJSON(h.logger, w, http.StatusOK, "User logged in successfully", api.LoginResponse{
		User:          user,
		TokenResponse: tokenResponse(pair),
	})
}

// Refresh обрабатывает POST /api/v1/users/refresh-token
// Токен берется из cookie refreshToken, иначе из тела запроса
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var presented string
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		presented = c.Value
	} else {
		var req api.RefreshRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			WriteError(h.logger, w, r, err)
			return
		}
		presented = req.RefreshToken
	}

	pair, err := h.sessions.Refresh(r.Context(), presented)
	if err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	h.cookies.setSession(w, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)

	sendJSON(h.logger, w, http.StatusOK, "Access token refreshed", tokenResponse(pair))
}

// Logout обрабатывает POST /api/v1/users/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	if err := h.sessions.Logout(r.Context(), userID); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	h.cookies.clearSession(w)
	sendJSON(h.logger, w, http.StatusOK, "User logged out", struct{}{})
}

// ChangePassword обрабатывает POST /api/v1/users/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(h.logger, w, r)
	if !ok {
		return
	}

	var req api.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	if err := h.sessions.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		WriteError(h.logger, w, r, err)
		return
	}

	// Старые refresh токены больше не действуют
	h.cookies.clearSession(w)
	sendJSON(h.logger, w, http.StatusOK, "Password changed successfully", struct{}{})
}

func tokenResponse(pair *session.Pair) api.TokenResponse {
	return api.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		ExpiresIn:        int64(time.Until(pair.AccessExpiresAt).Seconds()),
	}
}
