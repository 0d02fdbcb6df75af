// Package session manages the credential lifecycle of an identity:
// login, refresh token rotation, logout and password change.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/internal/server/storage"
	"github.com/iudanet/vidtube/internal/server/token"
	"github.com/iudanet/vidtube/internal/validation"
)

// UserStore is the subset of storage.UserStorage used by Manager.
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// PasswordVerifier проверяет и хеширует пароли
type PasswordVerifier interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	AccessToken      string
	RefreshToken     string
}

// Manager реализует жизненный цикл сессии
type Manager struct {
	logger   *slog.Logger
	users    UserStore
	verifier PasswordVerifier
	codec    *token.Codec
}

// NewManager создает новый менеджер сессий
func NewManager(logger *slog.Logger, users UserStore, verifier PasswordVerifier, codec *token.Codec) *Manager {
	return &Manager{
		logger:   logger,
		users:    users,
		verifier: verifier,
		codec:    codec,
	}
}

// Login authenticates by username or email and issues a new pair.
// The issued refresh token replaces any previously persisted one.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*models.PublicUser, *Pair, error) {
	login := validation.NormalizeHandle(identifier)
	if login == "" {
		return nil, nil, apperr.BadRequest("username or email is required")
	}

	user, err := m.users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			m.logger.WarnContext(ctx, "login failed: user not found", slog.String("login", login))
			return nil, nil, apperr.NotFound("user does not exist")
		}
		return nil, nil, apperr.Internal("failed to load user", err)
	}

	if !m.verifier.Verify(password, user.PasswordHash) {
		m.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", user.ID))
		return nil, nil, apperr.Unauthorized("invalid user credentials")
	}

	pair, err := m.issuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := m.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, nil, apperr.Internal("failed to persist refresh token", err)
	}

	m.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return user.Public(), pair, nil
}

// Refresh exchanges the presented refresh token for a new pair.
// The swap is a single conditional update, so a token is accepted at most once.
func (m *Manager) Refresh(ctx context.Context, presented string) (*Pair, error) {
	if presented == "" {
		return nil, apperr.Unauthorized("refresh token is required")
	}

	claims, err := m.codec.Verify(presented, token.ClassRefresh)
	if err != nil {
		m.logger.WarnContext(ctx, "refresh failed: invalid token", slog.Any("error", err))
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid refresh token", err)
	}

	pair, err := m.issuePair(claims.Subject)
	if err != nil {
		return nil, err
	}

	swapped, err := m.users.RotateRefreshToken(ctx, claims.Subject, presented, pair.RefreshToken)
	if err != nil {
		return nil, apperr.Internal("failed to rotate refresh token", err)
	}
	if !swapped {
		m.logger.WarnContext(ctx, "refresh failed: stale token", slog.String("user_id", claims.Subject))
		return nil, apperr.Unauthorized("refresh token is stale or already consumed")
	}

	m.logger.InfoContext(ctx, "session refreshed", slog.String("user_id", claims.Subject))

	return pair, nil
}

// Logout очищает сохраненный refresh token. Повторный вызов ничего не меняет
func (m *Manager) Logout(ctx context.Context, userID string) error {
	err := m.users.SetRefreshToken(ctx, userID, "")
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return apperr.Internal("failed to clear refresh token", err)
	}

	m.logger.InfoContext(ctx, "user logged out", slog.String("user_id", userID))
	return nil
}

// ChangePassword replaces the password hash after verifying the old password.
// The persisted refresh token is cleared in the same write.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperr.BadRequest("old and new password are required")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return apperr.BadRequest("new password: " + err.Error())
	}

	user, err := m.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperr.NotFound("user does not exist")
		}
		return apperr.Internal("failed to load user", err)
	}

	if !m.verifier.Verify(oldPassword, user.PasswordHash) {
		m.logger.WarnContext(ctx, "password change failed: invalid old password", slog.String("user_id", userID))
		return apperr.Unauthorized("invalid old password")
	}

	hash, err := m.verifier.Hash(newPassword)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}

	if err := m.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperr.NotFound("user does not exist")
		}
		return apperr.Internal("failed to update password", err)
	}

	m.logger.InfoContext(ctx, "password changed", slog.String("user_id", userID))
	return nil
}

func (m *Manager) issuePair(userID string) (*Pair, error) {
	access, accessExp, err := m.codec.Issue(userID, token.ClassAccess)
	if err != nil {
		return nil, apperr.Internal("failed to issue access token", err)
	}

	refresh, refreshExp, err := m.codec.Issue(userID, token.ClassRefresh)
	if err != nil {
		return nil, apperr.Internal("failed to issue refresh token", fmt.Errorf("user %s: %w", userID, err))
	}

	return &Pair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
