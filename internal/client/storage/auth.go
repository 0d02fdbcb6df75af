package storage

import (
	"context"
	"time"
)

// AuthStorage stores the session of the logged-in user on the client.
type AuthStorage interface {
	// SaveAuth replaces the stored session
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth returns ErrAuthNotFound if no session exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored session (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated reports whether a session exists whose refresh token is still valid
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData представляет сессию пользователя в локальном хранилище.
// Время хранится в Unix секундах
type AuthData struct {
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  int64  `json:"access_expires_at"`
	RefreshExpiresAt int64  `json:"refresh_expires_at"`
}

// AccessExpired reports whether the access token is expired at now.
func (a *AuthData) AccessExpired(now time.Time) bool {
	return !now.Before(time.Unix(a.AccessExpiresAt, 0))
}

// RefreshExpired reports whether the whole session is expired at now.
func (a *AuthData) RefreshExpired(now time.Time) bool {
	return !now.Before(time.Unix(a.RefreshExpiresAt, 0))
}
