package storage

import (
	"context"

	"github.com/iudanet/vidtube/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage.
	// Username and email are expected to be lower-cased by the caller.
	// Returns ErrUserAlreadyExists if username or email is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// GetUserByUsername retrieves user by lower-cased username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByLogin retrieves user whose username OR email equals login
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// UpdateAccount sets full name and email and returns the updated row
	// Returns ErrUserNotFound if user doesn't exist, ErrUserAlreadyExists if email is taken
	UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.User, error)

	// UpdateMedia sets avatar or cover image URL and returns the updated row
	// Returns ErrUserNotFound if user doesn't exist
	UpdateMedia(ctx context.Context, userID string, kind models.MediaKind, url string) (*models.User, error)

	// UpdatePasswordHash stores a new password hash and clears the refresh token
	// in the same statement
	// Returns ErrUserNotFound if user doesn't exist
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error

	// SetRefreshToken overwrites the persisted refresh token.
	// An empty token clears it.
	// Returns ErrUserNotFound if user doesn't exist
	SetRefreshToken(ctx context.Context, userID, token string) error

	// RotateRefreshToken replaces the persisted refresh token with next only if
	// it currently equals current. Reports whether the swap happened.
	// A missing user is reported as false, not as an error.
	RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error)
}
