package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/storage"
)

const userColumns = `id, username, email, full_name, password_hash, avatar, cover_image, refresh_token, created_at, updated_at`

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var avatar, coverImage, refreshToken sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&avatar,
		&coverImage,
		&refreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Avatar = nullStringPtr(avatar)
	user.CoverImage = nullStringPtr(coverImage)
	user.RefreshToken = nullStringPtr(refreshToken)

	return user, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := s.rebind(`
		INSERT INTO users (id, username, email, full_name, password_hash, avatar, cover_image, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		nullableString(user.Avatar),
		nullableString(user.CoverImage),
		nullableString(user.RefreshToken),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetUserByLogin retrieves user by username or email
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ? OR email = ? LIMIT 1`, login, login)
}

func (s *Storage) getUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(query), args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateAccount updates full name and email
func (s *Storage) UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	query := `
		UPDATE users SET full_name = ?, email = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(query), fullName, email, s.now(), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, storage.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return user, nil
}

// UpdateMedia sets avatar or cover image URL
func (s *Storage) UpdateMedia(ctx context.Context, userID string, kind models.MediaKind, url string) (*models.User, error) {
	var column string
	switch kind {
	case models.MediaAvatar:
		column = "avatar"
	case models.MediaCoverImage:
		column = "cover_image"
	default:
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}

	query := `UPDATE users SET ` + column + ` = ?, updated_at = ? WHERE id = ? RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(query), url, s.now(), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", column, err)
	}
	return user, nil
}

// UpdatePasswordHash stores new password hash and revokes the refresh token
func (s *Storage) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	query := s.rebind(`UPDATE users SET password_hash = ?, refresh_token = NULL, updated_at = ? WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, query, passwordHash, s.now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireOneRow(result)
}

// SetRefreshToken overwrites the refresh token; empty token clears it
func (s *Storage) SetRefreshToken(ctx context.Context, userID, token string) error {
	query := s.rebind(`UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`)

	var value any
	if token != "" {
		value = token
	}

	result, err := s.db.ExecContext(ctx, query, value, s.now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	return requireOneRow(result)
}

// RotateRefreshToken atomically swaps current for next
func (s *Storage) RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error) {
	if current == "" || next == "" {
		return false, nil
	}

	query := s.rebind(`
		UPDATE users SET refresh_token = ?, updated_at = ?
		WHERE id = ? AND refresh_token = ?
	`)

	result, err := s.db.ExecContext(ctx, query, next, s.now(), userID, current)
	if err != nil {
		return false, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

func requireOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}
