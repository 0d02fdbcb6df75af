// Package account implements registration and profile management of identities.
package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/internal/server/objectstore"
	"github.com/iudanet/vidtube/internal/server/storage"
	"github.com/iudanet/vidtube/internal/validation"
)

// UserStore is the subset of storage.UserStorage used by Service.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.User, error)
	UpdateMedia(ctx context.Context, userID string, kind models.MediaKind, url string) (*models.User, error)
}

// PasswordHasher хеширует пароль при регистрации
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// MediaStore выдает presigned URL и проверяет ключи объектов
type MediaStore interface {
	UploadURL(ctx context.Context, userID string, kind models.MediaKind) (*objectstore.Upload, error)
	OwnsKey(userID string, kind models.MediaKind, key string) bool
	ObjectURL(key string) string
}

// RegisterInput contains the fields of a new identity.
type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

// Service управляет учетными записями
type Service struct {
	logger *slog.Logger
	users  UserStore
	hasher PasswordHasher
	media  MediaStore
	now    func() time.Time
}

// NewService creates an account service. media may be nil, in which case
// media uploads are rejected.
func NewService(logger *slog.Logger, users UserStore, hasher PasswordHasher, media MediaStore) *Service {
	return &Service{
		logger: logger,
		users:  users,
		hasher: hasher,
		media:  media,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new identity. Username and email are stored lower-cased.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = validation.NormalizeHandle(in.Username)
	in.Email = validation.NormalizeEmail(in.Email)

	if err := validation.ValidateRegistration(in.FullName, in.Username, in.Email, in.Password); err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, err.Error(), err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			s.logger.WarnContext(ctx, "user already exists", slog.String("username", in.Username))
			return nil, apperr.Conflict("user with email or username already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user registered successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	return user.Public(), nil
}

// CurrentUser возвращает профиль текущего пользователя
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, translateUserErr(err, "failed to load user")
	}
	return user.Public(), nil
}

// UpdateAccount changes full name and email.
func (s *Service) UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = validation.NormalizeEmail(email)

	if fullName == "" || email == "" {
		return nil, apperr.BadRequest("full name and email are required")
	}
	if err := validation.ValidateAccount(fullName, email); err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, err.Error(), err)
	}

	user, err := s.users.UpdateAccount(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, apperr.Conflict("email is already in use")
		}
		return nil, translateUserErr(err, "failed to update account")
	}

	s.logger.InfoContext(ctx, "account updated", slog.String("user_id", userID))
	return user.Public(), nil
}

// UploadURL presigns an upload of an avatar or cover image for userID.
func (s *Service) UploadURL(ctx context.Context, userID string, kind models.MediaKind) (*objectstore.Upload, error) {
	if s.media == nil {
		return nil, apperr.Internal("media uploads are not configured", nil)
	}
	if !kind.Valid() {
		return nil, apperr.BadRequest("kind must be avatar or cover_image")
	}

	upload, err := s.media.UploadURL(ctx, userID, kind)
	if err != nil {
		return nil, apperr.Internal("failed to create upload url", err)
	}
	return upload, nil
}

// UpdateMedia stores the public URL of an uploaded object as the avatar or cover image.
// The key must have been issued to the same user for the same kind.
func (s *Service) UpdateMedia(ctx context.Context, userID string, kind models.MediaKind, key string) (*models.PublicUser, error) {
	if s.media == nil {
		return nil, apperr.Internal("media uploads are not configured", nil)
	}
	if key == "" {
		return nil, apperr.BadRequest(string(kind) + " file is missing")
	}
	if !kind.Valid() || !s.media.OwnsKey(userID, kind, key) {
		return nil, apperr.BadRequest("invalid " + string(kind) + " key")
	}

	user, err := s.users.UpdateMedia(ctx, userID, kind, s.media.ObjectURL(key))
	if err != nil {
		return nil, translateUserErr(err, "failed to update "+string(kind))
	}

	s.logger.InfoContext(ctx, "media updated",
		slog.String("user_id", userID),
		slog.String("kind", string(kind)))
	return user.Public(), nil
}

func translateUserErr(err error, message string) error {
	if errors.Is(err, storage.ErrUserNotFound) {
		return apperr.NotFound("user does not exist")
	}
	return apperr.Internal(message, err)
}
