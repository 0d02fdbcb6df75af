// Package auth keeps the client session: it logs in, stores the token pair
// locally and transparently refreshes it when the server rejects the access token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iudanet/vidtube/internal/client/api"
	"github.com/iudanet/vidtube/internal/client/storage"
	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/validation"
	pkgapi "github.com/iudanet/vidtube/pkg/api"
)

var (
	// ErrNotAuthenticated is returned when no usable session is stored.
	ErrNotAuthenticated = errors.New("not authenticated, run 'vidtube login' first")

	// ErrSessionExpired is returned when the server no longer accepts the refresh token.
	ErrSessionExpired = errors.New("session expired, run 'vidtube login' again")
)

// API is the part of *api.Client used by Service.
type API interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*models.PublicUser, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
	ChangePassword(ctx context.Context, accessToken string, req pkgapi.ChangePasswordRequest) error
}

// Service предоставляет функции авторизации и хранит сессию
type Service struct {
	api    API
	store  storage.AuthStorage
	logger *slog.Logger
	now    func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient API, store storage.AuthStorage, logger *slog.Logger) *Service {
	return &Service{
		api:    apiClient,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterInput содержит поля нового пользователя
type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

// Register регистрирует нового пользователя. Поля проверяются до отправки на сервер
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	if err := validation.ValidateRegistration(in.FullName, in.Username, in.Email, in.Password); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	user, err := s.api.Register(ctx, pkgapi.RegisterRequest{
		FullName: in.FullName,
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return user, nil
}

// Login выполняет аутентификацию по username или email и сохраняет сессию
func (s *Service) Login(ctx context.Context, identifier, password string) (*storage.AuthData, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, errors.New("username or email and password are required")
	}

	req := pkgapi.LoginRequest{Password: password}
	if strings.Contains(identifier, "@") {
		req.Email = identifier
	} else {
		req.Username = identifier
	}

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.User == nil {
		return nil, errors.New("login failed: server returned no user")
	}

	auth := &storage.AuthData{
		UserID:   resp.User.ID,
		Username: resp.User.Username,
	}
	applyTokens(auth, &resp.TokenResponse)

	if err := s.store.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return auth, nil
}

// Session returns the stored session. It fails with ErrNotAuthenticated when
// there is none or its refresh token has expired.
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if auth.RefreshExpired(s.now()) {
		return nil, ErrNotAuthenticated
	}

	return auth, nil
}

// Refresh обменивает сохраненный refresh token на новую пару.
// Если сервер отклонил токен, локальная сессия удаляется
func (s *Service) Refresh(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, auth)
}

func (s *Service) refresh(ctx context.Context, auth *storage.AuthData) (*storage.AuthData, error) {
	resp, err := s.api.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.dropSession(ctx)
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	updated := *auth
	applyTokens(&updated, resp)

	if err := s.store.SaveAuth(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.DebugContext(ctx, "session refreshed", slog.String("username", updated.Username))
	return &updated, nil
}

// WithSession calls fn with a valid access token. An access token that is
// expired locally is refreshed before the call; a 401 from fn triggers one
// refresh and one retry.
func (s *Service) WithSession(ctx context.Context, fn func(ctx context.Context, accessToken string) error) error {
	return s.withSession(ctx, true, fn)
}

func (s *Service) withSession(ctx context.Context, retry bool, fn func(ctx context.Context, accessToken string) error) error {
	auth, err := s.Session(ctx)
	if err != nil {
		return err
	}

	if auth.AccessExpired(s.now()) {
		if auth, err = s.refresh(ctx, auth); err != nil {
			return err
		}
	}

	err = fn(ctx, auth.AccessToken)
	if !retry || !api.IsUnauthorized(err) {
		return err
	}

	s.logger.DebugContext(ctx, "access token rejected, refreshing session")
	if auth, err = s.refresh(ctx, auth); err != nil {
		return err
	}

	return fn(ctx, auth.AccessToken)
}

// ChangePassword меняет пароль. Сервер отзывает сессию, поэтому локальная тоже удаляется.
// Сервер отвечает 401 и на неверный старый пароль, поэтому повтора после refresh нет
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("invalid new password: %w", err)
	}

	err := s.withSession(ctx, false, func(ctx context.Context, accessToken string) error {
		return s.api.ChangePassword(ctx, accessToken, pkgapi.ChangePasswordRequest{
			OldPassword: oldPassword,
			NewPassword: newPassword,
		})
	})
	if err != nil {
		return fmt.Errorf("change password failed: %w", err)
	}

	s.dropSession(ctx)
	return nil
}

// Logout выполняет выход из системы
// Сервер уведомляется по возможности, локальная сессия удаляется всегда
func (s *Service) Logout(ctx context.Context) error {
	auth, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	if logoutErr := s.api.Logout(ctx, auth.AccessToken); logoutErr != nil {
		s.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", logoutErr))
	}

	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete local session: %w", err)
	}

	return nil
}

func (s *Service) dropSession(ctx context.Context) {
	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		s.logger.WarnContext(ctx, "failed to delete local session", slog.Any("error", err))
	}
}

func applyTokens(auth *storage.AuthData, tokens *pkgapi.TokenResponse) {
	auth.AccessToken = tokens.AccessToken
	auth.RefreshToken = tokens.RefreshToken
	auth.AccessExpiresAt = tokens.AccessExpiresAt.Unix()
	auth.RefreshExpiresAt = tokens.RefreshExpiresAt.Unix()
}
