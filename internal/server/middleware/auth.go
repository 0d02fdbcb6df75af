package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/internal/server/handlers"
	"github.com/iudanet/vidtube/internal/server/storage"
	"github.com/iudanet/vidtube/internal/server/token"
)

// UserGetter загружает пользователя по id из access токена
type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware создает middleware для проверки access токена.
// Токен берется из cookie accessToken, иначе из заголовка Authorization: Bearer.
// Пользователь из хранилища кладется в контекст запроса (handlers.GetUser)
func AuthMiddleware(logger *slog.Logger, codec *token.Codec, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := extractAccessToken(r)
			if err != nil {
				handlers.WriteError(logger, w, r, err)
				return
			}

			claims, err := codec.Verify(raw, token.ClassAccess)
			if err != nil {
				logger.DebugContext(r.Context(), "invalid access token", slog.Any("error", err))
				handlers.WriteError(logger, w, r, apperr.Wrap(apperr.KindUnauthorized, "invalid access token", err))
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					handlers.WriteError(logger, w, r, apperr.Unauthorized("invalid access token"))
					return
				}
				handlers.WriteError(logger, w, r, apperr.Internal("failed to load user", err))
				return
			}

			// Секреты пользователя не нужны обработчикам
			user.PasswordHash = ""
			user.RefreshToken = nil

			logger.DebugContext(r.Context(), "user authenticated",
				slog.String("user_id", user.ID),
				slog.String("username", user.Username))

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
		})
	}
}

func extractAccessToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(handlers.AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperr.Unauthorized("unauthorized request")
	}

	// Ожидаем формат: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthorized("invalid authorization header")
	}

	return strings.TrimSpace(parts[1]), nil
}
