package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/pkg/api"
)

// Error is a non-2xx response of the server.
type Error struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе на тот же хост
				if len(via) > 0 && req.URL.Host == via[0].URL.Host {
					if auth := via[0].Header.Get("Authorization"); auth != "" {
						req.Header.Set("Authorization", auth)
					}
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*models.PublicUser, error) {
	user, err := do[*models.PublicUser](ctx, c, http.MethodPost, "/api/v1/users/register", "", req)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return user, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	resp, err := do[api.LoginResponse](ctx, c, http.MethodPost, "/api/v1/users/login", "", req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	resp, err := do[api.TokenResponse](ctx, c, http.MethodPost, "/api/v1/users/refresh-token", "",
		api.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh token на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if _, err := do[struct{}](ctx, c, http.MethodPost, "/api/v1/users/logout", accessToken, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// ChangePassword меняет пароль; сервер отзывает текущую сессию
func (c *Client) ChangePassword(ctx context.Context, accessToken string, req api.ChangePasswordRequest) error {
	if _, err := do[struct{}](ctx, c, http.MethodPost, "/api/v1/users/change-password", accessToken, req); err != nil {
		return fmt.Errorf("change password request failed: %w", err)
	}
	return nil
}

// CurrentUser возвращает профиль владельца токена
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*models.PublicUser, error) {
	user, err := do[*models.PublicUser](ctx, c, http.MethodGet, "/api/v1/users/current-user", accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("current user request failed: %w", err)
	}
	return user, nil
}

// ChannelProfile возвращает профиль канала
func (c *Client) ChannelProfile(ctx context.Context, accessToken, username string) (*models.ChannelProfile, error) {
	profile, err := do[*models.ChannelProfile](ctx, c, http.MethodGet, channelPath(username), accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("channel request failed: %w", err)
	}
	return profile, nil
}

// Subscribe подписывает владельца токена на канал
func (c *Client) Subscribe(ctx context.Context, accessToken, username string) (*models.ChannelProfile, error) {
	profile, err := do[*models.ChannelProfile](ctx, c, http.MethodPost, channelPath(username)+"/subscription", accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe request failed: %w", err)
	}
	return profile, nil
}

// Unsubscribe отменяет подписку на канал
func (c *Client) Unsubscribe(ctx context.Context, accessToken, username string) (*models.ChannelProfile, error) {
	profile, err := do[*models.ChannelProfile](ctx, c, http.MethodDelete, channelPath(username)+"/subscription", accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("unsubscribe request failed: %w", err)
	}
	return profile, nil
}

// WatchHistory возвращает историю просмотров владельца токена
func (c *Client) WatchHistory(ctx context.Context, accessToken string) ([]*models.WatchedVideo, error) {
	history, err := do[[]*models.WatchedVideo](ctx, c, http.MethodGet, "/api/v1/users/history", accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("watch history request failed: %w", err)
	}
	return history, nil
}

func channelPath(username string) string {
	return "/api/v1/users/c/" + url.PathEscape(username)
}

// do выполняет HTTP запрос и распаковывает поле data из конверта ответа
func do[T any](ctx context.Context, c *Client, method, path, accessToken string, body any) (T, error) {
	var zero T

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return zero, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return zero, apiErr
	}

	var envelope api.Response[T]
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}

	return envelope.Data, nil
}
