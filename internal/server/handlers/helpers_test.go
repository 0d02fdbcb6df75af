package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/account"
	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/internal/server/objectstore"
	"github.com/iudanet/vidtube/internal/server/session"
	"github.com/iudanet/vidtube/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var testUser = &models.User{
	ID:       "user-1",
	Username: "alice",
	Email:    "alice@example.com",
	FullName: "Alice",
}

// authedRequest эмулирует запрос, прошедший AuthMiddleware
func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(WithUser(req.Context(), testUser))
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) api.Response[T] {
	t.Helper()
	var resp api.Response[T]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// mockSessions is a mock implementation of SessionService for testing
type mockSessions struct {
	loginErr      error
	refreshErr    error
	logoutErr     error
	changeErr     error
	lastLogin     string
	lastPresented string
	loggedOut     []string
	changed       []string
}

func testPair() *session.Pair {
	now := time.Now()
	return &session.Pair{
		AccessToken:      "access-token",
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshToken:     "refresh-token",
		RefreshExpiresAt: now.Add(240 * time.Hour),
	}
}

func (m *mockSessions) Login(ctx context.Context, identifier, password string) (*models.PublicUser, *session.Pair, error) {
	m.lastLogin = identifier
	if m.loginErr != nil {
		return nil, nil, m.loginErr
	}
	return testUser.Public(), testPair(), nil
}

func (m *mockSessions) Refresh(ctx context.Context, presented string) (*session.Pair, error) {
	m.lastPresented = presented
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	if presented == "" {
		return nil, apperr.Unauthorized("refresh token is required")
	}
	return testPair(), nil
}

func (m *mockSessions) Logout(ctx context.Context, userID string) error {
	if m.logoutErr != nil {
		return m.logoutErr
	}
	m.loggedOut = append(m.loggedOut, userID)
	return nil
}

func (m *mockSessions) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if m.changeErr != nil {
		return m.changeErr
	}
	m.changed = append(m.changed, userID)
	return nil
}

// mockRegistrar хранит зарегистрированных пользователей по username
type mockRegistrar struct {
	users map[string]*models.User
}

func (m *mockRegistrar) Register(ctx context.Context, in account.RegisterInput) (*models.PublicUser, error) {
	if in.Username == "" || in.Password == "" {
		return nil, apperr.BadRequest("all fields are required")
	}
	if _, exists := m.users[in.Username]; exists {
		return nil, apperr.Conflict("user with email or username already exists")
	}
	user := &models.User{ID: "new-id", Username: in.Username, Email: in.Email, FullName: in.FullName}
	m.users[in.Username] = user
	return user.Public(), nil
}

// mockAccounts is a mock implementation of AccountService for testing
type mockAccounts struct {
	err      error
	lastKind models.MediaKind
	lastKey  string
}

func (m *mockAccounts) CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testUser.Public(), nil
}

func (m *mockAccounts) UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	u := *testUser
	u.FullName = fullName
	u.Email = email
	return u.Public(), nil
}

func (m *mockAccounts) UploadURL(ctx context.Context, userID string, kind models.MediaKind) (*objectstore.Upload, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastKind = kind
	key := objectstore.KeyPrefix(userID, kind) + "obj"
	return &objectstore.Upload{URL: "http://minio/media/" + key, Method: "PUT", Key: key}, nil
}

func (m *mockAccounts) UpdateMedia(ctx context.Context, userID string, kind models.MediaKind, key string) (*models.PublicUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastKind = kind
	m.lastKey = key
	u := *testUser
	url := "https://cdn/" + key
	if kind == models.MediaAvatar {
		u.Avatar = &url
	} else {
		u.CoverImage = &url
	}
	return u.Public(), nil
}

// mockGraph is a mock implementation of GraphService for testing
type mockGraph struct {
	subscribed map[string]bool // handle -> subscribed
	history    []*models.WatchedVideo
	err        error
	viewed     []string
}

func (m *mockGraph) ChannelProfile(ctx context.Context, handle, viewerID string) (*models.ChannelProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if handle == "" {
		return nil, apperr.BadRequest("username is missing")
	}
	if handle != "bob" {
		return nil, apperr.NotFound("channel does not exist")
	}
	profile := &models.ChannelProfile{Username: "bob", FullName: "Bob", IsSubscribed: m.subscribed[handle]}
	if profile.IsSubscribed {
		profile.SubscribersCount = 1
	}
	return profile, nil
}

func (m *mockGraph) WatchHistory(ctx context.Context, viewerID string) ([]*models.WatchedVideo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

func (m *mockGraph) Subscribe(ctx context.Context, subscriberID, handle string) error {
	if m.err != nil {
		return m.err
	}
	m.subscribed[handle] = true
	return nil
}

func (m *mockGraph) Unsubscribe(ctx context.Context, subscriberID, handle string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.subscribed, handle)
	return nil
}

func (m *mockGraph) RecordView(ctx context.Context, userID, videoID string) error {
	if m.err != nil {
		return m.err
	}
	m.viewed = append(m.viewed, videoID)
	return nil
}
