package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/vidtube/internal/crypto"
	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/internal/server/storage"
	"github.com/iudanet/vidtube/internal/server/token"
)

// mockUserStore is a mock implementation of UserStore for testing
type mockUserStore struct {
	mu         sync.Mutex
	users      map[string]*models.User // id -> User
	getError   error
	setError   error
	writeCount int
}

func newMockUserStore(users ...*models.User) *mockUserStore {
	m := &mockUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserStore) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	for _, user := range m.users {
		if user.Username == login || user.Email == login {
			copied := *user
			return &copied, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStore) SetRefreshToken(ctx context.Context, userID, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setError != nil {
		return m.setError
	}
	user, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	m.writeCount++
	if tok == "" {
		user.RefreshToken = nil
		return nil
	}
	user.RefreshToken = &tok
	return nil
}

func (m *mockUserStore) RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setError != nil {
		return false, m.setError
	}
	user, ok := m.users[userID]
	if !ok || user.RefreshToken == nil || *user.RefreshToken != current {
		return false, nil
	}
	m.writeCount++
	user.RefreshToken = &next
	return true, nil
}

func (m *mockUserStore) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	m.writeCount++
	user.PasswordHash = passwordHash
	user.RefreshToken = nil
	return nil
}

func (m *mockUserStore) persisted(userID string) *string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID].RefreshToken
}

func newTestCodec(t *testing.T, clock func() time.Time) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    240 * time.Hour,
	}, token.WithClock(clock))
	require.NoError(t, err)
	return codec
}

func newTestUser(t *testing.T, hasher *crypto.PasswordHasher, username, password string) *models.User {
	t.Helper()
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	return &models.User{
		ID:           username + "-id",
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		PasswordHash: hash,
	}
}

type testEnv struct {
	manager *Manager
	store   *mockUserStore
	codec   *token.Codec
	user    *models.User
}

func setupManager(t *testing.T) *testEnv {
	t.Helper()
	hasher := crypto.NewPasswordHasher(bcrypt.MinCost)
	user := newTestUser(t, hasher, "alice", "password123")
	store := newMockUserStore(user)
	codec := newTestCodec(t, time.Now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		manager: NewManager(logger, store, hasher, codec),
		store:   store,
		codec:   codec,
		user:    user,
	}
}

func TestManager_Login(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{name: "by username", identifier: "alice", password: "password123"},
		{name: "by username mixed case", identifier: "  Alice ", password: "password123"},
		{name: "by email", identifier: "alice@example.com", password: "password123"},
		{name: "by email mixed case", identifier: "ALICE@example.com", password: "password123"},
		{name: "unknown email", identifier: "nobody@example.com", password: "password123", wantErr: apperr.ErrNotFound},
		{name: "wrong password", identifier: "alice", password: "password124", wantErr: apperr.ErrUnauthorized},
		{name: "empty password", identifier: "alice", password: "", wantErr: apperr.ErrUnauthorized},
		{name: "empty identifier", identifier: " ", password: "password123", wantErr: apperr.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupManager(t)
			ctx := context.Background()

			user, pair, err := env.manager.Login(ctx, tt.identifier, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, pair)
				// Неудачный логин ничего не пишет
				assert.Zero(t, env.store.writeCount)
				assert.Nil(t, env.store.persisted(env.user.ID))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, env.user.ID, user.ID)
			assert.Equal(t, "alice", user.Username)

			accessClaims, err := env.codec.Verify(pair.AccessToken, token.ClassAccess)
			require.NoError(t, err)
			assert.Equal(t, env.user.ID, accessClaims.Subject)

			refreshClaims, err := env.codec.Verify(pair.RefreshToken, token.ClassRefresh)
			require.NoError(t, err)
			assert.Equal(t, env.user.ID, refreshClaims.Subject)

			persisted := env.store.persisted(env.user.ID)
			require.NotNil(t, persisted)
			assert.Equal(t, pair.RefreshToken, *persisted)
		})
	}
}

func TestManager_LoginOverwritesPreviousSession(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	_, first, err := env.manager.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	_, second, err := env.manager.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = env.manager.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestManager_LoginStoreFailure(t *testing.T) {
	env := setupManager(t)
	env.store.getError = errors.New("connection refused")

	_, _, err := env.manager.Login(context.Background(), "alice", "password123")
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

func TestManager_RefreshIsSingleUse(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	_, pair, err := env.manager.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	rotated, err := env.manager.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	persisted := env.store.persisted(env.user.ID)
	require.NotNil(t, persisted)
	assert.Equal(t, rotated.RefreshToken, *persisted)

	// Повторное предъявление старого токена отклоняется и не меняет сохраненный
	_, err = env.manager.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Contains(t, apperr.Message(err), "stale or already consumed")

	persisted = env.store.persisted(env.user.ID)
	require.NotNil(t, persisted)
	assert.Equal(t, rotated.RefreshToken, *persisted)

	_, err = env.manager.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestManager_RefreshConcurrentSingleWinner(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	_, pair, err := env.manager.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	const workers = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.manager.Refresh(ctx, pair.RefreshToken); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestManager_RefreshRejections(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	_, pair, err := env.manager.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage", token: "garbage"},
		{name: "access token presented as refresh", token: pair.AccessToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.manager.Refresh(ctx, tt.token)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)

			persisted := env.store.persisted(env.user.ID)
			require.NotNil(t, persisted)
			assert.Equal(t, pair.RefreshToken, *persisted)
		})
	}
}

func TestManager_RefreshExpired(t *testing.T) {
	hasher := crypto.NewPasswordHasher(bcrypt.MinCost)
	user := newTestUser(t, hasher, "alice", "password123")
	store := newMockUserStore(user)

	now := time.Now()
	clock := func() time.Time { return now }
	codec := newTestCodec(t, clock)
	manager := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)), store, hasher, codec)

	_, pair, err := manager.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)

	now = now.Add(241 * time.Hour)

	_, err = manager.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestManager_RefreshUnknownIdentity(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	ghost, _, err := env.codec.Issue("ghost-id", token.ClassRefresh)
	require.NoError(t, err)

	_, err = env.manager.Refresh(ctx, ghost)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestManager_RefreshStoreFailure(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	_, pair, err := env.manager.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	env.store.setError = errors.New("disk full")
	_, err = env.manager.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

func TestManager_LogoutIsAbsorbing(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	_, pair, err := env.manager.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	require.NoError(t, env.manager.Logout(ctx, env.user.ID))
	assert.Nil(t, env.store.persisted(env.user.ID))

	_, err = env.manager.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	require.NoError(t, env.manager.Logout(ctx, env.user.ID))
	assert.Nil(t, env.store.persisted(env.user.ID))

	// Пользователь уже удален
	assert.NoError(t, env.manager.Logout(ctx, "ghost-id"))
}

func TestManager_LogoutStoreFailure(t *testing.T) {
	env := setupManager(t)
	env.store.setError = errors.New("disk full")

	err := env.manager.Logout(context.Background(), env.user.ID)
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

func TestManager_ChangePassword(t *testing.T) {
	tests := []struct {
		name        string
		oldPassword string
		newPassword string
		userID      string
		wantErr     error
	}{
		{name: "success", oldPassword: "password123", newPassword: "new-password-456"},
		{name: "empty old password", oldPassword: "", newPassword: "new-password-456", wantErr: apperr.ErrBadRequest},
		{name: "empty new password", oldPassword: "password123", newPassword: "", wantErr: apperr.ErrBadRequest},
		{name: "new password too short", oldPassword: "password123", newPassword: "short", wantErr: apperr.ErrBadRequest},
		{name: "wrong old password", oldPassword: "password999", newPassword: "new-password-456", wantErr: apperr.ErrUnauthorized},
		{name: "unknown user", oldPassword: "password123", newPassword: "new-password-456", userID: "ghost-id", wantErr: apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupManager(t)
			ctx := context.Background()

			_, pair, err := env.manager.Login(ctx, "alice", "password123")
			require.NoError(t, err)

			userID := env.user.ID
			if tt.userID != "" {
				userID = tt.userID
			}

			err = env.manager.ChangePassword(ctx, userID, tt.oldPassword, tt.newPassword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				persisted := env.store.persisted(env.user.ID)
				require.NotNil(t, persisted)
				assert.Equal(t, pair.RefreshToken, *persisted)
				return
			}

			require.NoError(t, err)

			// Смена пароля отзывает refresh token
			assert.Nil(t, env.store.persisted(env.user.ID))
			_, err = env.manager.Refresh(ctx, pair.RefreshToken)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)

			_, _, err = env.manager.Login(ctx, "alice", "password123")
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
			_, _, err = env.manager.Login(ctx, "alice", tt.newPassword)
			assert.NoError(t, err)
		})
	}
}
