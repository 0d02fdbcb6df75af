package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/vidtube/internal/crypto"
	"github.com/iudanet/vidtube/internal/models"
	"github.com/iudanet/vidtube/internal/server/apperr"
	"github.com/iudanet/vidtube/internal/server/objectstore"
	"github.com/iudanet/vidtube/internal/server/storage/sqlstore"
)

type stubPresigner struct{}

func (stubPresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "http://minio/media/" + *params.Key, Method: http.MethodPut}, nil
}

type testEnv struct {
	svc    *Service
	store  *sqlstore.Storage
	hasher *crypto.PasswordHasher
}

func setupService(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlstore.New(context.Background(), sqlstore.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hasher := crypto.NewPasswordHasher(bcrypt.MinCost)
	media := objectstore.NewWithPresigner(stubPresigner{}, objectstore.Config{
		Bucket:    "media",
		PublicURL: "https://cdn.example.com",
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		svc:    NewService(logger, store, hasher, media),
		store:  store,
		hasher: hasher,
	}
}

func validInput() RegisterInput {
	return RegisterInput{
		FullName: "Alice Smith",
		Username: "Alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	}
}

func TestService_Register(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	user, err := env.svc.Register(ctx, validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice Smith", user.FullName)
	assert.Nil(t, user.Avatar)

	stored, err := env.store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, env.hasher.Verify("password123", stored.PasswordHash))
}

func TestService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{name: "empty full name", mutate: func(in *RegisterInput) { in.FullName = " " }},
		{name: "empty username", mutate: func(in *RegisterInput) { in.Username = "" }},
		{name: "bad username", mutate: func(in *RegisterInput) { in.Username = "al ice" }},
		{name: "empty email", mutate: func(in *RegisterInput) { in.Email = "" }},
		{name: "bad email", mutate: func(in *RegisterInput) { in.Email = "alice" }},
		{name: "empty password", mutate: func(in *RegisterInput) { in.Password = "" }},
		{name: "short password", mutate: func(in *RegisterInput) { in.Password = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupService(t)
			in := validInput()
			tt.mutate(&in)

			_, err := env.svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, apperr.ErrBadRequest)
		})
	}
}

func TestService_RegisterConflict(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, validInput())
	require.NoError(t, err)

	sameName := validInput()
	sameName.Email = "other@example.com"
	sameName.Username = "ALICE"
	_, err = env.svc.Register(ctx, sameName)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	sameEmail := validInput()
	sameEmail.Username = "other"
	_, err = env.svc.Register(ctx, sameEmail)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestService_CurrentUser(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	created, err := env.svc.Register(ctx, validInput())
	require.NoError(t, err)

	user, err := env.svc.CurrentUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = env.svc.CurrentUser(ctx, "ghost-id")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_UpdateAccount(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	alice, err := env.svc.Register(ctx, validInput())
	require.NoError(t, err)

	other := validInput()
	other.Username = "bob"
	other.Email = "bob@example.com"
	_, err = env.svc.Register(ctx, other)
	require.NoError(t, err)

	updated, err := env.svc.UpdateAccount(ctx, alice.ID, "Alice Jones", "ALICE.JONES@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Jones", updated.FullName)
	assert.Equal(t, "alice.jones@example.com", updated.Email)

	_, err = env.svc.UpdateAccount(ctx, alice.ID, "", "a@example.com")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = env.svc.UpdateAccount(ctx, alice.ID, "Alice", "not-an-email")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = env.svc.UpdateAccount(ctx, alice.ID, "Alice", "bob@example.com")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = env.svc.UpdateAccount(ctx, "ghost-id", "Ghost", "ghost@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_MediaFlow(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	alice, err := env.svc.Register(ctx, validInput())
	require.NoError(t, err)

	upload, err := env.svc.UploadURL(ctx, alice.ID, models.MediaAvatar)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, upload.Method)

	updated, err := env.svc.UpdateMedia(ctx, alice.ID, models.MediaAvatar, upload.Key)
	require.NoError(t, err)
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, "https://cdn.example.com/"+upload.Key, *updated.Avatar)
	assert.Nil(t, updated.CoverImage)
}

func TestService_MediaErrors(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	alice, err := env.svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = env.svc.UploadURL(ctx, alice.ID, models.MediaKind("banner"))
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = env.svc.UpdateMedia(ctx, alice.ID, models.MediaAvatar, "")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	// Ключ чужого пользователя отклоняется
	_, err = env.svc.UpdateMedia(ctx, alice.ID, models.MediaAvatar, "users/someone-else/avatar/abc")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	// Ключ обложки нельзя использовать как аватар
	upload, err := env.svc.UploadURL(ctx, alice.ID, models.MediaCoverImage)
	require.NoError(t, err)
	_, err = env.svc.UpdateMedia(ctx, alice.ID, models.MediaAvatar, upload.Key)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestService_MediaDisabled(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil, nil)

	_, err := svc.UploadURL(context.Background(), "user-1", models.MediaAvatar)
	assert.ErrorIs(t, err, apperr.ErrInternal)

	_, err = svc.UpdateMedia(context.Background(), "user-1", models.MediaAvatar, "users/user-1/avatar/k")
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

func TestService_RegisterHashFailure(t *testing.T) {
	env := setupService(t)
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), env.store, failingHasher{}, nil)

	_, err := svc.Register(context.Background(), validInput())
	assert.ErrorIs(t, err, apperr.ErrInternal)
}
