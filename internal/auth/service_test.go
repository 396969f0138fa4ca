package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sevigo/code-review-api/internal/storage"
)

func newTestService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := NewService(
		store,
		NewBcryptHasher(bcrypt.MinCost),
		NewTokenIssuer("test-secret"),
		120*time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, store
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	in := RegisterInput{Name: "Alice", Username: "alice", Password: "s3cret", GitHubToken: "ghp_x"}
	require.NoError(t, svc.Register(ctx, in))

	user, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "ghp_x", user.GitHubToken)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	err = svc.Register(ctx, in)
	require.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, "Username already taken", err.Error())
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	for name, in := range map[string]RegisterInput{
		"missing username": {Password: "pw"},
		"blank username":   {Username: "  ", Password: "pw"},
		"missing password": {Username: "bob"},
	} {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, svc.Register(context.Background(), in), ErrMissingFields)
		})
	}
}

func TestService_RegisterPasswordTooLong(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	err := svc.Register(ctx, RegisterInput{Username: "bob", Password: strings.Repeat("p", 73)})
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = store.GetUserByUsername(ctx, "bob")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, svc.Register(ctx, RegisterInput{Username: "bob", Password: strings.Repeat("p", 72)}))
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	require.NoError(t, svc.Register(ctx, RegisterInput{Name: "Alice", Username: "alice", Password: "s3cret"}))

	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(120*time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	require.NoError(t, svc.Register(ctx, RegisterInput{Name: "Alice", Username: "alice", Password: "s3cret"}))

	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost, err := svc.tokens.Issue("ghost", time.Minute)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw")
	require.NoError(t, err)

	ok, err := h.Compare(hash, "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "pw")
	assert.Error(t, err)

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}
