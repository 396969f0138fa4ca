package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret")

	token, err := issuer.Issue("alice", 120*time.Minute)
	require.NoError(t, err)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenIssuer_Claims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret")
	issuer.now = func() time.Time { return now }

	t.Run("explicit ttl", func(t *testing.T) {
		token, err := issuer.Issue("alice", 120*time.Minute)
		require.NoError(t, err)

		var claims jwt.RegisteredClaims
		_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, now.Add(120*time.Minute).Unix(), claims.ExpiresAt.Unix())
		assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("default ttl", func(t *testing.T) {
		token, err := issuer.Issue("alice", 0)
		require.NoError(t, err)

		var claims jwt.RegisteredClaims
		_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
		require.NoError(t, err)
		assert.Equal(t, now.Add(DefaultTokenTTL).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("unique ids", func(t *testing.T) {
		a, err := issuer.Issue("alice", time.Minute)
		require.NoError(t, err)
		b, err := issuer.Issue("alice", time.Minute)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	valid, err := issuer.Issue("alice", time.Minute)
	require.NoError(t, err)

	expired := func() string {
		old := NewTokenIssuer("secret")
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, err := old.Issue("alice", time.Minute)
		require.NoError(t, err)
		return tok
	}()

	otherSecret, err := NewTokenIssuer("other").Issue("alice", time.Minute)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"tampered":     valid[:len(valid)-2] + "xx",
		"expired":      expired,
		"wrong secret": otherSecret,
		"no subject":   noSubject,
		"no expiry":    noExpiry,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
