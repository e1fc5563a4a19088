package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func TestInspectTokenReadsClaimsWithoutKey(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	raw := signToken(t, TokenClaims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	claims, ok := InspectToken("Bearer " + raw)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)

	_, ok = InspectToken("opaque-session-token")
	assert.False(t, ok)
	_, ok = InspectToken("a.b.c")
	assert.False(t, ok)
}

func TestTokenUsable(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	fresh := signToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))})
	stale := signToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))})
	noExpiry := signToken(t, jwt.RegisteredClaims{Subject: "user-1"})

	assert.True(t, TokenUsable(fresh, now))
	assert.False(t, TokenUsable(stale, now))
	assert.True(t, TokenUsable(noExpiry, now))
	assert.True(t, TokenUsable("opaque-token", now))
	assert.False(t, TokenUsable("  ", now))
}
