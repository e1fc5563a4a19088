package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of a bearer token the storefront reads. The signature is never
// checked here; the backend remains the authority.
type TokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// InspectToken decodes a JWT without verifying it. ok is false for opaque tokens.
func InspectToken(raw string) (claims *TokenClaims, ok bool) {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if strings.Count(token, ".") != 2 {
		return nil, false
	}
	claims = &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// TokenUsable reports whether raw is non-empty and, when it is a JWT carrying exp, not yet
// expired at now. Opaque tokens are usable until the backend rejects them.
func TokenUsable(raw string, now time.Time) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	claims, ok := InspectToken(raw)
	if !ok || claims.ExpiresAt == nil {
		return true
	}
	return now.Before(claims.ExpiresAt.Time)
}
