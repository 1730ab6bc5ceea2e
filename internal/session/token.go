// ABOUTME: Bearer token inspection without signature verification
// ABOUTME: Lets restore skip tokens whose JWT exp claim has already passed

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether token is a JWT whose exp is before now.
// Opaque tokens and JWTs without exp are never considered expired; the
// server stays the authority on validity.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(now)
}
