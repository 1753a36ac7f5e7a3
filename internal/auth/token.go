package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access-token claims the client reads. Tokens are
// verified by the backend; the client only inspects them.
type Claims struct {
	UserID any    `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims decodes token without verifying its signature.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Expired reports whether token expires at or before now plus leeway.
// Unparseable tokens count as expired; tokens without exp never expire.
func Expired(token string, now time.Time, leeway time.Duration) bool {
	claims, err := ParseClaims(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Add(leeway).Before(claims.ExpiresAt.Time)
}

// UserIDString renders the user_id claim, which backends encode as a
// number or a string.
func (c *Claims) UserIDString() string {
	switch v := c.UserID.(type) {
	case nil:
		return c.Subject
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}
