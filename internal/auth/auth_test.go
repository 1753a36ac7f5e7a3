package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edugen/edugen/internal/store"
	"github.com/edugen/edugen/internal/tutor"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func newSession(t *testing.T) *Session {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewSession(st.CredentialRepo(), nil)
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := signToken(t, jwt.MapClaims{"user_id": 42, "exp": exp.Unix()})

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", c.UserIDString())
	assert.True(t, c.ExpiresAt.Time.Equal(exp))
}

func TestParseClaims_Garbage(t *testing.T) {
	_, err := ParseClaims("not-a-token")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	live := signToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	dead := signToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
	noExp := signToken(t, jwt.MapClaims{"user_id": "u1"})

	assert.False(t, Expired(live, now, 0))
	assert.True(t, Expired(live, now, 2*time.Hour))
	assert.True(t, Expired(dead, now, 0))
	assert.False(t, Expired(noExp, now, 0))
	assert.True(t, Expired("garbage", now, 0))
}

func TestSession_SignInAndIdentity(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	assert.False(t, s.Authenticated(ctx))
	id, err := s.Identity(ctx)
	require.NoError(t, err)
	assert.Nil(t, id)

	access := signToken(t, jwt.MapClaims{"user_id": "u-7", "exp": time.Now().Add(time.Hour).Unix()})
	err = s.SignIn(ctx, &tutor.LoginResult{
		Access:  access,
		Refresh: "refresh-token",
		User:    &tutor.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Grade: "11"},
	})
	require.NoError(t, err)

	assert.True(t, s.Authenticated(ctx))
	id, err = s.Identity(ctx)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "u-7", id.UserID)
	assert.Equal(t, "Ada Lovelace", id.DisplayName())
	assert.False(t, id.ExpiresAt.IsZero())

	a, r, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, access, a)
	assert.Equal(t, "refresh-token", r)
}

func TestSession_UpdateAccessAndClear(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, &tutor.LoginResult{Access: "a1", Refresh: "r1"}))

	require.NoError(t, s.UpdateAccess(ctx, "a2"))
	a, r, _ := s.Tokens(ctx)
	assert.Equal(t, "a2", a)
	assert.Equal(t, "r1", r)

	require.NoError(t, s.Clear(ctx))
	a, r, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.Empty(t, r)
	assert.False(t, s.Authenticated(ctx))
}

func TestSession_SignInRequiresTokens(t *testing.T) {
	s := newSession(t)
	assert.Error(t, s.SignIn(context.Background(), &tutor.LoginResult{Access: "a"}))
	assert.Error(t, s.SignIn(context.Background(), nil))
}

func TestIdentity_DisplayNameFallsBackToEmail(t *testing.T) {
	assert.Equal(t, "x@example.com", Identity{Email: "x@example.com"}.DisplayName())
}
