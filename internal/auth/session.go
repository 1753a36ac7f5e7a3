// Package auth keeps the learner's sign-in state: the token pair and the
// identity shown in the header. Nothing about assessment progress is
// persisted.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/edugen/edugen/internal/logger"
	"github.com/edugen/edugen/internal/store"
	"github.com/edugen/edugen/internal/tutor"
)

// Identity is who is signed in.
type Identity struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Grade     string
	ExpiresAt time.Time
}

// DisplayName returns "First Last", falling back to the email.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name != "" {
		return name
	}
	return i.Email
}

// Session implements tutor.Credentials on a CredentialRepo and caches the
// loaded row in memory.
type Session struct {
	repo store.CredentialRepo
	log  *logger.Logger

	mu     sync.Mutex
	loaded bool
	creds  *store.Credentials
}

var _ tutor.Credentials = (*Session)(nil)

// NewSession creates a Session backed by repo.
func NewSession(repo store.CredentialRepo, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{repo: repo, log: log.With("component", "auth")}
}

// Tokens returns the stored access and refresh tokens.
func (s *Session) Tokens(ctx context.Context) (string, string, error) {
	c, err := s.load(ctx)
	if err != nil || c == nil {
		return "", "", err
	}
	return c.AccessToken, c.RefreshToken, nil
}

// UpdateAccess stores a refreshed access token.
func (s *Session) UpdateAccess(ctx context.Context, access string) error {
	if err := s.repo.UpdateAccess(ctx, access); err != nil {
		return err
	}
	s.mu.Lock()
	if s.creds != nil {
		s.creds.AccessToken = access
	}
	s.mu.Unlock()
	s.log.Debug("access token refreshed")
	return nil
}

// Clear signs out locally.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.creds = nil
	s.loaded = true
	s.mu.Unlock()
	s.log.Info("credentials cleared")
	return nil
}

// SignIn persists a successful login.
func (s *Session) SignIn(ctx context.Context, res *tutor.LoginResult) error {
	if res == nil || res.Access == "" || res.Refresh == "" {
		return fmt.Errorf("sign in: missing tokens")
	}
	c := store.Credentials{AccessToken: res.Access, RefreshToken: res.Refresh}
	if res.User != nil {
		c.Email = res.User.Email
		c.FirstName = res.User.FirstName
		c.LastName = res.User.LastName
		c.Grade = res.User.Grade
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}

	s.mu.Lock()
	s.creds = &c
	s.loaded = true
	s.mu.Unlock()

	id, _ := s.Identity(ctx)
	if id != nil {
		s.log.Info("signed in", "user_id", id.UserID)
	}
	return nil
}

// Authenticated reports whether a refresh token is stored.
func (s *Session) Authenticated(ctx context.Context) bool {
	_, refresh, err := s.Tokens(ctx)
	return err == nil && refresh != ""
}

// Identity returns the signed-in identity, or nil when signed out. The
// user id and expiry come from the access token's claims.
func (s *Session) Identity(ctx context.Context) (*Identity, error) {
	c, err := s.load(ctx)
	if err != nil || c == nil {
		return nil, err
	}
	id := &Identity{
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Grade:     c.Grade,
	}
	if claims, err := ParseClaims(c.AccessToken); err == nil {
		id.UserID = claims.UserIDString()
		if id.Email == "" {
			id.Email = claims.Email
		}
		if claims.ExpiresAt != nil {
			id.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return id, nil
}

func (s *Session) load(ctx context.Context) (*store.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		if s.creds == nil {
			return nil, nil
		}
		c := *s.creds
		return &c, nil
	}
	c, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	s.creds = c
	s.loaded = true
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}
