package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/edugen/edugen/internal/logger"
	"github.com/edugen/edugen/internal/tutor"
)

// ErrMissingCredentials is returned when email or password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// Backend is the part of the tutoring client that issues and revokes
// tokens. *tutor.Client implements it.
type Backend interface {
	Login(ctx context.Context, email, password string) (*tutor.LoginResult, error)
	Logout(ctx context.Context) error
}

// Authenticator signs the learner in and out against a Backend and keeps
// the Session in step.
type Authenticator struct {
	backend Backend
	session *Session
	log     *logger.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(backend Backend, session *Session, log *logger.Logger) *Authenticator {
	if log == nil {
		log = logger.Nop()
	}
	return &Authenticator{backend: backend, session: session, log: log.With("component", "auth")}
}

// Login exchanges email and password for tokens and persists them.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	res, err := a.backend.Login(ctx, email, password)
	if err != nil {
		a.log.Warn("login failed", "email", email, "error", err)
		return nil, err
	}
	if err := a.session.SignIn(ctx, res); err != nil {
		return nil, err
	}
	id, err := a.session.Identity(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return &Identity{Email: email}, nil
	}
	return id, nil
}

// Logout revokes the refresh token and clears local credentials. Local
// credentials are cleared even when the server call fails.
func (a *Authenticator) Logout(ctx context.Context) error {
	err := a.backend.Logout(ctx)
	if clearErr := a.session.Clear(ctx); clearErr != nil {
		return clearErr
	}
	if err != nil {
		a.log.Warn("logout request failed", "error", err)
	}
	return err
}

// Current returns the signed-in identity or nil.
func (a *Authenticator) Current(ctx context.Context) *Identity {
	if !a.session.Authenticated(ctx) {
		return nil
	}
	id, err := a.session.Identity(ctx)
	if err != nil {
		a.log.Debug("read identity", "error", err)
		return nil
	}
	return id
}

// LoginMessage turns a login failure into text for the learner.
func LoginMessage(err error) string {
	if errors.Is(err, ErrMissingCredentials) {
		return "Please enter your email and password."
	}
	var api *tutor.APIError
	if errors.As(err, &api) {
		if api.Message != "" {
			return api.Message
		}
		if api.Status == 400 || api.Status == 401 {
			return "Invalid email or password."
		}
	}
	var down *tutor.ErrUnavailable
	if errors.As(err, &down) {
		return "Can't reach the server. Check your connection and try again."
	}
	return "Sign in failed. Please try again."
}
