package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
)

// AuthGateway is the subset of the movie API used to sign in and sign up.
type AuthGateway interface {
	Register(ctx context.Context, details models.UserDetails) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
}

// Authenticator runs the sign-in, sign-up and sign-out flows against a [session.Store].
type Authenticator struct {
	gateway AuthGateway
	session *session.Store
	logger  *log.Logger
}

// NewAuthenticator creates an [Authenticator].
func NewAuthenticator(gateway AuthGateway, store *session.Store, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Authenticator{gateway: gateway, session: store, logger: shared.WithLogger(logger, "component", "auth")}
}

// SignIn logs in and stores the returned token with the user's name. A failure leaves the session untouched.
func (a *Authenticator) SignIn(ctx context.Context, creds models.Credentials) (*models.User, error) {
	res, err := a.gateway.Login(ctx, creds)
	if err != nil {
		a.logger.Warn("sign in failed", "username", creds.Username, "error", err)
		return nil, err
	}

	username := res.User.Username
	if username == "" {
		username = creds.Username
	}

	if err := a.session.SetSession(res.Token, username); err != nil {
		return nil, fmt.Errorf("%w: login response could not start a session: %v", shared.ErrAuthFailed, err)
	}

	a.logger.Info("signed in", "username", username)
	user := res.User
	user.Username = username
	return &user, nil
}

// SignUp registers details and then signs in with the same username and password.
func (a *Authenticator) SignUp(ctx context.Context, details models.UserDetails) (*models.User, error) {
	if details.Username == "" || details.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrInvalidInput)
	}

	if _, err := a.gateway.Register(ctx, details); err != nil {
		a.logger.Warn("sign up failed", "username", details.Username, "error", err)
		return nil, err
	}
	a.logger.Info("registered", "username", details.Username)

	return a.SignIn(ctx, models.Credentials{Username: details.Username, Password: details.Password})
}

// Expire clears the session when err shows it was rejected, and returns err unchanged.
func (a *Authenticator) Expire(err error) error {
	if err == nil || !IsSessionError(err) {
		return err
	}
	if cerr := a.session.Clear(); cerr != nil {
		a.logger.Error("failed to clear session", "error", cerr)
		return err
	}
	a.logger.Warn("session rejected, signed out", "error", err)
	return err
}

// SignOut clears the session.
func (a *Authenticator) SignOut() error {
	if err := a.session.Clear(); err != nil {
		return err
	}
	a.logger.Info("signed out")
	return nil
}
