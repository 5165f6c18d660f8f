package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flix/internal/models"
	"github.com/urfave/cli/v3"
)

// password returns the --password flag, prompting when it is empty.
func (r *Runner) password(cmd *cli.Command) (string, error) {
	if p := cmd.String("password"); p != "" {
		return p, nil
	}
	return r.prompt("Password: ")
}

// Register creates an account and signs in with it.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	password, err := r.password(cmd)
	if err != nil {
		return err
	}

	details := models.UserDetails{
		Username: cmd.String("username"),
		Password: password,
		Email:    cmd.String("email"),
		Birthday: cmd.String("birthday"),
	}

	r.logger.Info("registering", "username", details.Username)
	user, err := r.auth.SignUp(ctx, details)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	return r.writePlain("✓ Registered and signed in as %s\n", user.Username)
}

// Login signs in and stores the session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	password, err := r.password(cmd)
	if err != nil {
		return err
	}

	creds := models.Credentials{Username: cmd.String("username"), Password: password}
	r.logger.Info("signing in", "username", creds.Username)

	user, err := r.auth.SignIn(ctx, creds)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return r.writePlain("✓ Signed in as %s\n", user.Username)
}

// Logout clears the stored session.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	username, signedIn := r.session.Username()
	if err := r.auth.SignOut(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	if !signedIn {
		return r.writePlain("Not signed in\n")
	}
	return r.writePlain("✓ Signed out %s\n", username)
}

// Status reports the stored session and the configured backend.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("Backend: %s\n", r.config.API.BaseURL)
	r.writePlain("Session: %s\n", r.config.Session.Backend)

	if username, ok := r.session.Username(); ok {
		return r.writePlain("Signed in: ✓ %s\n", username)
	}
	return r.writePlain("Signed in: ✗ no session\n")
}
