package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ProfileShow prints the user record and its favorites.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	p, v, err := r.loadProfile(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	if cmd.Bool("json") {
		return r.writeJSON(v.User, true)
	}

	r.writePlainHeader(v.User.Username)
	if v.User.Email != "" {
		r.writePlain("Email:     %s\n", v.User.Email)
	}
	if v.User.Birthday != "" {
		r.writePlain("Birthday:  %s\n", v.User.Birthday)
	}
	r.writePlain("Favorites: %d\n", len(v.Favorites))
	for i, m := range v.Favorites {
		r.writePlain("  %d. %s (%s)\n", i+1, m.Title, m.Genre.Name)
	}
	return nil
}

// ProfileEdit applies the given fields to the profile.
func (r *Runner) ProfileEdit(ctx context.Context, cmd *cli.Command) error {
	details := models.UserDetails{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
		Email:    cmd.String("email"),
		Birthday: cmd.String("birthday"),
	}
	if details == (models.UserDetails{}) {
		return r.writePlain("Nothing to change. Pass --username, --password, --email or --birthday.\n")
	}

	p, _, err := r.loadProfile(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	v, err := p.Update(ctx, details)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return r.writePlain("✓ Profile updated for %s\n", v.User.Username)
}

// ProfileDelete deletes the account after confirmation.
func (r *Runner) ProfileDelete(ctx context.Context, cmd *cli.Command) error {
	p, _, err := r.loadProfile(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	confirm := tasks.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		if cmd.Bool("yes") {
			return true, nil
		}
		answer, err := r.prompt(prompt + " [y/N] ")
		if err != nil {
			return false, err
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes", nil
	})

	deleted, err := p.Delete(ctx, confirm)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if !deleted {
		return r.writePlain("Profile kept\n")
	}
	return r.writePlain("✓ Profile deleted and signed out\n")
}
