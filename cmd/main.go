package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("FLIX_CONFIG")
	explicit := configPath != ""
	if !explicit {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err != nil && explicit {
		logger.Fatal("FLIX_CONFIG points at a missing file", "path", configPath, "error", fmt.Errorf("%w: %v", shared.ErrMissingConfig, err))
	} else if err == nil {
		loadedConfig, err := shared.LoadConfig(configPath)
		if err != nil {
			logger.Fatal("failed to load config", "path", configPath, "error", err)
		}
		config = loadedConfig
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	store, db, err := openSession(config)
	if err != nil {
		logger.Fatal("failed to open session", "backend", config.Session.Backend, "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Session:    store,
		DB:         db,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = newApp(runner).Run(ctx, os.Args)
	stop()

	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close database", "error", cerr)
	}
	if err != nil {
		logger.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

// describe returns the message shown to the user for err. Failures from the backend
// get the single user-facing message; local failures are printed as is.
func describe(err error) string {
	var (
		apiErr  *services.APIError
		authErr *services.AuthError
		netErr  *services.NetworkError
	)
	switch {
	case errors.Is(err, errNotSignedIn):
		return err.Error()
	case errors.As(err, &authErr), errors.As(err, &apiErr), errors.As(err, &netErr),
		errors.Is(err, shared.ErrInvalidSession), errors.Is(err, shared.ErrFavoriteBusy):
		return services.UserMessage(err)
	default:
		return err.Error()
	}
}
