package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/flix/internal/server"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the in-memory reference backend until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	router, _, err := server.New(server.Opts{
		Secret:     r.config.Server.JWTSecret,
		BcryptCost: r.config.Server.BcryptCost,
		Logger:     r.logger,
	})
	if err != nil {
		return err
	}

	ready := make(chan string, 1)
	go func() {
		if bound, ok := <-ready; ok {
			r.writePlain("✓ Serving the movie backend on http://%s (ctrl+c to stop)\n", bound)
		}
	}()

	err = server.ListenAndServe(ctx, addr, router, r.logger, ready)
	close(ready)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	return nil
}
