package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// loadProfile checks for a session and loads a profile. The caller must Close it.
func (r *Runner) loadProfile(ctx context.Context) (*tasks.Profile, tasks.View, error) {
	if _, err := r.requireSession(); err != nil {
		return nil, tasks.View{}, err
	}

	p := r.newProfile(nil)
	v, err := p.Load(ctx)
	if err != nil {
		p.Close()
		return nil, tasks.View{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, v, nil
}

// FavoritesList prints the reconciled favorites in catalog order.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	p, v, err := r.loadProfile(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	if cmd.Bool("json") {
		return r.writeJSON(v.Favorites, cmd.Bool("pretty"))
	}

	if len(v.Favorites) == 0 {
		return r.writePlain("%s has no favorites yet. Add one with `flix favorites add <id>`.\n", v.User.Username)
	}
	r.writePlain("%s\n", formatter.MovieTable(v.Favorites, v.User.FavoriteMovies))
	return r.writePlain("%d favorites\n", len(v.Favorites))
}

// FavoritesAdd adds every id given as an argument.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	return r.bulkFavorites(ctx, cmd, true)
}

// FavoritesRemove removes every id given as an argument.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	return r.bulkFavorites(ctx, cmd, false)
}

func (r *Runner) bulkFavorites(ctx context.Context, cmd *cli.Command, add bool) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one movie id", shared.ErrMissingArgument)
	}

	p, _, err := r.loadProfile(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	prog := make(chan tasks.ProgressUpdate, len(ids))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := p.BulkFavorites(ctx, prog, ids, tasks.BulkOpts{Add: add, NumWorkers: int(cmd.Int("workers"))})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	verb := "Removed"
	if add {
		verb = "Added"
	}
	for _, res := range result.Results {
		if res.Err != nil {
			r.writePlain("✗ %s: %s\n", res.ID, describe(res.Err))
			continue
		}
		r.writePlain("✓ %s %s\n", verb, res.ID)
	}
	r.writePlainln("%d/%d succeeded, %d favorites", result.Succeeded, result.Total, len(result.View.Favorites))

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d favorite changes failed", result.Failed, result.Total)
	}
	return nil
}

// FavoritesExport writes the favorites to a file.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	p, v, err := r.loadProfile(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	export := formatter.NewFavoritesExport(v.User.Username, v.Favorites)
	path, err := formatter.WriteExport(export, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("favorites exported", "path", path, "count", len(v.Favorites))
	return r.writePlain("✓ Exported %d favorites to %s\n", len(v.Favorites), path)
}
