package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MoviesList prints the catalog with the user's favorites starred. A rejected token signs the user out.
//
// Online listings refresh the local cache; --offline reads it instead of fetching the catalog.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	var (
		movies   []models.Movie
		cachedAt time.Time
		err      error
	)
	if cmd.Bool("offline") {
		movies, cachedAt, err = r.cachedCatalog()
	} else {
		movies, err = r.fetchCatalog(ctx)
	}
	if err != nil {
		return err
	}

	ids, err := r.gateway.FavoriteIDs(ctx)
	if err != nil && tasks.IsSessionError(err) {
		return fmt.Errorf("failed to fetch favorites: %w", r.auth.Expire(err))
	}
	if err != nil {
		if !cmd.Bool("offline") {
			return fmt.Errorf("failed to fetch favorites: %w", err)
		}
		r.logger.Warn("favorites unavailable, listing without them", "error", err)
		ids = []string{}
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	favorites := tasks.Reconcile(movies, ids)
	r.writePlain("%s\n", formatter.MovieTable(movies, ids))
	r.writePlain("%d movies, %d favorites\n", len(movies), len(favorites))
	if !cachedAt.IsZero() {
		r.writePlain("Cached %s\n", cachedAt.Local().Format(time.DateTime))
	}
	return nil
}

func (r *Runner) fetchCatalog(ctx context.Context) ([]models.Movie, error) {
	movies, err := r.gateway.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movies: %w", r.auth.Expire(err))
	}

	if cache := r.movieCache(); cache != nil {
		if err := cache.ReplaceAll(movies); err != nil {
			r.logger.Warn("failed to cache catalog", "error", err)
		}
	}
	return movies, nil
}

func (r *Runner) cachedCatalog() ([]models.Movie, time.Time, error) {
	cache := r.movieCache()
	if cache == nil {
		return nil, time.Time{}, fmt.Errorf("%w: database unavailable", shared.ErrCacheEmpty)
	}

	n, err := cache.Count()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read catalog cache: %w", err)
	}
	if n == 0 {
		return nil, time.Time{}, fmt.Errorf("%w: run `flix movies list` online first", shared.ErrCacheEmpty)
	}

	movies, err := cache.List()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read catalog cache: %w", err)
	}
	cachedAt, err := cache.CachedAt()
	if err != nil {
		r.logger.Warn("failed to read cache time", "error", err)
	}
	return movies, cachedAt, nil
}

// lookupArg returns the named positional argument or an error naming it.
func lookupArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// MoviesShow prints one movie by title.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	title, err := lookupArg(cmd, "title")
	if err != nil {
		return err
	}

	movie, err := r.gateway.GetMovie(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to fetch movie %q: %w", title, r.auth.Expire(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, true)
	}
	return r.writePlain("%s", formatter.MovieDetail(*movie))
}

// MoviesDirector prints a director by name.
func (r *Runner) MoviesDirector(ctx context.Context, cmd *cli.Command) error {
	name, err := lookupArg(cmd, "name")
	if err != nil {
		return err
	}

	director, err := r.gateway.GetDirector(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to fetch director %q: %w", name, r.auth.Expire(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(director, true)
	}
	r.writePlainHeader(formatter.DirectorLifespan(*director))
	if director.Bio != "" {
		r.writePlain("%s\n", director.Bio)
	}
	return nil
}

// MoviesGenre prints a genre by name.
func (r *Runner) MoviesGenre(ctx context.Context, cmd *cli.Command) error {
	name, err := lookupArg(cmd, "name")
	if err != nil {
		return err
	}

	genre, err := r.gateway.GetGenre(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to fetch genre %q: %w", name, r.auth.Expire(err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(genre, true)
	}
	r.writePlainHeader(genre.Name)
	if genre.Description != "" {
		r.writePlain("%s\n", genre.Description)
	}
	return nil
}
