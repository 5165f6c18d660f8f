package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// Opts configures [New].
type Opts struct {
	Secret     string
	BcryptCost int
	TokenTTL   time.Duration
	Movies     []models.Movie // nil uses [SeedMovies]
	Logger     *log.Logger
}

// New builds the reference API behind a [BasicRouter] with recovery and request logging.
func New(opts Opts) (*BasicRouter, *MemoryStore, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Secret == "" {
		return nil, nil, fmt.Errorf("%w: server jwt_secret is required", shared.ErrInvalidConfig)
	}

	movies := opts.Movies
	if movies == nil {
		seed, err := SeedMovies()
		if err != nil {
			return nil, nil, err
		}
		movies = seed
	}

	store := NewMemoryStore(movies, opts.BcryptCost)
	api := NewAPI(store, NewTokens(opts.Secret, opts.TokenTTL), opts.Logger)

	router := NewBasicRouter()
	router.Use(Recover(opts.Logger), Logging(opts.Logger))
	router.Handler(api)
	return router, store, nil
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down gracefully.
//
// ready, when non-nil, receives the bound address once the listener is open.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()

	logger.Info("serving movie API", "addr", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
