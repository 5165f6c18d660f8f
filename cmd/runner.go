package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/repositories"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	session    *session.Store
	gateway    *services.Gateway
	auth       *tasks.Authenticator
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Session    *session.Store
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}
	if opts.Session == nil {
		// A memory backend never fails to load.
		opts.Session, _ = session.NewStore(session.NewMemoryBackend())
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		session:    opts.Session,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
	}
	r.gateway = services.NewGateway(services.GatewayOpts{
		BaseURL:       opts.Config.API.BaseURL,
		HTTPClient:    opts.HTTPClient,
		Session:       opts.Session,
		Logger:        opts.Logger,
		RateLimit:     opts.Config.API.RateLimit,
		RetryAttempts: opts.Config.API.RetryAttempts,
		RetryDelay:    opts.Config.API.RetryDelay(),
	})
	r.auth = tasks.NewAuthenticator(r.gateway, r.session, opts.Logger)
	return r
}

// SetLogger replaces the logger used by the runner and its gateway.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.gateway = services.NewGateway(services.GatewayOpts{
		BaseURL:       r.config.API.BaseURL,
		HTTPClient:    r.httpClient,
		Session:       r.session,
		Logger:        logger,
		RateLimit:     r.config.API.RateLimit,
		RetryAttempts: r.config.API.RetryAttempts,
		RetryDelay:    r.config.API.RetryDelay(),
	})
	r.auth = tasks.NewAuthenticator(r.gateway, r.session, logger)
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) []*cli.Command){
		authCommands, moviesCommands, favoritesCommands, profileCommands, setupCommands, tuiCommands, serveCommands,
	} {
		commands = append(commands, fn(r)...)
	}

	return commands
}

// database opens the configured SQLite database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// movieCache returns the catalog cache, or nil when the database cannot be opened.
func (r *Runner) movieCache() *repositories.MovieRepository {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("catalog cache unavailable", "error", err)
		return nil
	}
	return repositories.NewMovieRepository(db)
}

// newProfile builds a profile over the runner's gateway. The caller must Close it.
func (r *Runner) newProfile(progress chan<- tasks.ProgressUpdate) *tasks.Profile {
	opts := tasks.ProfileOpts{
		Gateway:  r.gateway,
		Session:  r.session,
		Logger:   r.logger,
		Progress: progress,
	}
	if cache := r.movieCache(); cache != nil {
		opts.Cache = cache
	}
	return tasks.NewProfile(opts)
}

var errNotSignedIn = fmt.Errorf("%w: not signed in, run `flix login` first", shared.ErrInvalidSession)

// requireSession fails fast when nobody is signed in.
func (r *Runner) requireSession() (string, error) {
	username, ok := r.session.Username()
	if !ok {
		return "", errNotSignedIn
	}
	return username, nil
}

// prompt writes label and reads one trimmed line of input.
func (r *Runner) prompt(label string) (string, error) {
	if err := r.writePlain("%s", label); err != nil {
		return "", err
	}
	line, err := r.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: no answer to %q", shared.ErrMissingArgument, strings.TrimSpace(label))
	}
	return strings.TrimSpace(line), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// openSession builds the session store selected by cfg.Session.Backend.
//
// The sqlite backend opens the configured database, which is returned so the caller can share and close it.
func openSession(cfg *shared.Config) (*session.Store, *sql.DB, error) {
	switch cfg.Session.Backend {
	case "memory":
		st, err := session.NewStore(session.NewMemoryBackend())
		return st, nil, err
	case "sqlite":
		db, err := shared.OpenDatabase(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		st, err := session.NewStore(repositories.NewSessionRepository(db))
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return st, db, nil
	case "file", "":
		st, err := session.NewStore(session.NewFileBackend(cfg.Session.Path))
		return st, nil, err
	default:
		return nil, nil, fmt.Errorf("%w: unknown session backend %q", shared.ErrInvalidConfig, cfg.Session.Backend)
	}
}
