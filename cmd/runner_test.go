package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/flix/internal/server"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
	tu "github.com/desertthunder/flix/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.session == nil || runner.gateway == nil || runner.auth == nil {
				t.Error("expected session, gateway and authenticator to be built")
			}
			if runner.httpClient.Timeout != runner.config.API.Timeout() {
				t.Errorf("expected client timeout %v, got %v", runner.config.API.Timeout(), runner.httpClient.Timeout)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("prompt", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Input: strings.NewReader("  yes \n")})

		answer, err := runner.prompt("Sure? ")
		if err != nil || answer != "yes" {
			t.Errorf("prompt = %q, %v", answer, err)
		}
		if output.String() != "Sure? " {
			t.Errorf("expected label written, got %q", output.String())
		}

		if _, err := runner.prompt("Again? "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument at EOF, got %v", err)
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"register", "login", "logout", "status", "movies", "favorites", "profile", "setup", "tui", "serve"} {
			if !names[want] {
				t.Errorf("expected %s command", want)
			}
		}
	})
}

func TestOpenSession(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Session.Backend = "memory"

		st, db, err := openSession(config)
		if err != nil || st == nil || db != nil {
			t.Fatalf("openSession = %v, %v, %v", st, db, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Session.Backend = "file"
		config.Session.Path = filepath.Join(t.TempDir(), "session.json")

		st, _, err := openSession(config)
		if err != nil {
			t.Fatal(err)
		}
		if err := st.SetSession("abc123", "alice"); err != nil {
			t.Fatal(err)
		}
		tu.AssertFileExists(t, config.Session.Path)
	})

	t.Run("sqlite", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Session.Backend = "sqlite"
		config.Database = shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1}

		st, db, err := openSession(config)
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		if err := st.SetSession("abc123", "alice"); err != nil {
			t.Fatalf("SetSession failed: %v", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Session.Backend = "redis"

		if _, _, err := openSession(config); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not signed in", errNotSignedIn, errNotSignedIn.Error()},
		{"auth failure", &services.AuthError{Message: services.LoginFailedMessage}, services.LoginFailedMessage},
		{"expired session", shared.ErrInvalidSession, services.SessionExpiredMessage},
		{"network", &services.NetworkError{Op: "list movies", Err: io.ErrUnexpectedEOF}, services.GenericMessage},
		{"local", errors.New("missing required argument: title"), "missing required argument: title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describe(tt.err); got != tt.want {
				t.Errorf("describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

// cliHarness runs flix commands against an in-memory backend.
type cliHarness struct {
	t      *testing.T
	runner *Runner
	output *bytes.Buffer
}

func newCLIHarness(t *testing.T, input string) *cliHarness {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	router, _, err := server.New(server.Opts{Secret: "cli", BcryptCost: bcrypt.MinCost, Movies: tu.Catalog(), Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	config := shared.DefaultConfig()
	config.API.BaseURL = srv.URL
	config.API.RateLimit = -1
	config.Session.Backend = "memory"
	config.Database = shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		HTTPClient: srv.Client(),
		Logger:     logger,
		Output:     output,
		Input:      strings.NewReader(input),
	})
	t.Cleanup(func() { runner.Close() })

	return &cliHarness{t: t, runner: runner, output: output}
}

// run executes args and returns the output it produced.
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()

	h.output.Reset()
	err := newApp(h.runner).Run(context.Background(), append([]string{"flix"}, args...))
	return h.output.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()

	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("flix %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestCommands(t *testing.T) {
	t.Run("signed out commands fail fast", func(t *testing.T) {
		h := newCLIHarness(t, "")

		if _, err := h.run("favorites", "list"); !errors.Is(err, errNotSignedIn) {
			t.Errorf("expected errNotSignedIn, got %v", err)
		}
		if out := h.mustRun("status"); !strings.Contains(out, "no session") {
			t.Errorf("unexpected status %q", out)
		}
	})

	t.Run("register, favorites and export", func(t *testing.T) {
		h := newCLIHarness(t, "")

		out := h.mustRun("register", "--username", "alice", "--password", "secret", "--email", "alice@example.com")
		if !strings.Contains(out, "signed in as alice") {
			t.Errorf("unexpected register output %q", out)
		}

		out = h.mustRun("favorites", "add", "3", "1", "3")
		if !strings.Contains(out, "2/2 succeeded, 2 favorites") {
			t.Errorf("unexpected add output %q", out)
		}

		out = h.mustRun("favorites", "list")
		if !strings.Contains(out, "Spirited Away") || !strings.Contains(out, "2 favorites") || strings.Contains(out, "Inception") {
			t.Errorf("unexpected favorites %q", out)
		}

		out = h.mustRun("movies", "list")
		if !strings.Contains(out, "3 movies, 2 favorites") {
			t.Errorf("unexpected movies output %q", out)
		}

		out = h.mustRun("movies", "list", "--offline")
		if !strings.Contains(out, "Inception") || !strings.Contains(out, "Cached") {
			t.Errorf("unexpected offline output %q", out)
		}

		path := filepath.Join(t.TempDir(), "fav.csv")
		h.mustRun("favorites", "export", "--format", "csv", "--output", path)
		if csv := tu.MustReadFile(t, path); !strings.Contains(csv, "Silence of the Lambs") {
			t.Errorf("unexpected export %q", csv)
		}

		out = h.mustRun("favorites", "remove", "1")
		if !strings.Contains(out, "✓ Removed 1") {
			t.Errorf("unexpected remove output %q", out)
		}
	})

	t.Run("unknown favorite reports per id", func(t *testing.T) {
		h := newCLIHarness(t, "")
		h.mustRun("register", "--username", "alice", "--password", "secret")

		out, err := h.run("favorites", "add", "2", "404")
		if err == nil {
			t.Fatal("expected an error for the failed id")
		}
		if !strings.Contains(out, "✓ Added 2") || !strings.Contains(out, "✗ 404") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("offline without a cache", func(t *testing.T) {
		h := newCLIHarness(t, "")
		h.mustRun("register", "--username", "alice", "--password", "secret")

		if _, err := h.run("movies", "list", "--offline"); !errors.Is(err, shared.ErrCacheEmpty) {
			t.Errorf("expected ErrCacheEmpty, got %v", err)
		}
	})

	t.Run("lookups", func(t *testing.T) {
		h := newCLIHarness(t, "")
		h.mustRun("register", "--username", "alice", "--password", "secret")

		if out := h.mustRun("movies", "show", "Inception"); !strings.Contains(out, "Christopher Nolan") {
			t.Errorf("unexpected movie %q", out)
		}
		if out := h.mustRun("movies", "director", "Hayao Miyazaki"); !strings.Contains(out, "Hayao Miyazaki") {
			t.Errorf("unexpected director %q", out)
		}
		if _, err := h.run("movies", "show"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejected token signs out", func(t *testing.T) {
		h := newCLIHarness(t, "")
		h.mustRun("register", "--username", "alice", "--password", "secret")

		if _, err := h.run("movies", "show", "Nope"); err == nil {
			t.Fatal("expected unknown title to fail")
		}
		if !h.runner.session.Authenticated() {
			t.Fatal("a missing movie should keep the session")
		}

		for _, args := range [][]string{{"movies", "list"}, {"movies", "genre", "Animation"}} {
			if err := h.runner.session.SetSession("not-a-jwt", "alice"); err != nil {
				t.Fatal(err)
			}

			_, err := h.run(args...)
			if describe(err) != services.GenericMessage {
				t.Errorf("flix %s: unexpected message %q", strings.Join(args, " "), describe(err))
			}
			if h.runner.session.Authenticated() {
				t.Errorf("flix %s: expected the session to be cleared", strings.Join(args, " "))
			}
		}

		if _, err := h.run("movies", "list"); !errors.Is(err, errNotSignedIn) {
			t.Errorf("expected errNotSignedIn after sign out, got %v", err)
		}
	})

	t.Run("login failure keeps the session empty", func(t *testing.T) {
		h := newCLIHarness(t, "")
		h.mustRun("register", "--username", "alice", "--password", "secret")
		h.mustRun("logout")

		_, err := h.run("login", "--username", "alice", "--password", "wrong")
		if describe(err) != services.LoginFailedMessage {
			t.Errorf("expected login failed message, got %q", describe(err))
		}
		if h.runner.session.Authenticated() {
			t.Error("expected no session after failed login")
		}

		if out := h.mustRun("login", "--username", "alice", "--password", "secret"); !strings.Contains(out, "Signed in as alice") {
			t.Errorf("unexpected login output %q", out)
		}
	})

	t.Run("profile edit and delete", func(t *testing.T) {
		h := newCLIHarness(t, "n\n")
		h.mustRun("register", "--username", "alice", "--password", "secret")

		h.mustRun("profile", "edit", "--username", "alicia")
		if out := h.mustRun("status"); !strings.Contains(out, "alicia") {
			t.Errorf("expected renamed session, got %q", out)
		}

		if out := h.mustRun("profile", "delete"); !strings.Contains(out, "Profile kept") {
			t.Errorf("expected decline, got %q", out)
		}
		if !h.runner.session.Authenticated() {
			t.Fatal("expected session kept after decline")
		}

		if out := h.mustRun("profile", "delete", "--yes"); !strings.Contains(out, "Profile deleted") {
			t.Errorf("unexpected delete output %q", out)
		}
		if h.runner.session.Authenticated() {
			t.Error("expected session cleared")
		}
	})

	t.Run("export defaults to the working directory", func(t *testing.T) {
		h := newCLIHarness(t, "")
		h.mustRun("register", "--username", "alice", "--password", "secret")
		h.mustRun("favorites", "add", "2")

		wd := tu.MustGetwd(t)
		dir := t.TempDir()
		tu.MustChdir(t, dir)
		t.Cleanup(func() { tu.MustChdir(t, wd) })

		h.mustRun("favorites", "export", "--format", "markdown")
		tu.AssertFileExists(t, filepath.Join(dir, "alice_favorites.md"))

		h.mustRun("favorites", "export", "--format", "txt", "--output", filepath.Join("exports", "nested", "fav.txt"))
		tu.AssertDirExists(t, filepath.Join(dir, "exports", "nested"))
		if txt := tu.MustReadFile(t, filepath.Join(dir, "exports", "nested", "fav.txt")); !strings.Contains(txt, "1. Inception - Christopher Nolan") {
			t.Errorf("unexpected text export %q", txt)
		}

		if _, err := h.run("favorites", "export", "--format", "pdf"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("setup config", func(t *testing.T) {
		h := newCLIHarness(t, "")
		path := filepath.Join(t.TempDir(), "config.toml")

		h.mustRun("setup", "config", "--config", path)
		tu.AssertFileExists(t, path)

		if _, err := h.run("setup", "config", "--config", path); err == nil {
			t.Error("expected an error for an existing config")
		}
	})
}
