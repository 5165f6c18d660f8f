package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// API serves the movie backend over a [MemoryStore]. It implements [Handler].
type API struct {
	store  *MemoryStore
	tokens *Tokens
	logger *log.Logger
	mux    *http.ServeMux
	routes []string
}

// NewAPI creates the reference API.
func NewAPI(store *MemoryStore, tokens *Tokens, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	a := &API{store: store, tokens: tokens, logger: shared.WithLogger(logger, "component", "api"), mux: http.NewServeMux()}
	auth := RequireBearer(tokens)

	a.route("POST /users", http.HandlerFunc(a.register))
	a.route("POST /login", http.HandlerFunc(a.login))
	a.route("GET /movies", auth(http.HandlerFunc(a.listMovies)))
	a.route("GET /movies/{title}", auth(http.HandlerFunc(a.getMovie)))
	a.route("GET /movies/directors/{name}", auth(http.HandlerFunc(a.getDirector)))
	a.route("GET /movies/genres/{name}", auth(http.HandlerFunc(a.getGenre)))
	a.route("GET /users/{username}", auth(http.HandlerFunc(a.getUser)))
	a.route("PUT /users/{username}", auth(http.HandlerFunc(a.editUser)))
	a.route("DELETE /users/{username}", auth(http.HandlerFunc(a.deleteUser)))
	a.route("POST /users/{username}/movies/{id}", auth(http.HandlerFunc(a.addFavorite)))
	a.route("DELETE /users/{username}/movies/{id}", auth(http.HandlerFunc(a.removeFavorite)))
	return a
}

func (a *API) route(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
	a.routes = append(a.routes, pattern)
}

// Routes returns every pattern the API serves.
func (a *API) Routes() []string {
	return a.routes
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps store errors to statuses, answering in plain text like the production backend.
func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrDuplicateUser):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrAuthFailed):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrUserNotFound), errors.Is(err, shared.ErrMovieNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func decode[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	return v, nil
}

// owner resolves the token subject and checks it owns the {username} in the path.
func (a *API) owner(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	sub, _ := SubjectFrom(r.Context())

	user, err := a.store.UserByID(sub)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return models.User{}, false
	}
	if user.Username != r.PathValue("username") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return models.User{}, false
	}
	return user, true
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	details, err := decode[models.UserDetails](r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	user, err := a.store.CreateUser(details)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("user registered", "username", user.Username)
	a.writeJSON(w, http.StatusCreated, user)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	creds, err := decode[models.Credentials](r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	user, err := a.store.Authenticate(creds.Username, creds.Password)
	if err != nil {
		http.Error(w, "Incorrect username or password.", http.StatusBadRequest)
		return
	}

	token, err := a.tokens.Issue(user.ID, user.Username)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, models.LoginResult{User: user, Token: token})
}

func (a *API) listMovies(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.store.Movies())
}

func (a *API) getMovie(w http.ResponseWriter, r *http.Request) {
	m, err := a.store.MovieByTitle(r.PathValue("title"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, m)
}

func (a *API) getDirector(w http.ResponseWriter, r *http.Request) {
	d, err := a.store.Director(r.PathValue("name"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, d)
}

func (a *API) getGenre(w http.ResponseWriter, r *http.Request) {
	g, err := a.store.Genre(r.PathValue("name"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, g)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, ok := a.owner(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, user)
}

func (a *API) editUser(w http.ResponseWriter, r *http.Request) {
	user, ok := a.owner(w, r)
	if !ok {
		return
	}

	details, err := decode[models.UserDetails](r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	updated, err := a.store.UpdateUser(user.ID, details)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := a.owner(w, r)
	if !ok {
		return
	}

	if _, err := a.store.DeleteUser(user.ID); err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("user deleted", "username", user.Username)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s was deleted.", user.Username)
}

func (a *API) addFavorite(w http.ResponseWriter, r *http.Request) {
	a.favorite(w, r, true)
}

func (a *API) removeFavorite(w http.ResponseWriter, r *http.Request) {
	a.favorite(w, r, false)
}

func (a *API) favorite(w http.ResponseWriter, r *http.Request, add bool) {
	user, ok := a.owner(w, r)
	if !ok {
		return
	}

	var (
		updated models.User
		err     error
	)
	if add {
		updated, err = a.store.AddFavorite(user.ID, r.PathValue("id"))
	} else {
		updated, err = a.store.RemoveFavorite(user.ID, r.PathValue("id"))
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, updated)
}
