package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

//go:embed seed/movies.json
var seedMovies []byte

// SeedMovies returns the bundled catalog.
func SeedMovies() ([]models.Movie, error) {
	var movies []models.Movie
	if err := json.Unmarshal(seedMovies, &movies); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalog: %w", err)
	}
	return movies, nil
}

type account struct {
	user models.User
	hash []byte
}

// MemoryStore holds users and the catalog for the reference API. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	movies     []models.Movie
	accounts   map[string]*account // by id
	byUsername map[string]string   // username -> id
	cost       int
}

// NewMemoryStore creates a store serving movies. bcryptCost outside bcrypt's range falls back to its default.
func NewMemoryStore(movies []models.Movie, bcryptCost int) *MemoryStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return &MemoryStore{
		movies:     movies,
		accounts:   make(map[string]*account),
		byUsername: make(map[string]string),
		cost:       bcryptCost,
	}
}

func validateDetails(d models.UserDetails, creating bool) error {
	if creating && (strings.TrimSpace(d.Username) == "" || d.Password == "") {
		return fmt.Errorf("%w: Username and Password are required", shared.ErrInvalidInput)
	}
	if d.Username != "" && len(d.Username) < 3 {
		return fmt.Errorf("%w: Username must be at least 3 characters", shared.ErrInvalidInput)
	}
	if d.Email != "" && !strings.Contains(d.Email, "@") {
		return fmt.Errorf("%w: Email does not appear to be valid", shared.ErrInvalidInput)
	}
	return nil
}

// CreateUser registers an account.
func (s *MemoryStore) CreateUser(d models.UserDetails) (models.User, error) {
	if err := validateDetails(d, true); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[d.Username]; taken {
		return models.User{}, fmt.Errorf("%w: %s already exists", shared.ErrDuplicateUser, d.Username)
	}

	user := models.User{
		ID:             shared.GenerateID(),
		Username:       d.Username,
		Email:          d.Email,
		Birthday:       d.Birthday,
		FavoriteMovies: []string{},
	}
	s.accounts[user.ID] = &account{user: user, hash: hash}
	s.byUsername[user.Username] = user.ID
	return cloneUser(user), nil
}

// Authenticate checks a username and password pair.
func (s *MemoryStore) Authenticate(username, password string) (models.User, error) {
	s.mu.RLock()
	acct, ok := s.lookup(username)
	var hash []byte
	var user models.User
	if ok {
		hash, user = acct.hash, cloneUser(acct.user)
	}
	s.mu.RUnlock()

	if !ok {
		return models.User{}, shared.ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return models.User{}, shared.ErrAuthFailed
	}
	return user, nil
}

func (s *MemoryStore) lookup(username string) (*account, bool) {
	id, ok := s.byUsername[username]
	if !ok {
		return nil, false
	}
	acct, ok := s.accounts[id]
	return acct, ok
}

// UserByID returns the account with id.
func (s *MemoryStore) UserByID(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	return cloneUser(acct.user), nil
}

// UpdateUser applies the non-empty fields of d to the account with id.
func (s *MemoryStore) UpdateUser(id string, d models.UserDetails) (models.User, error) {
	if err := validateDetails(d, false); err != nil {
		return models.User{}, err
	}

	var hash []byte
	if d.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(d.Password), s.cost)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}

	if d.Username != "" && d.Username != acct.user.Username {
		if _, taken := s.byUsername[d.Username]; taken {
			return models.User{}, fmt.Errorf("%w: %s already exists", shared.ErrDuplicateUser, d.Username)
		}
		delete(s.byUsername, acct.user.Username)
		s.byUsername[d.Username] = id
		acct.user.Username = d.Username
	}
	if d.Email != "" {
		acct.user.Email = d.Email
	}
	if d.Birthday != "" {
		acct.user.Birthday = d.Birthday
	}
	if hash != nil {
		acct.hash = hash
	}
	return cloneUser(acct.user), nil
}

// DeleteUser removes the account with id.
func (s *MemoryStore) DeleteUser(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	delete(s.accounts, id)
	delete(s.byUsername, acct.user.Username)
	return cloneUser(acct.user), nil
}

// AddFavorite adds movieID to the account's favorites; adding an existing favorite is a no-op.
func (s *MemoryStore) AddFavorite(id, movieID string) (models.User, error) {
	return s.mutateFavorites(id, movieID, true)
}

// RemoveFavorite removes movieID from the account's favorites.
func (s *MemoryStore) RemoveFavorite(id, movieID string) (models.User, error) {
	return s.mutateFavorites(id, movieID, false)
}

func (s *MemoryStore) mutateFavorites(id, movieID string, add bool) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	if add && !slices.ContainsFunc(s.movies, func(m models.Movie) bool { return m.ID == movieID }) {
		return models.User{}, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, movieID)
	}

	if add {
		acct.user = acct.user.WithFavorite(movieID)
	} else {
		acct.user = acct.user.WithoutFavorite(movieID)
	}
	return cloneUser(acct.user), nil
}

// Movies returns the catalog in order.
func (s *MemoryStore) Movies() []models.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.movies)
}

// MovieByTitle finds a movie by exact title.
func (s *MemoryStore) MovieByTitle(title string) (models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.movies {
		if m.Title == title {
			return m, nil
		}
	}
	return models.Movie{}, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, title)
}

// Director finds a director by name among the catalog's movies.
func (s *MemoryStore) Director(name string) (models.Director, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.movies {
		if m.Director.Name == name {
			return m.Director, nil
		}
	}
	return models.Director{}, fmt.Errorf("%w: no director named %s", shared.ErrMovieNotFound, name)
}

// Genre finds a genre by name among the catalog's movies.
func (s *MemoryStore) Genre(name string) (models.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.movies {
		if m.Genre.Name == name {
			return m.Genre, nil
		}
	}
	return models.Genre{}, fmt.Errorf("%w: no genre named %s", shared.ErrMovieNotFound, name)
}

func cloneUser(u models.User) models.User {
	u.FavoriteMovies = slices.Clone(u.FavoriteMovies)
	if u.FavoriteMovies == nil {
		u.FavoriteMovies = []string{}
	}
	return u
}
