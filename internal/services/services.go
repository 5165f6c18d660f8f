package services

import (
	"context"

	"github.com/desertthunder/flix/internal/models"
)

// Catalog is the read-only movie side of the API.
type Catalog interface {
	ListMovies(ctx context.Context) ([]models.Movie, error)
	GetMovie(ctx context.Context, title string) (*models.Movie, error)
	GetDirector(ctx context.Context, name string) (*models.Director, error)
	GetGenre(ctx context.Context, name string) (*models.Genre, error)
}

// Accounts covers authentication and the signed-in user's record.
type Accounts interface {
	Register(ctx context.Context, details models.UserDetails) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	GetUser(ctx context.Context) (*models.User, error)
	FavoriteIDs(ctx context.Context) ([]string, error)
	EditUser(ctx context.Context, details models.UserDetails) (*models.User, error)
	DeleteUser(ctx context.Context) (*models.Confirmation, error)
	AddFavorite(ctx context.Context, id string) (*models.User, error)
	RemoveFavorite(ctx context.Context, id string) (*models.User, error)
}

// Service is everything the movie API offers. [Gateway] implements it.
type Service interface {
	Catalog
	Accounts
}

var _ Service = (*Gateway)(nil)
