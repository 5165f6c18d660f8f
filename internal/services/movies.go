package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/flix/internal/models"
)

// ListMovies returns the full catalog in server order. An empty body yields an empty catalog.
func (g *Gateway) ListMovies(ctx context.Context) ([]models.Movie, error) {
	s, err := g.identity(opListMovies)
	if err != nil {
		return nil, err
	}

	movies := []models.Movie{}
	c := call{op: opListMovies, method: http.MethodGet, path: "/movies", token: s.Token, fallback: GenericMessage}
	if err := g.do(ctx, c, &movies); err != nil {
		return nil, err
	}

	if movies == nil {
		movies = []models.Movie{}
	}
	return movies, nil
}

// GetMovie looks a movie up by title.
func (g *Gateway) GetMovie(ctx context.Context, title string) (*models.Movie, error) {
	s, err := g.identity(opGetMovie)
	if err != nil {
		return nil, err
	}

	var movie models.Movie
	c := call{op: opGetMovie, method: http.MethodGet, path: "/movies/" + url.PathEscape(title), token: s.Token, fallback: GenericMessage}
	if err := g.do(ctx, c, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetDirector looks a director up by name.
func (g *Gateway) GetDirector(ctx context.Context, name string) (*models.Director, error) {
	s, err := g.identity(opGetDirector)
	if err != nil {
		return nil, err
	}

	var director models.Director
	c := call{op: opGetDirector, method: http.MethodGet, path: "/movies/directors/" + url.PathEscape(name), token: s.Token, fallback: GenericMessage}
	if err := g.do(ctx, c, &director); err != nil {
		return nil, err
	}
	return &director, nil
}

// GetGenre looks a genre up by name.
func (g *Gateway) GetGenre(ctx context.Context, name string) (*models.Genre, error) {
	s, err := g.identity(opGetGenre)
	if err != nil {
		return nil, err
	}

	var genre models.Genre
	c := call{op: opGetGenre, method: http.MethodGet, path: "/movies/genres/" + url.PathEscape(name), token: s.Token, fallback: GenericMessage}
	if err := g.do(ctx, c, &genre); err != nil {
		return nil, err
	}
	return &genre, nil
}
