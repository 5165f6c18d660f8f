package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/desertthunder/flix/internal/models"
)

// Register creates an account. The session is not touched; sign-up logs in separately.
func (g *Gateway) Register(ctx context.Context, details models.UserDetails) (*models.User, error) {
	var user models.User
	c := call{op: opRegister, method: http.MethodPost, path: "/users", body: details, fallback: GenericMessage}
	if err := g.do(ctx, c, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token. Storing the token is left to the caller.
func (g *Gateway) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var result models.LoginResult
	c := call{op: opLogin, method: http.MethodPost, path: "/login", body: creds, fallback: GenericMessage}
	if err := g.do(ctx, c, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUser fetches the signed-in user's record.
func (g *Gateway) GetUser(ctx context.Context) (*models.User, error) {
	s, err := g.identity(opGetUser)
	if err != nil {
		return nil, err
	}

	var user models.User
	c := call{op: opGetUser, method: http.MethodGet, path: userPath(s.Username), token: s.Token, fallback: GenericMessage}
	if err := g.do(ctx, c, &user); err != nil {
		return nil, err
	}
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []string{}
	}
	return &user, nil
}

// FavoriteIDs returns the favorite movie ids from the user record.
func (g *Gateway) FavoriteIDs(ctx context.Context) ([]string, error) {
	user, err := g.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	return user.FavoriteMovies, nil
}

// EditUser updates the signed-in user's profile and returns the stored record.
func (g *Gateway) EditUser(ctx context.Context, details models.UserDetails) (*models.User, error) {
	s, err := g.identity(opEditUser)
	if err != nil {
		return nil, err
	}

	var user models.User
	c := call{op: opEditUser, method: http.MethodPut, path: userPath(s.Username), token: s.Token, body: details, fallback: GenericMessage}
	if err := g.do(ctx, c, &user); err != nil {
		return nil, err
	}
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []string{}
	}
	return &user, nil
}

// DeleteUser removes the signed-in user's account. The backend answers with plain text, which is
// returned verbatim; an empty body is still a success.
func (g *Gateway) DeleteUser(ctx context.Context) (*models.Confirmation, error) {
	s, err := g.identity(opDeleteUser)
	if err != nil {
		return nil, err
	}

	c := call{op: opDeleteUser, method: http.MethodDelete, path: userPath(s.Username), token: s.Token, fallback: GenericMessage}
	r, err := g.exchange(ctx, c)
	if err != nil {
		return nil, err
	}
	return &models.Confirmation{Message: strings.TrimSpace(string(r.body))}, nil
}

// AddFavorite adds id to the signed-in user's favorites.
//
// The updated user is returned when the backend echoes one, otherwise nil.
func (g *Gateway) AddFavorite(ctx context.Context, id string) (*models.User, error) {
	return g.mutateFavorite(ctx, opAddFavorite, http.MethodPost, id)
}

// RemoveFavorite removes id from the signed-in user's favorites. Same result contract as [Gateway.AddFavorite].
func (g *Gateway) RemoveFavorite(ctx context.Context, id string) (*models.User, error) {
	return g.mutateFavorite(ctx, opRemoveFavorite, http.MethodDelete, id)
}

// DeleteFavorite is an alias of [Gateway.RemoveFavorite].
func (g *Gateway) DeleteFavorite(ctx context.Context, id string) (*models.User, error) {
	return g.RemoveFavorite(ctx, id)
}

func (g *Gateway) mutateFavorite(ctx context.Context, op, method, id string) (*models.User, error) {
	s, err := g.identity(op)
	if err != nil {
		return nil, err
	}

	c := call{op: op, method: method, path: userPath(s.Username, "movies", id), token: s.Token, fallback: GenericMessage}
	r, err := g.exchange(ctx, c)
	if err != nil {
		return nil, err
	}

	return echoedUser(r.body), nil
}

// echoedUser decodes body as a user, returning nil when it is empty or not a user record.
func echoedUser(body []byte) *models.User {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil || user.Username == "" {
		return nil
	}
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []string{}
	}
	return &user
}
