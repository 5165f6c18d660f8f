package models

import "slices"

// User is the backend's account record.
type User struct {
	ID             string   `json:"_id,omitempty"`
	Username       string   `json:"Username"`
	Email          string   `json:"Email"`
	Birthday       string   `json:"Birthday,omitempty"`
	FavoriteMovies []string `json:"FavoriteMovies"`
}

// HasFavorite reports whether movieID is in the user's favorites.
func (u *User) HasFavorite(movieID string) bool {
	return slices.Contains(u.FavoriteMovies, movieID)
}

// WithFavorite returns a copy of u whose favorites contain movieID exactly once.
func (u User) WithFavorite(movieID string) User {
	if u.HasFavorite(movieID) {
		u.FavoriteMovies = slices.Clone(u.FavoriteMovies)
		return u
	}
	u.FavoriteMovies = append(slices.Clone(u.FavoriteMovies), movieID)
	return u
}

// WithoutFavorite returns a copy of u whose favorites no longer contain movieID.
func (u User) WithoutFavorite(movieID string) User {
	u.FavoriteMovies = slices.DeleteFunc(slices.Clone(u.FavoriteMovies), func(id string) bool {
		return id == movieID
	})
	return u
}

// UserDetails is the payload for registration and profile edits.
//
// Empty fields are omitted so an edit only touches what the caller set.
type UserDetails struct {
	Username string `json:"Username,omitempty"`
	Password string `json:"Password,omitempty"`
	Email    string `json:"Email,omitempty"`
	Birthday string `json:"Birthday,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

// LoginResult is the backend's response to a successful login.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Confirmation wraps a plain text acknowledgement.
type Confirmation struct {
	Message string `json:"message"`
}
