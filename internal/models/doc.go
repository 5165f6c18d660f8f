// Package models defines the entities exchanged with the myFlix backend.
//
// JSON field names follow the backend's wire format (capitalized keys, "_id" identifiers):
//   - [Movie] : catalog entry with embedded [Genre] and [Director]
//   - [User] : account record, including the FavoriteMovies id list
//   - [UserDetails] : registration & profile edit payload
//   - [Credentials] : login payload
//   - [LoginResult] : login response carrying the bearer token
//   - [Confirmation] : text acknowledgement returned by account deletion
//
// Models carry no behavior beyond small helpers; the favorites view is always derived
// (see tasks.Reconcile) and never stored on a model.
package models
