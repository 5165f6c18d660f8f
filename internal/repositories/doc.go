// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [SessionRepository] : single-row session table, satisfies session.Backend
//   - [MovieRepository] : offline copy of the last fetched catalog, order preserved
//
// Schemas live in shared/sql and are applied by [shared.RunMigrations].
package repositories
