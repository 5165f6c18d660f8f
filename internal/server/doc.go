// Package server provides HTTP routing, middleware and an in-memory reference implementation of the movie API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux], so wildcards are
// read with [http.Request.PathValue] and unmatched methods answer 405.
//
// # Reference API
//
// [API] serves the same surface as the production backend from a [MemoryStore]:
//   - passwords are hashed with bcrypt
//   - logins return an HS256 JWT whose subject is the user id
//   - [RequireBearer] answers 401 for missing or invalid tokens
//   - requests for another user's resources answer 403
//   - DELETE /users/{username} answers with plain text
//
// It backs `flix serve` for local development and the end-to-end tests of the client.
package server
