// Package services implements the [Gateway] to the movie API.
//
// # Requests
//
// Every operation builds a request, attaches the bearer token from the injected session store when
// the endpoint needs one, waits on the rate limiter and sends it with an X-Request-ID header.
// Idempotent GETs are retried with exponential backoff when no response arrives; mutations never are.
//
// # Error Handling
//
// A single classification routine maps failures to typed errors:
//   - [NetworkError] : no response (transport, timeout, cancellation), unwraps to [shared.ErrNetwork]
//   - [APIError] : non-2xx response with the raw body kept, unwraps to [shared.ErrAPIRequest]
//   - [AuthError] : rejected login or registration, unwraps to [shared.ErrAuthFailed] and its [APIError]
//   - [shared.ErrInvalidSession] : an authenticated call without a complete session; nothing is sent
//
// [UserMessage] yields the one message a caller shows for any of them.
package services
