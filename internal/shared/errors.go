package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session & authentication errors
	ErrInvalidSession = fmt.Errorf("invalid session")
	ErrAuthFailed     = fmt.Errorf("authentication failed")

	// API and transport errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrNetwork    = fmt.Errorf("network unreachable")

	// Profile & favorites errors
	ErrInvalidState   = fmt.Errorf("invalid state transition")
	ErrFavoriteBusy   = fmt.Errorf("favorite mutation already in flight")
	ErrTornDown       = fmt.Errorf("profile torn down")
	ErrMovieNotFound  = fmt.Errorf("movie not found")
	ErrCacheEmpty     = fmt.Errorf("catalog cache is empty")
	ErrUserNotFound   = fmt.Errorf("user not found")
	ErrDuplicateUser  = fmt.Errorf("username already taken")
	ErrMissingSubject = fmt.Errorf("token has no subject")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
