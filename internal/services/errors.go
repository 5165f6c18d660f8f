package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/flix/internal/shared"
)

const (
	// GenericMessage is shown for any failure that has no more specific wording.
	GenericMessage = "Something bad happened; please try again later."
	// LoginFailedMessage is shown when the backend rejects credentials.
	LoginFailedMessage = "Invalid username or password. Please try again."
	// RegisterFailedMessage is shown when the backend rejects a sign-up.
	RegisterFailedMessage = "Registration failed. The username may be taken or a field is invalid."
	// SessionExpiredMessage is shown when a call needs a session that is not held.
	SessionExpiredMessage = "Your session has expired. Please log in again."
	// BusyMessage is shown when a favorite is toggled while its previous change is pending.
	BusyMessage = "That movie is still being updated. Please wait a moment."
)

// NetworkError is returned when no response was received: transport failure, timeout or cancellation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, shared.ErrNetwork, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{shared.ErrNetwork, e.Err}
}

// APIError is returned for any non-2xx response. Body keeps the raw response for logging.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e == nil {
		return shared.ErrAPIRequest.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: status %d: %v", e.Op, shared.ErrAPIRequest, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v: status %d", e.Op, shared.ErrAPIRequest, e.StatusCode)
}

func (e *APIError) Unwrap() []error {
	if e == nil {
		return []error{shared.ErrAPIRequest}
	}
	if e.Err != nil {
		return []error{shared.ErrAPIRequest, e.Err}
	}
	return []error{shared.ErrAPIRequest}
}

// AuthError is returned when login or registration is rejected by the backend.
type AuthError struct {
	Message string
	API     *APIError
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%v: %s", shared.ErrAuthFailed, e.Message)
}

func (e *AuthError) Unwrap() []error {
	if e.API == nil {
		return []error{shared.ErrAuthFailed}
	}
	return []error{shared.ErrAuthFailed, e.API}
}

// authStatus lists the statuses that mean "rejected credentials" per operation.
var authStatus = map[string][]int{
	opLogin: {
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity,
	},
	opRegister: {http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity},
}

var authMessage = map[string]string{
	opLogin:    LoginFailedMessage,
	opRegister: RegisterFailedMessage,
}

// classify turns a non-2xx response into the error for op. fallback is the operation's default message.
func classify(op string, status int, body []byte, fallback string) error {
	apiErr := &APIError{Op: op, StatusCode: status, Message: fallback, Body: string(body)}

	for _, code := range authStatus[op] {
		if code == status {
			return &AuthError{Message: authMessage[op], API: apiErr}
		}
	}
	return apiErr
}

// UserMessage returns the single human-readable message for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	if errors.Is(err, shared.ErrInvalidSession) {
		return SessionExpiredMessage
	}
	if errors.Is(err, shared.ErrFavoriteBusy) {
		return BusyMessage
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericMessage
}
