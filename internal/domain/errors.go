package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed means the backend rejected the credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrAuthorizationDenied means the session role may not use a screen.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrNetwork means a backend request could not complete.
	ErrNetwork = errors.New("network failure")
	// ErrServerValidation means the backend refused the request, e.g. an
	// AI audit rejecting a repair photo.
	ErrServerValidation = errors.New("server validation failed")
	// ErrSessionStale means there is no session, or it changed underneath.
	ErrSessionStale = errors.New("session stale")
)

// BackendError carries the status and message returned by the backend.
type BackendError struct {
	Status  int
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message to show for err, or fallback.
func UserMessage(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}

// Invalid reports a request rejected before it reaches the backend.
func Invalid(message string) error {
	return &BackendError{Message: message, Err: ErrServerValidation}
}
