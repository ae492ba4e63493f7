package errors

import (
	"errors"
	"fmt"
)

// Common error types for the ticket desk client
var (
	// Session errors
	ErrSessionExpired   = errors.New("session expired")
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrNotAuthenticated = errors.New("not authenticated")

	// API status errors
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")

	// Transport errors
	ErrTransport       = errors.New("transport error")
	ErrInvalidResponse = errors.New("invalid response")

	// Client side errors
	ErrInvalidRequest   = errors.New("invalid request")
	ErrNoTicketSelected = errors.New("no ticket selected")

	// Navigation errors
	ErrRouteNotFound = errors.New("route not found")
	ErrRedirectLoop  = errors.New("redirect loop")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
