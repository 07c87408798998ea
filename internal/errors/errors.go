package errors

import (
	"errors"
	"fmt"
)

// Common error types for the trading platform client
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrLoginRejected    = errors.New("login rejected")
	ErrInvalidSession   = errors.New("invalid persisted session")

	// Endpoint errors
	ErrUnknownConfig   = errors.New("unknown api config")
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// Storage errors
	ErrNotFound = errors.New("not found")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}

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
