// Package common provides shared constants, types, and utilities
// used across the DB Switch application.
package common

import "errors"

// Sentinel errors for dbswitch operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Connection errors.
	ErrConnectionOpen = errors.New("a connection is already open")
	ErrUnreachable    = errors.New("database server unreachable")

	// Target errors.
	ErrTargetNotFound = errors.New("target not found")
	ErrDuplicateName  = errors.New("target name already exists")
	ErrInvalidTarget  = errors.New("invalid target data")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
