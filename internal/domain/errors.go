// Package domain contains core domain types for the Solvix application.
package domain

import "errors"

var (
	// ErrNotFound is matched by errors for ids that do not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is matched by errors for rejected client input.
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a classified failure carrying a human-readable message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the classification sentinel to errors.Is.
func (e *Error) Unwrap() error { return e.kind }

// NotFound returns an error classified as ErrNotFound.
func NotFound(msg string) error {
	return &Error{kind: ErrNotFound, msg: msg}
}

// InvalidInput returns an error classified as ErrInvalidInput.
func InvalidInput(msg string) error {
	return &Error{kind: ErrInvalidInput, msg: msg}
}
