// Package apperror carries the failure kind of a domain error so the
// delivery layer can translate it without knowing every sentinel.
package apperror

import "errors"

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindConflict     Kind = "conflict"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
