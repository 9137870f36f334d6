package errors

import (
	goerrors "errors"
	"fmt"
)

// New returns an error with the given message.
func New(message string) error {
	return goerrors.New(message)
}

// ContextError annotates an error with information on what the caller was
// doing when the error occurred.
type ContextError struct {
	Context string
	Err     error
}

func (err ContextError) Error() string {
	return fmt.Sprintf("%s: %s", err.Context, err.Err)
}

// WithContext wraps err so that its message is prefixed with context.
func WithContext(err error, context string) error {
	return ContextError{Context: context, Err: err}
}

// RootCause returns the innermost error after stripping any ContextError
// wrappers. It's used to programmatically react to specific error types.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(ContextError)
		if !ok {
			return err
		}
		err = ctxErr.Err
	}
}

// FriendlyError is an error whose message is meant to be shown to the user
// directly, without any additional context or stack information.
type FriendlyError interface {
	FriendlyMessage() string
}

type friendlyError struct {
	message string
}

func (err friendlyError) Error() string {
	return err.message
}

func (err friendlyError) FriendlyMessage() string {
	return err.message
}

// NewFriendlyError creates an error that is printed verbatim to the user.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{message: fmt.Sprintf(format, args...)}
}
