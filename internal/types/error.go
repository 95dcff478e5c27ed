package types

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller
type Kind string

const (
	// KindInvalidArgument means caller supplied data failed a precondition. Never retried.
	KindInvalidArgument Kind = "invalid_argument"
	// KindNotFound means a referenced plan or procedure does not exist. Never retried.
	KindNotFound Kind = "not_found"
	// KindInternal means the store or transaction failed. Safe to retry.
	KindInternal Kind = "internal"
)

// Error is the structured error returned by the services
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument creates a KindInvalidArgument error
func InvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a KindNotFound error
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps err as a KindInternal error carrying its message.
// Errors that are already classified are returned unchanged.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err, KindInternal for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller facing message of err
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
