// Package apperr defines the error taxonomy shared by the session engine,
// reward services, and the offline client. Handlers map these to HTTP status
// codes; the sync coordinator uses them to decide what is retryable.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError covers malformed or missing input, including an answer
// submitted for the wrong exercise. Not retryable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError covers unknown sessions, lessons, and exercises.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ConflictError covers operations against a session in the wrong state,
// such as answering an already-completed session.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// StorageError wraps a failed local cache transaction. Callers should treat
// it as transient and retry the operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// SyncError wraps a network or server failure while uploading a completed
// session. The affected entry stays pending and is retried on the next
// sync trigger.
type SyncError struct {
	SessionID string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync session %s: %v", e.SessionID, e.Err)
}
func (e *SyncError) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}
