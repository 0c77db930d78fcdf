package services

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy surfaced to callers. Everything except
// KindStorageUnavailable is a business-rule violation or caller error and
// must not be retried.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NotFound"
	KindInvalidSlot        ErrorKind = "InvalidSlot"
	KindAlreadyLocked      ErrorKind = "AlreadyLocked"
	KindNotLocked          ErrorKind = "NotLocked"
	KindAlreadyAssigned    ErrorKind = "AlreadyAssigned"
	KindInvalidTransition  ErrorKind = "InvalidTransition"
	KindStorageUnavailable ErrorKind = "StorageUnavailable"
)

type EngineError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *EngineError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.cause
}

// Is matches on kind, so callers can test errors.Is(err, &EngineError{Kind: KindNotFound}).
func (e *EngineError) Is(target error) bool {
	var t *EngineError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, format string, args ...any) *EngineError {
	return &EngineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// storageErr wraps a backing-store failure so callers see a retryable kind
// while the root cause stays reachable through errors.Unwrap.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var e *EngineError
	if errors.As(err, &e) {
		return err
	}
	return &EngineError{Kind: KindStorageUnavailable, Message: "backing store failure", cause: err}
}

// KindOf extracts the taxonomy kind; unknown errors report as storage failures.
func KindOf(err error) ErrorKind {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageUnavailable
}
