package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTimeline indicates a timeline identifier that cannot be parsed.
	ErrInvalidTimeline = errors.New("invalid timeline")

	// ErrNotFound indicates the item is not in the cache.
	ErrNotFound = errors.New("not found")
)

// ErrorKind separates transient connectivity failures from everything else.
type ErrorKind int

const (
	ErrorOther ErrorKind = iota
	ErrorNetwork
)

func (k ErrorKind) String() string {
	if k == ErrorNetwork {
		return "network"
	}
	return "other"
}

// FetchError is returned by remote collaborators.
type FetchError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NetworkError wraps err as a network failure of op.
func NetworkError(op string, err error) error {
	return &FetchError{Kind: ErrorNetwork, Op: op, Err: err}
}

// OtherError wraps err as a non-network failure of op.
func OtherError(op string, err error) error {
	return &FetchError{Kind: ErrorOther, Op: op, Err: err}
}

// KindOf classifies any error. Errors that are not a FetchError count as other.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ErrorOther
}

// IsNetwork reports whether err is a network failure.
func IsNetwork(err error) bool {
	return err != nil && KindOf(err) == ErrorNetwork
}

// ErrorMessage is the user-facing text for a failed load.
func ErrorMessage(err error) string {
	if IsNetwork(err) {
		return "A network error occurred. Check your connection and try again."
	}
	return "Something went wrong."
}
