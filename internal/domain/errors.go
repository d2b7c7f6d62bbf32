package domain

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	FailureTransport        FailureKind = "transport"
	FailureParse            FailureKind = "parse"
	FailureInsufficientData FailureKind = "insufficient_data"
	FailurePersistence      FailureKind = "persistence"
)

// FetchError is returned by every repository that talks to the
// outside world so callers can pick a fallback based on the kind
// of failure instead of string matching.
type FetchError struct {
	Kind   FailureKind
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failure from %s: %v", e.Kind, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewTransportError(source string, err error) error {
	return &FetchError{Kind: FailureTransport, Source: source, Err: err}
}

func NewParseError(source string, err error) error {
	return &FetchError{Kind: FailureParse, Source: source, Err: err}
}

func NewInsufficientDataError(source string, err error) error {
	return &FetchError{Kind: FailureInsufficientData, Source: source, Err: err}
}

func NewPersistenceError(source string, err error) error {
	return &FetchError{Kind: FailurePersistence, Source: source, Err: err}
}

// KindOf classifies err. Errors that were never wrapped in a
// FetchError are treated as transport failures.
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FailureTransport
}
