package odoo

import (
	"errors"
	"fmt"
)

// Kind classifies a directory failure so callers can decide how to surface it.
type Kind string

const (
	// KindAuth means the XML-RPC session could not be authenticated.
	KindAuth Kind = "auth"
	// KindConfig means the configured directory state is invalid,
	// e.g. the declared source company does not exist.
	KindConfig Kind = "config"
	// KindRead means a search/read call failed.
	KindRead Kind = "read"
	// KindWrite means a per-item write failed.
	KindWrite Kind = "write"
)

// Error is the uniform error type returned by every directory call.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Op names the logical operation that failed, e.g. "list companies".
	Op string
	// Err is the underlying transport or server error.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("odoo: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("odoo: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain.
// Returns KindRead for errors that did not originate here, since an unknown
// failure during a read path is the common case.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRead
}
