package entity

import (
	"errors"
	"fmt"
)

// Kind categorizes a store failure.
type Kind string

const (
	// KindNotFound means an operation referenced an id absent from its collection.
	KindNotFound Kind = "not_found"
	// KindPersistence means the backing store rejected a read or write.
	// The in-memory mutation that triggered it has still been applied.
	KindPersistence Kind = "persistence"
	// KindValidation means an imported document or record has the wrong shape.
	KindValidation Kind = "validation"
)

// Error is the single error type surfaced by entity stores and the codecs
// built on top of them.
type Error struct {
	Kind       Kind   `json:"kind"`
	Collection string `json:"collection,omitempty"`
	ID         string `json:"id,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e.Collection != "" && e.ID != "":
		return fmt.Sprintf("[%s] %s/%s: %s", e.Kind, e.Collection, e.ID, e.detail())
	case e.Collection != "":
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Collection, e.detail())
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.detail())
	}
}

func (e *Error) detail() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a KindNotFound error.
func NotFound(collection, id string) *Error {
	return &Error{Kind: KindNotFound, Collection: collection, ID: id, Message: "entity not found"}
}

// Persistence wraps a backing-store failure.
func Persistence(collection string, err error) *Error {
	return &Error{Kind: KindPersistence, Collection: collection, Message: "could not persist collection", Err: err}
}

// Validation builds a KindValidation error with a human-readable reason.
func Validation(collection, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Collection: collection, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a KindNotFound *Error.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsPersistence reports whether err is a KindPersistence *Error.
func IsPersistence(err error) bool { return hasKind(err, KindPersistence) }

// IsValidation reports whether err is a KindValidation *Error.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

func hasKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
