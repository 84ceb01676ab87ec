// Package entity provides a generic, persisted, ordered collection of records.
//
// A Store keeps its records in insertion order and writes the whole
// collection to a kv.Bucket after every mutation. Records are plain structs
// with value-receiver accessors:
//
//	func (s Student) GetID() string              { return s.ID }
//	func (s Student) WithID(id string) Student    { s.ID = id; return s }
package entity

import "time"

// Record is the contract every stored type satisfies.
type Record[T any] interface {
	GetID() string
	WithID(id string) T
}

// Creatable records get stamped when they are created.
type Creatable[T any] interface {
	Created(now time.Time) T
}

// Updatable records get stamped on every update.
type Updatable[T any] interface {
	Updated(now time.Time) T
}

// Defaulted records fill missing fields with sensible defaults when they are
// imported from a document.
type Defaulted[T any] interface {
	WithDefaults() T
}

// Revisable records keep fields from the stored version when Replace swaps
// them in. Creation stamps are the usual case.
type Revisable[T any] interface {
	Revise(prev T) T
}

// Cloner records hold reference fields (slices, maps) and return a copy that
// shares none of them. The store clones records going in and coming out.
type Cloner[T any] interface {
	Clone() T
}
