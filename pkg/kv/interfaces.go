// Package kv defines the backing-store contracts used by entity collections.
// Both the JSON-directory and SQLite engines satisfy them.
package kv

import (
	"encoding/json"
	"errors"
)

var (
	// ErrPersonaNotFound is returned when a requested persona does not exist.
	ErrPersonaNotFound = errors.New("persona not found")
	// ErrAppNotFound is returned when a requested app does not exist within a persona.
	ErrAppNotFound = errors.New("app not found")
	// ErrKeyNotFound is returned when a requested key does not exist within an app.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidNamespace is returned when a persona or app id is empty.
	ErrInvalidNamespace = errors.New("persona and app ids are required")
)

// SystemPersona is the reserved ID for global/system-level data.
const SystemPersona = "_system"

// --- Functional Interfaces (Interface Segregation) ---

// KVReader defines the basic read operations for the store.
type KVReader interface {
	Get(personaID, appID, key string) (json.RawMessage, error)
}

// KVWriter defines the basic write and delete operations for the store.
type KVWriter interface {
	Set(personaID, appID, key string, val json.RawMessage) error
	Delete(personaID, appID, key string) error
}

// AppEnumeration allows discovering personas and apps.
type AppEnumeration interface {
	GetPersonas() ([]string, error)
	GetApps(personaID string) ([]string, error)
}

// BatchExporter allows retrieving bulk data.
type BatchExporter interface {
	GetAppStore(personaID, appID string) (map[string]json.RawMessage, error)
}

// --- Composite Interfaces ---

// Backend is the multi-tenant engine contract.
type Backend interface {
	KVReader
	KVWriter
	AppEnumeration
	BatchExporter

	// ClearApp removes every key of an app namespace.
	ClearApp(personaID, appID string) error
}

// Bucket is a single namespace of the backing store: get, set and remove
// blobs by key. Entity collections persist through a Bucket.
type Bucket interface {
	Get(key string) (json.RawMessage, error)
	Set(key string, val json.RawMessage) error
	Delete(key string) error
	Keys() ([]string, error)
}
