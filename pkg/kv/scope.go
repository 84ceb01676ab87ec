package kv

import (
	"encoding/json"
	"errors"
	"sort"
)

// Scope pins a persona and app on a Backend.
type Scope struct {
	backend   Backend
	personaID string
	appID     string
}

// NewScope returns a Bucket bound to one persona/app namespace.
// Both ids are mandatory so that unrelated apps sharing a backend never
// write to the same keys.
func NewScope(b Backend, personaID, appID string) (*Scope, error) {
	if b == nil {
		return nil, errors.New("backend is required")
	}
	if personaID == "" || appID == "" {
		return nil, ErrInvalidNamespace
	}
	return &Scope{backend: b, personaID: personaID, appID: appID}, nil
}

// Get retrieves a blob using the pinned persona and app.
// Missing personas and apps are reported as ErrKeyNotFound.
func (s *Scope) Get(key string) (json.RawMessage, error) {
	val, err := s.backend.Get(s.personaID, s.appID, key)
	if errors.Is(err, ErrPersonaNotFound) || errors.Is(err, ErrAppNotFound) {
		return nil, ErrKeyNotFound
	}
	return val, err
}

// Set stores a blob using the pinned persona and app.
func (s *Scope) Set(key string, val json.RawMessage) error {
	return s.backend.Set(s.personaID, s.appID, key, val)
}

// Delete removes a key using the pinned persona and app.
func (s *Scope) Delete(key string) error {
	return s.backend.Delete(s.personaID, s.appID, key)
}

// Keys lists the keys of the namespace in lexical order.
func (s *Scope) Keys() ([]string, error) {
	data, err := s.backend.GetAppStore(s.personaID, s.appID)
	if errors.Is(err, ErrAppNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes the whole namespace.
func (s *Scope) Clear() error {
	return s.backend.ClearApp(s.personaID, s.appID)
}

// PersonaID returns the pinned persona.
func (s *Scope) PersonaID() string { return s.personaID }

// AppID returns the pinned app.
func (s *Scope) AppID() string { return s.appID }

// --- Generics Support ---

// Get retrieves a value from a Bucket and decodes it into T.
func Get[T any](b Bucket, key string) (T, error) {
	var target T
	raw, err := b.Get(key)
	if err != nil {
		return target, err
	}
	err = json.Unmarshal(raw, &target)
	return target, err
}

// Set encodes val as JSON and stores it in a Bucket.
func Set[T any](b Bucket, key string, val T) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return b.Set(key, raw)
}
