package engine

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/celerix-dev/celerix-records/pkg/kv"
)

// MemStore is the thread-safe in-memory engine.
// Every mutation is written through its Persister before it returns.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [personaID][appID][key]value
	data      map[string]map[string]map[string]json.RawMessage
	persister Persister
}

var _ kv.Backend = (*MemStore)(nil)

// NewMemStore initializes a store.
// It accepts existing data (from LoadAll) and a persister, which may be nil
// for a purely in-memory store.
func NewMemStore(initialData map[string]map[string]map[string]json.RawMessage, p Persister) *MemStore {
	if initialData == nil {
		initialData = make(map[string]map[string]map[string]json.RawMessage)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
	}
}

// Open loads everything a persister holds and returns a store backed by it.
func Open(p Persister) (*MemStore, error) {
	all, err := p.LoadAll()
	if err != nil {
		return nil, err
	}
	return NewMemStore(all, p), nil
}

func (m *MemStore) Get(personaID, appID, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	persona, ok := m.data[personaID]
	if !ok {
		return nil, kv.ErrPersonaNotFound
	}

	app, ok := persona[appID]
	if !ok {
		return nil, kv.ErrAppNotFound
	}

	val, ok := app[key]
	if !ok {
		return nil, kv.ErrKeyNotFound
	}

	return cloneRaw(val), nil
}

func (m *MemStore) Set(personaID, appID, key string, val json.RawMessage) error {
	if personaID == "" || appID == "" {
		return kv.ErrInvalidNamespace
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[personaID] == nil {
		m.data[personaID] = make(map[string]map[string]json.RawMessage)
	}
	if m.data[personaID][appID] == nil {
		m.data[personaID][appID] = make(map[string]json.RawMessage)
	}
	m.data[personaID][appID][key] = cloneRaw(val)

	return m.persistLocked(personaID)
}

func (m *MemStore) Delete(personaID, appID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.data[personaID]
	if !ok {
		return nil
	}
	a, ok := p[appID]
	if !ok {
		return nil
	}
	if _, ok := a[key]; !ok {
		return nil
	}
	delete(a, key)
	return m.persistLocked(personaID)
}

// ClearApp drops an app namespace and everything in it.
func (m *MemStore) ClearApp(personaID, appID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.data[personaID]
	if !ok {
		return nil
	}
	if _, ok := p[appID]; !ok {
		return nil
	}
	delete(p, appID)
	return m.persistLocked(personaID)
}

// persistLocked writes a persona snapshot. It MUST be called while holding m.mu.Lock.
func (m *MemStore) persistLocked(personaID string) error {
	if m.persister == nil {
		return nil
	}
	return m.persister.SavePersona(personaID, m.copyPersonaData(personaID))
}

// copyPersonaData creates a deep copy of a persona's data.
// It MUST be called while holding m.mu.Lock or m.mu.RLock.
func (m *MemStore) copyPersonaData(personaID string) map[string]map[string]json.RawMessage {
	original, ok := m.data[personaID]
	if !ok {
		return nil
	}

	personaCopy := make(map[string]map[string]json.RawMessage, len(original))
	for appID, appData := range original {
		appCopy := make(map[string]json.RawMessage, len(appData))
		for k, v := range appData {
			appCopy[k] = cloneRaw(v)
		}
		personaCopy[appID] = appCopy
	}
	return personaCopy
}

func (m *MemStore) GetPersonas() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for id := range m.data {
		list = append(list, id)
	}
	sort.Strings(list)
	return list, nil
}

func (m *MemStore) GetApps(personaID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []string
	if apps, ok := m.data[personaID]; ok {
		for appID := range apps {
			list = append(list, appID)
		}
	}
	sort.Strings(list)
	return list, nil
}

func (m *MemStore) GetAppStore(personaID, appID string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.data[personaID]; ok {
		if a, ok := p[appID]; ok {
			// Return a copy to prevent external mutation of the internal map
			out := make(map[string]json.RawMessage, len(a))
			for k, v := range a {
				out[k] = cloneRaw(v)
			}
			return out, nil
		}
	}
	return nil, kv.ErrAppNotFound
}

// App returns a Bucket pinned to one persona and app.
func (m *MemStore) App(personaID, appID string) (*kv.Scope, error) {
	return kv.NewScope(m, personaID, appID)
}

func cloneRaw(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out
}
