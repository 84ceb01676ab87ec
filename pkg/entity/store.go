package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/celerix-dev/celerix-records/pkg/kv"
	"go.uber.org/zap"
)

// Store manages one homogeneous collection persisted under a single key.
type Store[T Record[T]] struct {
	mu     sync.RWMutex
	items  []T
	bucket kv.Bucket
	key    string
	opts   options

	subMu     sync.Mutex
	nextSub   int
	listeners map[int]func([]T)
}

// Open loads the collection stored under key, or seeds it with defaults.
//
// A missing, unreadable or malformed snapshot never fails: the store serves
// defaults and logs a warning. Defaults are written back only when the key is
// absent; an unreadable or malformed snapshot is left untouched in the bucket
// until the next mutation.
func Open[T Record[T]](bucket kv.Bucket, key string, defaults []T, opts ...Option) (*Store[T], error) {
	if bucket == nil {
		return nil, errors.New("entity: bucket is required")
	}
	if key == "" {
		return nil, errors.New("entity: key is required")
	}
	o := defaultOptions(key)
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store[T]{
		bucket:    bucket,
		key:       key,
		opts:      o,
		listeners: make(map[int]func([]T)),
	}
	log := s.logger()

	items, state := s.load(defaults)
	s.items = items
	if state == loadMissing {
		log.Debug("seeding collection", zap.Int("count", len(items)))
		if err := s.persistLocked(); err != nil {
			log.Warn("could not persist seed data", zap.Error(err))
		}
	}
	s.observe(OpLoad, nil)
	return s, nil
}

type loadState int

const (
	loadOK loadState = iota
	// loadMissing means nothing is stored under the key yet.
	loadMissing
	// loadFallback means a snapshot exists but could not be used.
	loadFallback
)

func (s *Store[T]) load(defaults []T) ([]T, loadState) {
	log := s.logger()
	raw, err := s.bucket.Get(s.key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return cloneAll(defaults), loadMissing
	}
	if err != nil {
		log.Warn("could not read snapshot, serving defaults", zap.Error(err))
		return cloneAll(defaults), loadFallback
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn("malformed snapshot, serving defaults", zap.Error(err))
		return cloneAll(defaults), loadFallback
	}
	if items == nil {
		items = []T{}
	}
	return items, loadOK
}

// Name returns the collection name.
func (s *Store[T]) Name() string { return s.opts.name }

// Key returns the backing-store key.
func (s *Store[T]) Key() string { return s.key }

// Len returns the number of records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Create assigns a fresh id, appends v and persists the collection.
// A persistence failure is reported with the created record, which stays in memory.
func (s *Store[T]) Create(v T) (T, error) {
	s.mu.Lock()
	v = v.WithID(s.opts.newID())
	if c, ok := any(v).(Creatable[T]); ok {
		v = c.Created(s.opts.now())
	}
	s.items = append(s.items, cloneOne(v))
	err := s.persistLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger().Debug("created entity", zap.String("id", v.GetID()))
	s.observe(OpCreate, err)
	s.notify(snapshot)
	return v, err
}

// Update applies fn to the record with the given id and persists the collection.
// The id cannot be changed by fn.
func (s *Store[T]) Update(id string, fn func(*T)) (T, error) {
	var zero T
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		err := NotFound(s.opts.name, id)
		s.observe(OpUpdate, err)
		return zero, err
	}
	v := s.items[i]
	fn(&v)
	v = s.touch(v.WithID(id))
	s.items[i] = cloneOne(v)
	err := s.persistLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.observe(OpUpdate, err)
	s.notify(snapshot)
	return v, err
}

// Replace swaps the record with the given id for v, keeping the id.
// Revisable records carry over what they keep from the stored version.
func (s *Store[T]) Replace(id string, v T) (T, error) {
	return s.Update(id, func(cur *T) {
		next := v
		if r, ok := any(v).(Revisable[T]); ok {
			next = r.Revise(*cur)
		}
		*cur = next
	})
}

// Delete removes the record with the given id. Deleting an absent id is a
// no-op reported as false, so repeated deletes are harmless.
func (s *Store[T]) Delete(id string) (bool, error) {
	n, err := s.removeFunc(OpDelete, func(v T) bool { return v.GetID() == id })
	return n > 0, err
}

// RemoveFunc removes every record matching pred and persists once.
func (s *Store[T]) RemoveFunc(pred func(T) bool) (int, error) {
	return s.removeFunc(OpDelete, pred)
}

func (s *Store[T]) removeFunc(op string, pred func(T) bool) (int, error) {
	s.mu.Lock()
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, pred)
	removed := before - len(s.items)
	if removed == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	err := s.persistLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.observe(op, err)
	s.notify(snapshot)
	return removed, err
}

// ReplaceAll swaps the whole collection and persists it.
func (s *Store[T]) ReplaceAll(items []T) error {
	s.mu.Lock()
	s.items = cloneAll(items)
	err := s.persistLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.observe(OpReplace, err)
	s.notify(snapshot)
	return err
}

// List returns every record in insertion order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Get looks up a record by id. A nil store holds nothing.
func (s *Store[T]) Get(id string) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return cloneOne(s.items[i]), true
	}
	return zero, false
}

// Filter returns the records matching pred, in insertion order.
func (s *Store[T]) Filter(pred func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0)
	for _, v := range s.items {
		if pred(v) {
			out = append(out, cloneOne(v))
		}
	}
	return out
}

// Subscribe registers fn to receive the new list after every mutation.
// The returned function removes the subscription.
func (s *Store[T]) Subscribe(fn func([]T)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store[T]) notify(items []T) {
	s.subMu.Lock()
	fns := make([]func([]T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(cloneAll(items))
	}
}

func (s *Store[T]) touch(v T) T {
	if u, ok := any(v).(Updatable[T]); ok {
		return u.Updated(s.opts.now())
	}
	return v
}

func (s *Store[T]) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.items, func(v T) bool { return v.GetID() == id })
}

func (s *Store[T]) snapshotLocked() []T {
	return cloneAll(s.items)
}

func cloneOne[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}

// cloneAll copies items deeply enough that no caller can reach store memory.
// The result is never nil.
func cloneAll[T any](items []T) []T {
	out := make([]T, len(items))
	for i, v := range items {
		out[i] = cloneOne(v)
	}
	return out
}

// persistLocked writes the whole collection. It MUST be called while holding s.mu.
func (s *Store[T]) persistLocked() error {
	items := s.items
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return Persistence(s.opts.name, fmt.Errorf("encode: %w", err))
	}
	if err := s.bucket.Set(s.key, raw); err != nil {
		s.logger().Warn("persist failed", zap.Error(err))
		return Persistence(s.opts.name, err)
	}
	return nil
}

func (s *Store[T]) observe(op string, err error) {
	if s.opts.observer == nil {
		return
	}
	s.opts.observer.Observe(s.opts.name, op, s.Len(), err)
}

func (s *Store[T]) logger() *zap.Logger {
	return s.opts.log.With(zap.String("collection", s.opts.name))
}
