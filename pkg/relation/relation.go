// Package relation resolves foreign keys for display and applies declared
// cascade deletes across entity collections.
package relation

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// UnknownStudent is the fallback label for a dangling student reference.
const UnknownStudent = "Unknown Student"

// Lookup is the read side of a collection.
type Lookup[T any] interface {
	Get(id string) (T, bool)
}

// ResolveName formats the record referenced by id, or returns fallback when
// the id is empty or dangling, or the lookup is nil. A typed nil lookup is
// handled by its own Get; *entity.Store reports such lookups as not found.
func ResolveName[T any](lookup Lookup[T], id string, format func(T) string, fallback string) string {
	if lookup == nil || id == "" || format == nil {
		return fallback
	}
	v, ok := lookup.Get(id)
	if !ok {
		return fallback
	}
	return format(v)
}

// Remover is the part of a collection a cascade needs.
type Remover[T any] interface {
	RemoveFunc(pred func(T) bool) (int, error)
}

// Dependent is a child collection whose records point at a parent through a
// foreign-key field.
type Dependent struct {
	Name   string
	remove func(parentID string) (int, error)
}

// On declares that records of store reference a parent through fk.
func On[T any](name string, store Remover[T], fk func(T) string) Dependent {
	return Dependent{
		Name: name,
		remove: func(parentID string) (int, error) {
			return store.RemoveFunc(func(v T) bool { return fk(v) == parentID })
		},
	}
}

// CascadeDelete removes every dependent record whose foreign key equals
// sourceID. All dependents are attempted; failures are combined.
func CascadeDelete(sourceID string, deps ...Dependent) (map[string]int, error) {
	counts := make(map[string]int, len(deps))
	if sourceID == "" {
		return counts, nil
	}
	var errs error
	for _, d := range deps {
		n, err := d.remove(sourceID)
		counts[d.Name] = n
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cascade %s: %w", d.Name, err))
		}
	}
	return counts, errs
}

// Deleter is the delete side of a parent collection.
type Deleter interface {
	Delete(id string) (bool, error)
}

// Report describes the outcome of Graph.Delete.
type Report struct {
	Parent   string         `json:"parent"`
	ID       string         `json:"id"`
	Removed  bool           `json:"removed"`
	Cascaded map[string]int `json:"cascaded"`
}

// Graph holds the cascade relationships declared once per parent collection.
type Graph struct {
	mu      sync.RWMutex
	parents map[string]Deleter
	deps    map[string][]Dependent
	log     *zap.Logger
}

// NewGraph returns an empty relationship graph.
func NewGraph(logger *zap.Logger) *Graph {
	if logger == nil {
		logger = zap.L()
	}
	return &Graph{
		parents: make(map[string]Deleter),
		deps:    make(map[string][]Dependent),
		log:     logger,
	}
}

// Parent registers a parent collection.
func (g *Graph) Parent(name string, d Deleter) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.parents[name] = d
	return g
}

// Cascade declares that deleting a record of parent removes matching dependents.
func (g *Graph) Cascade(parent string, deps ...Dependent) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deps[parent] = append(g.deps[parent], deps...)
	return g
}

// Dependents returns the dependents declared for parent.
func (g *Graph) Dependents(parent string) []Dependent {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Dependent(nil), g.deps[parent]...)
}

// Delete removes a parent record, then applies every declared cascade.
// Cascades run even when the parent was already gone so orphans are cleaned up.
func (g *Graph) Delete(parent, id string) (Report, error) {
	g.mu.RLock()
	d, ok := g.parents[parent]
	deps := append([]Dependent(nil), g.deps[parent]...)
	g.mu.RUnlock()

	rep := Report{Parent: parent, ID: id}
	if !ok {
		return rep, fmt.Errorf("relation: unknown parent collection %q", parent)
	}

	removed, errs := d.Delete(id)
	rep.Removed = removed

	counts, err := CascadeDelete(id, deps...)
	rep.Cascaded = counts
	errs = multierr.Append(errs, err)

	g.log.Debug("cascade delete",
		zap.String("parent", parent),
		zap.String("id", id),
		zap.Bool("removed", removed),
		zap.Any("cascaded", counts))
	return rep, errs
}
