package entity

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation names reported to an Observer.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpReplace = "replace"
	OpLoad    = "load"
)

// Observer receives one call per store operation.
type Observer interface {
	Observe(collection, op string, size int, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(collection, op string, size int, err error)

func (f ObserverFunc) Observe(collection, op string, size int, err error) {
	f(collection, op, size, err)
}

type options struct {
	name     string
	log      *zap.Logger
	observer Observer
	now      func() time.Time
	newID    func() string
}

// Option configures a Store.
type Option func(*options)

// WithName sets the collection name used in errors, logs and bundles.
// It defaults to the persistence key.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. The global zap logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver installs an operation hook (metrics, audit).
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the random id source.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

func defaultOptions(key string) options {
	return options{
		name:  key,
		log:   zap.L(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}
