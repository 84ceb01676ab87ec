// Package boot opens the configured backing store and the tracker on top of
// it. The daemon and the CLI share it.
package boot

import (
	"fmt"
	"path/filepath"

	"github.com/celerix-dev/celerix-records/internal/config"
	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/internal/tracker"
	"github.com/celerix-dev/celerix-records/internal/vault"
	"github.com/celerix-dev/celerix-records/pkg/entity"
	"github.com/celerix-dev/celerix-records/pkg/kv"
	"go.uber.org/zap"
)

// SQLiteFile is the database file name inside the data dir.
const SQLiteFile = "records.db"

// Backend is an opened engine plus the resources behind it.
type Backend struct {
	Store *engine.MemStore
	close func() error
}

// Close releases the persister.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend loads every persona from the named backend under dataDir.
func OpenBackend(name, dataDir string, log *zap.Logger) (*Backend, error) {
	switch name {
	case config.BackendJSON:
		p, err := engine.NewPersistence(dataDir, log)
		if err != nil {
			return nil, err
		}
		store, err := engine.Open(p)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", dataDir, err)
		}
		return &Backend{Store: store}, nil
	case config.BackendSQLite:
		p, err := engine.NewSQLitePersistence(filepath.Join(dataDir, SQLiteFile))
		if err != nil {
			return nil, err
		}
		store, err := engine.Open(p)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("load %s: %w", p.Path(), err)
		}
		return &Backend{Store: store, close: p.Close}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

// Runtime is a ready tracker and the backend it persists to.
type Runtime struct {
	*Backend
	App    *tracker.App
	Bucket kv.Bucket
	Config config.Config
}

// Open opens cfg's backend, scopes it to cfg's namespace, seals it when a
// vault key is configured and opens the tracker collections.
func Open(cfg config.Config, log *zap.Logger, obs entity.Observer) (*Runtime, error) {
	if log == nil {
		log = zap.L()
	}
	backend, err := OpenBackend(cfg.Backend, cfg.DataDir, log)
	if err != nil {
		return nil, err
	}

	bucket, err := scope(backend.Store, cfg)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	app, err := tracker.New(bucket, tracker.Options{Seed: cfg.Seed, Logger: log, Observer: obs})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	log.Info("records opened",
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir),
		zap.String("persona", cfg.Persona),
		zap.String("namespace", cfg.Namespace),
		zap.Bool("sealed", cfg.VaultKey != ""),
	)
	return &Runtime{Backend: backend, App: app, Bucket: bucket, Config: cfg}, nil
}

func scope(store *engine.MemStore, cfg config.Config) (kv.Bucket, error) {
	s, err := store.App(cfg.Persona, cfg.Namespace)
	if err != nil {
		return nil, err
	}
	if cfg.VaultKey == "" {
		return s, nil
	}
	key, err := vault.ParseKey(cfg.VaultKey)
	if err != nil {
		return nil, fmt.Errorf("vault key: %w", err)
	}
	return vault.Wrap(s, key)
}
