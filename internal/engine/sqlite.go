package engine

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLitePersistence stores persona snapshots in a single SQLite table,
// one row per persona/app/key.
type SQLitePersistence struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var _ Persister = (*SQLitePersistence)(nil)

// NewSQLitePersistence opens (or creates) the database at path.
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	if path == "" {
		path = "records.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		persona TEXT NOT NULL,
		app TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		PRIMARY KEY (persona, app, key)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLitePersistence{db: db, path: path}, nil
}

// SavePersona replaces every row of a persona inside one transaction.
func (s *SQLitePersistence) SavePersona(personaID string, data map[string]map[string]json.RawMessage) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(`DELETE FROM kv WHERE persona = ?`, personaID); err != nil {
		return fmt.Errorf("clear persona %s: %w", personaID, err)
	}
	for appID, app := range data {
		for key, val := range app {
			if _, err := tx.Exec(`INSERT INTO kv(persona, app, key, value) VALUES(?,?,?,?)`,
				personaID, appID, key, []byte(val)); err != nil {
				return fmt.Errorf("insert %s/%s/%s: %w", personaID, appID, key, err)
			}
		}
	}
	return tx.Commit()
}

// LoadAll reads every persona from the table.
func (s *SQLitePersistence) LoadAll() (map[string]map[string]map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT persona, app, key, value FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("select kv: %w", err)
	}
	defer func() { _ = rows.Close() }()

	all := make(map[string]map[string]map[string]json.RawMessage)
	for rows.Next() {
		var persona, app, key string
		var value []byte
		if err := rows.Scan(&persona, &app, &key, &value); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if all[persona] == nil {
			all[persona] = make(map[string]map[string]json.RawMessage)
		}
		if all[persona][app] == nil {
			all[persona][app] = make(map[string]json.RawMessage)
		}
		all[persona][app][key] = json.RawMessage(value)
	}
	return all, rows.Err()
}

// Close releases the database handle.
func (s *SQLitePersistence) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *SQLitePersistence) Path() string { return s.path }
