// Package engine implements the namespaced key-value backing store and its
// on-disk persisters.
package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Persister saves and loads whole persona snapshots.
type Persister interface {
	SavePersona(personaID string, data map[string]map[string]json.RawMessage) error
	LoadAll() (map[string]map[string]map[string]json.RawMessage, error)
}

// Persistence handles the disk I/O for the MemStore using one JSON file per persona.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
	log     *zap.Logger
}

var _ Persister = (*Persistence)(nil)

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string, logger *zap.Logger) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Persistence{DataDir: dir, log: logger}, nil
}

// SavePersona writes a single persona's data to a JSON file atomically.
// A nil or empty snapshot removes the persona file.
func (p *Persistence) SavePersona(personaID string, data map[string]map[string]json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := filepath.Join(p.DataDir, personaID+".json")
	if len(data) == 0 {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove persona %s: %w", personaID, err)
		}
		return nil
	}
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode persona %s: %w", personaID, err)
	}

	if err := os.WriteFile(tempPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write persona %s: %w", personaID, err)
	}

	// Either the old file or the new one survives a crash, never a torn write.
	if err := os.Rename(tempPath, filePath); err != nil {
		return fmt.Errorf("commit persona %s: %w", personaID, err)
	}
	return nil
}

// LoadAll returns all persona data found in the data directory.
func (p *Persistence) LoadAll() (map[string]map[string]map[string]json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	allData := make(map[string]map[string]map[string]json.RawMessage)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		personaID := strings.TrimSuffix(file.Name(), ".json")

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			p.log.Warn("could not read persona file", zap.String("file", file.Name()), zap.Error(err))
			continue
		}

		var personaData map[string]map[string]json.RawMessage
		if err := json.Unmarshal(content, &personaData); err != nil {
			p.log.Warn("could not unmarshal persona data", zap.String("file", file.Name()), zap.Error(err))
			continue
		}
		allData[personaID] = personaData
	}
	return allData, nil
}
