package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mvaghela/bizbook/internal/model"
)

// Persister abstracts the durable storage backing the store. Load
// returns nil with no error when nothing has been persisted yet; that
// yields the empty initial state.
type Persister interface {
	Load() (*model.Snapshot, error)
	Save(snapshot *model.Snapshot) error
}

// FilePersister stores the full snapshot as one pretty-printed JSON
// file. Writes go through a temp file and rename so a crash mid-write
// never leaves a truncated snapshot behind.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister writing to the given path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the file the persister writes to.
func (p *FilePersister) Path() string { return p.path }

// Load reads the persisted snapshot. A missing file is not an error.
func (p *FilePersister) Load() (*model.Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data file %s: %w", p.path, err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", p.path, err)
	}
	return &snapshot, nil
}

// Save writes the snapshot atomically via temp file and rename.
func (p *FilePersister) Save(snapshot *model.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpPath := p.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// MemPersister keeps the snapshot in memory. Test code substitutes it
// for the file persister.
type MemPersister struct {
	mu       sync.Mutex
	snapshot *model.Snapshot
	saves    int
}

// NewMemPersister creates an empty in-memory persister.
func NewMemPersister() *MemPersister { return &MemPersister{} }

func (p *MemPersister) Load() (*model.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot == nil {
		return nil, nil
	}
	return p.snapshot.Clone(), nil
}

func (p *MemPersister) Save(snapshot *model.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = snapshot.Clone()
	p.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (p *MemPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
