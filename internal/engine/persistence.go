package engine

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/techwomen-moldova/mentordesk/internal/common"
)

// StateFileName is the document holding every key of the local store.
const StateFileName = "state.json"

// Persistence handles the disk I/O for the MemStore.
type Persistence struct {
	DataDir string
	mu      sync.Mutex
}

// NewPersistence initializes a persistence handler, creating dir if needed.
func NewPersistence(dir string) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, common.Wrap(common.ErrIO, err, "create data dir")
	}
	return &Persistence{DataDir: dir}, nil
}

func (p *Persistence) path() string {
	return filepath.Join(p.DataDir, StateFileName)
}

// Save writes the whole document atomically: temp file then rename, so a
// crash leaves either the old or the new document.
func (p *Persistence) Save(data map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return WriteJSONAtomic(p.path(), data)
}

// Load returns the stored document. A missing file is an empty store.
func (p *Persistence) Load() (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := make(map[string]any)
	content, err := os.ReadFile(p.path())
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, common.Wrap(common.ErrIO, err, "read "+StateFileName)
	}
	if len(content) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, common.Wrap(common.ErrIO, err, "decode "+StateFileName)
	}
	return data, nil
}

// WriteJSONAtomic marshals v with two-space indentation and swaps it into
// place via a temporary file and rename.
func WriteJSONAtomic(path string, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return common.Wrap(common.ErrIO, err, "encode "+filepath.Base(path))
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0o644); err != nil {
		return common.Wrap(common.ErrIO, err, "write "+filepath.Base(path))
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return common.Wrap(common.ErrIO, err, "replace "+filepath.Base(path))
	}
	return nil
}
