package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/engine"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

// FileRepository keeps each collection in <dir>/<role>s.json and rewrites the
// whole file on every change. Writes within one process are serialized;
// writers in other processes are not coordinated.
type FileRepository struct {
	Dir string
	mu  sync.Mutex
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, common.Wrap(common.ErrIO, err, "create collection dir")
	}
	return &FileRepository{Dir: dir}, nil
}

func (r *FileRepository) path(role schema.Role) string {
	return filepath.Join(r.Dir, role.FileName())
}

// load reads a collection. A missing file is an empty collection.
// It MUST be called while holding r.mu.
func (r *FileRepository) load(role schema.Role) ([]schema.Profile, error) {
	content, err := os.ReadFile(r.path(role))
	if errors.Is(err, fs.ErrNotExist) {
		return []schema.Profile{}, nil
	}
	if err != nil {
		return nil, common.Wrap(common.ErrIO, err, "read "+role.FileName())
	}

	list := []schema.Profile{}
	if len(content) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(content, &list); err != nil {
		return nil, common.Wrap(common.ErrIO, err, "decode "+role.FileName())
	}
	return list, nil
}

// It MUST be called while holding r.mu.
func (r *FileRepository) save(role schema.Role, list []schema.Profile) error {
	return engine.WriteJSONAtomic(r.path(role), list)
}

func (r *FileRepository) List(_ context.Context, role schema.Role) ([]schema.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(role)
}

func (r *FileRepository) Get(_ context.Context, role schema.Role, id string) (schema.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(role)
	if err != nil {
		return schema.Profile{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return schema.Profile{}, ErrProfileNotFound
	}
	return list[i], nil
}

func (r *FileRepository) Add(_ context.Context, role schema.Role, p schema.Profile) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(role)
	if err != nil {
		return 0, err
	}
	if emailTaken(list, p.Email) {
		return 0, ErrDuplicateEmail
	}
	list = append(list, p)
	if err := r.save(role, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

func (r *FileRepository) Update(_ context.Context, role schema.Role, p schema.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(role)
	if err != nil {
		return err
	}
	i := indexOf(list, p.ID)
	if i < 0 {
		return ErrProfileNotFound
	}
	list[i] = p
	return r.save(role, list)
}

func (r *FileRepository) Delete(_ context.Context, role schema.Role, id string) (schema.Profile, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(role)
	if err != nil {
		return schema.Profile{}, 0, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return schema.Profile{}, 0, ErrProfileNotFound
	}
	removed := list[i]
	list = append(list[:i], list[i+1:]...)
	if err := r.save(role, list); err != nil {
		return schema.Profile{}, 0, err
	}
	return removed, len(list), nil
}
