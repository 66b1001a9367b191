package engine

import (
	"sort"
	"sync"
)

// MemStore is a thread-safe key-value map persisted as a single JSON document.
type MemStore struct {
	mu        sync.RWMutex
	data      map[string]any
	persister *Persistence
}

// NewMemStore initializes a store.
// It accepts existing data (from Load) and an optional persister.
func NewMemStore(initialData map[string]any, p *Persistence) *MemStore {
	if initialData == nil {
		initialData = make(map[string]any)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
	}
}

func (m *MemStore) Get(key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return val, nil
}

// Set stores the value and writes the whole document before returning.
// On a failed write the in-memory value is rolled back.
func (m *MemStore) Set(key string, val any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, existed := m.data[key]
	m.data[key] = val

	if err := m.persist(); err != nil {
		if existed {
			m.data[key] = prev
		} else {
			delete(m.data, key)
		}
		return err
	}
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, existed := m.data[key]
	if !existed {
		return nil
	}
	delete(m.data, key)

	if err := m.persist(); err != nil {
		m.data[key] = prev
		return err
	}
	return nil
}

func (m *MemStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for k := range m.data {
		list = append(list, k)
	}
	sort.Strings(list)
	return list, nil
}

// persist must be called while holding m.mu.Lock.
func (m *MemStore) persist() error {
	if m.persister == nil {
		return nil
	}
	return m.persister.Save(m.copyData())
}

// copyData returns a shallow copy of the top-level map.
// It MUST be called while holding m.mu.Lock or m.mu.RLock.
func (m *MemStore) copyData() map[string]any {
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
