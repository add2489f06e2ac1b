package storage

import (
	"bytes"
	"io"
	"slices"
	"sync"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// MemoryStore keeps records in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[cbox.ID][]byte
	total   int
	opts    options
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		records: make(map[cbox.ID][]byte),
		opts:    buildOptions(opts),
	}
}

// StoreObject implements Storage.
func (m *MemoryStore) StoreObject(id cbox.ID, write func(w io.Writer) error) error {
	data, err := render(write)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old := len(m.records[id])
	if !m.opts.fits(m.total, old, len(data)) {
		return ErrInsufficientSpace
	}
	m.records[id] = data
	m.total += len(data) - old
	return nil
}

func (m *MemoryStore) get(id cbox.ID) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[id]
	return data, ok
}

// RetrieveObject implements Storage.
func (m *MemoryStore) RetrieveObject(id cbox.ID, read func(r io.Reader) error) error {
	data, ok := m.get(id)
	if !ok {
		return ErrRecordNotFound
	}
	return read(bytes.NewReader(data))
}

// RetrieveObjects implements Storage. Records are visited in ascending ID order.
func (m *MemoryStore) RetrieveObjects(visit func(id cbox.ID, r io.Reader) error) error {
	m.mu.RLock()
	ids := make([]cbox.ID, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)

	for _, id := range ids {
		data, ok := m.get(id)
		if !ok {
			// disposed by an earlier visit
			continue
		}
		if err := visit(id, bytes.NewReader(data)); err != nil {
			return err
		}
	}
	return nil
}

// DisposeObject implements Storage.
func (m *MemoryStore) DisposeObject(id cbox.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total -= len(m.records[id])
	delete(m.records, id)
	return nil
}

// Clear implements Storage.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.records)
	m.total = 0
	return nil
}

// Len returns the number of records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
