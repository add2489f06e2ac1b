package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// Key layout:
//
//	'd'              directory: big-endian uint16 IDs of all records, ascending
//	'o' + uint16 BE  record
var directoryKey = []byte{'d'}

const recordPrefix = 'o'

func recordKey(id cbox.ID) []byte {
	return binary.BigEndian.AppendUint16([]byte{recordPrefix}, uint16(id))
}

// PebbleStore keeps records in a Pebble database. Record and directory
// updates are committed in one synced batch.
type PebbleStore struct {
	db   *pebble.DB
	opts options

	mu    sync.Mutex // serialises directory read-modify-write
	total int
}

// OpenPebbleStore opens (or creates) a store in dir.
func OpenPebbleStore(dir string, opts ...Option) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble store: %w", err)
	}
	s := &PebbleStore{db: db, opts: buildOptions(opts)}

	ids, err := s.directory()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, id := range ids {
		data, err := s.get(recordKey(id))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sizing record %d: %w", id, err)
		}
		s.total += len(data)
	}
	return s, nil
}

// Close closes the database.
func (s *PebbleStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing pebble store: %w", err)
	}
	return nil
}

// Metrics returns the engine's internal counters for the metrics collector.
func (s *PebbleStore) Metrics() *pebble.Metrics {
	return s.db.Metrics()
}

// get returns a copy of the value at key; Pebble's buffer is only valid until
// the closer runs.
func (s *PebbleStore) get(key []byte) ([]byte, error) {
	val, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return bytes.Clone(val), nil
}

func (s *PebbleStore) directory() ([]cbox.ID, error) {
	raw, err := s.get(directoryKey)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	ids := make([]cbox.ID, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		ids = append(ids, cbox.ID(binary.BigEndian.Uint16(raw[i:])))
	}
	return ids, nil
}

func encodeDirectory(ids []cbox.ID) []byte {
	raw := make([]byte, 0, len(ids)*2)
	for _, id := range ids {
		raw = binary.BigEndian.AppendUint16(raw, uint16(id))
	}
	return raw
}

// StoreObject implements Storage.
func (s *PebbleStore) StoreObject(id cbox.ID, write func(w io.Writer) error) error {
	data, err := render(write)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.directory()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	old := 0
	pos, exists := slices.BinarySearch(ids, id)
	if exists {
		prev, err := s.get(recordKey(id))
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
		old = len(prev)
	}
	if !s.opts.fits(s.total, old, len(data)) {
		return ErrInsufficientSpace
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(recordKey(id), data, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if !exists {
		ids = slices.Insert(ids, pos, id)
		if err := batch.Set(directoryKey, encodeDirectory(ids), nil); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	s.total += len(data) - old
	return nil
}

// RetrieveObject implements Storage.
func (s *PebbleStore) RetrieveObject(id cbox.ID, read func(r io.Reader) error) error {
	data, err := s.get(recordKey(id))
	if err != nil {
		return err
	}
	return read(bytes.NewReader(data))
}

// RetrieveObjects implements Storage. Records are visited in ascending ID order.
func (s *PebbleStore) RetrieveObjects(visit func(id cbox.ID, r io.Reader) error) error {
	s.mu.Lock()
	ids, err := s.directory()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, id := range ids {
		data, err := s.get(recordKey(id))
		if errors.Is(err, ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading record %d: %w", id, err)
		}
		if err := visit(id, bytes.NewReader(data)); err != nil {
			return err
		}
	}
	return nil
}

// DisposeObject implements Storage.
func (s *PebbleStore) DisposeObject(id cbox.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.directory()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	pos, exists := slices.BinarySearch(ids, id)
	if !exists {
		return nil
	}
	prev, err := s.get(recordKey(id))
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(recordKey(id), nil); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := batch.Set(directoryKey, encodeDirectory(slices.Delete(ids, pos, pos+1)), nil); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	s.total -= len(prev)
	return nil
}

// Clear implements Storage.
func (s *PebbleStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.directory()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, id := range ids {
		if err := batch.Delete(recordKey(id), nil); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}
	if err := batch.Delete(directoryKey, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	s.total = 0
	return nil
}
