package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// Storage maps object IDs to persisted records.
type Storage interface {
	// StoreObject runs write against a buffer and stores the result at id,
	// replacing any previous record. If write fails nothing is stored.
	StoreObject(id cbox.ID, write func(w io.Writer) error) error

	// RetrieveObject calls read with the record at id.
	// Returns ErrRecordNotFound when no record exists.
	RetrieveObject(id cbox.ID, read func(r io.Reader) error) error

	// RetrieveObjects calls visit once per record. Order is backend-specific.
	// Enumeration stops at the first error returned by visit.
	RetrieveObjects(visit func(id cbox.ID, r io.Reader) error) error

	// DisposeObject removes the record at id. Missing records are not an error.
	DisposeObject(id cbox.ID) error

	// Clear removes every record.
	Clear() error
}

// Domain errors for the storage package. Each wraps the status written on the
// wire, so cbox.StatusOf works on errors returned by any backend.
var (
	// ErrRecordNotFound is returned when no record exists for an ID.
	ErrRecordNotFound = fmt.Errorf("storage: record not found: %w", cbox.StatusPersistedObjectNotFound)

	// ErrInsufficientSpace is returned when a record does not fit in the configured capacity.
	ErrInsufficientSpace = fmt.Errorf("storage: insufficient space: %w", cbox.StatusInsufficientPersistentStorage)

	// ErrWriteFailed is returned when the backend rejects a write.
	ErrWriteFailed = fmt.Errorf("storage: write failed: %w", cbox.StatusPersistedStorageWriteError)
)

type options struct {
	capacity int
}

// Option configures a backend.
type Option func(*options)

// WithCapacity bounds the total size in bytes of all records. Zero means unbounded.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// render runs a record writer into memory.
func render(write func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fits reports whether a record of size n can replace one of size old given
// the current total.
func (o options) fits(total, old, n int) bool {
	return o.capacity <= 0 || total-old+n <= o.capacity
}
