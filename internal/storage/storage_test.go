package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/database"
	_ "github.com/nerrad567/brewlogic-core/migrations" // registers the objects table
)

type backend struct {
	name string
	open func(t *testing.T, opts ...Option) Storage
}

func openSQLite(t *testing.T, opts ...Option) Storage {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "objects.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return NewSQLiteStore(db, opts...)
}

func openPebble(t *testing.T, opts ...Option) Storage {
	t.Helper()
	s, err := OpenPebbleStore(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var backends = []backend{
	{"memory", func(_ *testing.T, opts ...Option) Storage { return NewMemoryStore(opts...) }},
	{"sqlite", openSQLite},
	{"pebble", openPebble},
}

func writeBytes(data ...byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
}

func readAll(s Storage, id cbox.ID) ([]byte, error) {
	var got []byte
	err := s.RetrieveObject(id, func(r io.Reader) error {
		var err error
		got, err = io.ReadAll(r)
		return err
	})
	return got, err
}

func collect(t *testing.T, s Storage) map[cbox.ID][]byte {
	t.Helper()
	out := map[cbox.ID][]byte{}
	require.NoError(t, s.RetrieveObjects(func(id cbox.ID, r io.Reader) error {
		data, err := io.ReadAll(r)
		out[id] = data
		return err
	}))
	return out
}

func TestStoreRetrieve(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)

			require.NoError(t, s.StoreObject(100, writeBytes(1, 2, 3)))
			require.NoError(t, s.StoreObject(5, writeBytes(9)))

			got, err := readAll(s, 100)
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3}, got)

			require.NoError(t, s.StoreObject(100, writeBytes(4)))
			got, err = readAll(s, 100)
			require.NoError(t, err)
			assert.Equal(t, []byte{4}, got, "store replaces the previous record")

			_, err = readAll(s, 7)
			assert.ErrorIs(t, err, ErrRecordNotFound)
			assert.Equal(t, cbox.StatusPersistedObjectNotFound, cbox.StatusOf(err))
		})
	}
}

func TestStoreWriterFailureKeepsRecord(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			require.NoError(t, s.StoreObject(100, writeBytes(1)))

			err := s.StoreObject(100, func(io.Writer) error { return cbox.StatusOutputStreamEncodingError })
			assert.Equal(t, cbox.StatusOutputStreamEncodingError, cbox.StatusOf(err))

			got, err := readAll(s, 100)
			require.NoError(t, err)
			assert.Equal(t, []byte{1}, got)
		})
	}
}

func TestRetrieveObjects(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			assert.Empty(t, collect(t, s))

			require.NoError(t, s.StoreObject(101, writeBytes(0xB)))
			require.NoError(t, s.StoreObject(100, writeBytes(0xA)))
			require.NoError(t, s.StoreObject(2, writeBytes(0x2)))

			assert.Equal(t, map[cbox.ID][]byte{
				2:   {0x2},
				100: {0xA},
				101: {0xB},
			}, collect(t, s))
		})
	}
}

func TestRetrieveObjectsStopsOnError(t *testing.T) {
	stop := errors.New("stop")
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			require.NoError(t, s.StoreObject(100, writeBytes(1)))
			require.NoError(t, s.StoreObject(101, writeBytes(2)))

			visits := 0
			err := s.RetrieveObjects(func(cbox.ID, io.Reader) error {
				visits++
				return stop
			})
			assert.ErrorIs(t, err, stop)
			assert.Equal(t, 1, visits)
		})
	}
}

func TestRetrieveObjectsAllowsNestedAccess(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			require.NoError(t, s.StoreObject(100, writeBytes(1)))
			require.NoError(t, s.StoreObject(101, writeBytes(2)))
			require.NoError(t, s.StoreObject(102, writeBytes(3)))

			var visited []cbox.ID
			err := s.RetrieveObjects(func(id cbox.ID, _ io.Reader) error {
				visited = append(visited, id)
				if id == 100 {
					if _, err := readAll(s, 102); err != nil {
						return err
					}
					if err := s.StoreObject(100, writeBytes(7)); err != nil {
						return err
					}
					return s.DisposeObject(101)
				}
				return nil
			})
			require.NoError(t, err)
			assert.NotContains(t, visited, cbox.ID(101), "records disposed during enumeration are skipped")
			assert.Contains(t, visited, cbox.ID(102))
		})
	}
}

func TestDisposeAndClear(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			require.NoError(t, s.StoreObject(100, writeBytes(1)))
			require.NoError(t, s.StoreObject(101, writeBytes(2)))

			require.NoError(t, s.DisposeObject(100))
			require.NoError(t, s.DisposeObject(100), "disposing a missing record is a no-op")
			_, err := readAll(s, 100)
			assert.ErrorIs(t, err, ErrRecordNotFound)

			require.NoError(t, s.Clear())
			assert.Empty(t, collect(t, s))
		})
	}
}

func TestCapacity(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, WithCapacity(4))

			require.NoError(t, s.StoreObject(100, writeBytes(1, 2)))
			require.NoError(t, s.StoreObject(101, writeBytes(3, 4)))

			err := s.StoreObject(102, writeBytes(5))
			assert.ErrorIs(t, err, ErrInsufficientSpace)
			assert.Equal(t, cbox.StatusInsufficientPersistentStorage, cbox.StatusOf(err))

			require.NoError(t, s.StoreObject(101, writeBytes(3)), "shrinking a record fits")
			require.NoError(t, s.StoreObject(102, writeBytes(5)))

			require.NoError(t, s.DisposeObject(100))
			require.NoError(t, s.StoreObject(103, writeBytes(6, 7)))

			_, err = readAll(s, 100)
			assert.ErrorIs(t, err, ErrRecordNotFound)
		})
	}
}

func TestPebbleStoreReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenPebbleStore(dir, WithCapacity(3))
	require.NoError(t, err)
	require.NoError(t, s.StoreObject(100, writeBytes(1, 2)))
	require.NoError(t, s.Close())

	s, err = OpenPebbleStore(dir, WithCapacity(3))
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // Test cleanup

	got, err := readAll(s, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, got)
	assert.ErrorIs(t, s.StoreObject(101, writeBytes(3, 4)), ErrInsufficientSpace, "usage survives reopen")
}

func TestMemoryStoreLen(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.StoreObject(1, writeBytes(1)))
	assert.Equal(t, 1, s.Len())
}
