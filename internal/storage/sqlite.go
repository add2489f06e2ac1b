package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/database"
)

// queryTimeout bounds every statement. Handlers run to completion and cannot
// wait on a locked database indefinitely.
const queryTimeout = 5 * time.Second

// SQLiteStore keeps records in the objects table. The schema is created by the
// embedded migrations; call db.Migrate before use.
type SQLiteStore struct {
	db   *database.DB
	opts options
}

// NewSQLiteStore creates a store over db.
func NewSQLiteStore(db *database.DB, opts ...Option) *SQLiteStore {
	return &SQLiteStore{db: db, opts: buildOptions(opts)}
}

func queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}

// StoreObject implements Storage.
func (s *SQLiteStore) StoreObject(id cbox.ID, write func(w io.Writer) error) error {
	data, err := render(write)
	if err != nil {
		return err
	}

	ctx, cancel := queryContext()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if s.opts.capacity > 0 {
		var others int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(LENGTH(data)), 0) FROM objects WHERE id != ?`, int(id),
		).Scan(&others)
		if err != nil {
			return fmt.Errorf("%w: measuring usage: %w", ErrWriteFailed, err)
		}
		if !s.opts.fits(others, 0, len(data)) {
			return ErrInsufficientSpace
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO objects (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		int(id), data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %w", ErrWriteFailed, err)
	}
	return nil
}

func (s *SQLiteStore) load(id cbox.ID) ([]byte, error) {
	ctx, cancel := queryContext()
	defer cancel()

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM objects WHERE id = ?`, int(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading record %d: %w", id, err)
	}
	return data, nil
}

// RetrieveObject implements Storage.
func (s *SQLiteStore) RetrieveObject(id cbox.ID, read func(r io.Reader) error) error {
	data, err := s.load(id)
	if err != nil {
		return err
	}
	return read(bytes.NewReader(data))
}

// RetrieveObjects implements Storage. The ID list is read first and each
// record is loaded just before its visit, so no cursor is open while visit
// runs and only one record is in memory at a time.
func (s *SQLiteStore) RetrieveObjects(visit func(id cbox.ID, r io.Reader) error) error {
	ids, err := s.ids()
	if err != nil {
		return err
	}
	for _, id := range ids {
		data, err := s.load(id)
		if errors.Is(err, ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := visit(id, bytes.NewReader(data)); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ids() ([]cbox.ID, error) {
	ctx, cancel := queryContext()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM objects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var ids []cbox.ID
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning record id: %w", err)
		}
		ids = append(ids, cbox.ID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return ids, nil
}

// DisposeObject implements Storage.
func (s *SQLiteStore) DisposeObject(id cbox.ID) error {
	ctx, cancel := queryContext()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, int(id)); err != nil {
		return fmt.Errorf("%w: disposing %d: %w", ErrWriteFailed, id, err)
	}
	return nil
}

// Clear implements Storage.
func (s *SQLiteStore) Clear() error {
	ctx, cancel := queryContext()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM objects`); err != nil {
		return fmt.Errorf("%w: clearing: %w", ErrWriteFailed, err)
	}
	return nil
}
