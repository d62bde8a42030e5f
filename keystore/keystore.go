// Package keystore keeps generated AES keys and IVs in a local SQLite file so
// that encrypt and decrypt can refer to them by ID.
//
// Key material is stored in clear. The store is a convenience for local use,
// not a key management service.
package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("key not found")

const memoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS keys (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	key_hex    TEXT NOT NULL,
	iv_hex     TEXT NOT NULL,
	mode       TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// Record is one stored key with its IV and preferred mode.
type Record struct {
	ID        string
	Name      string    `validate:"max=128"`
	KeyHex    string    `validate:"required,len=32,hexadecimal"`
	IVHex     string    `validate:"required,len=32,hexadecimal"`
	Mode      string    `validate:"required,oneof=cbc ecb"`
	CreatedAt time.Time
}

// Validate checks the record fields before they are written.
func (r *Record) Validate() error {
	validate := validator.New()

	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("validation failed for Record: %w", err)
	}
	return nil
}

// Store is a handle to an open keystore database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the keystore at path. ":memory:" gives a
// throwaway store.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if path != memoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create keystore dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open keystore %q: %w", path, err)
	}
	if path == memoryPath {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init keystore %q: %w", path, err)
	}

	return &Store{db: db, log: log}, nil
}

// Put validates and inserts rec. An empty ID is replaced with a new UUID and
// a zero CreatedAt with the current time; both are written back to rec.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO keys (id, name, key_hex, iv_hex, mode, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.KeyHex, rec.IVHex, rec.Mode, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store key %s: %w", rec.ID, err)
	}

	s.log.Info("key stored", zap.String("id", rec.ID), zap.String("name", rec.Name))
	return nil
}

// Get returns the record with the given ID or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, key_hex, iv_hex, mode, created_at FROM keys WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch key %s: %w", id, err)
	}
	return rec, nil
}

// List returns all records, oldest first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, key_hex, iv_hex, mode, created_at FROM keys ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list keys: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the record with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM keys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.log.Info("key deleted", zap.String("id", id))
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec     Record
		created int64
	)
	if err := sc.Scan(&rec.ID, &rec.Name, &rec.KeyHex, &rec.IVHex, &rec.Mode, &created); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return &rec, nil
}
