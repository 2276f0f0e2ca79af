package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"

	_ "modernc.org/sqlite"
)

// DefaultRevisionLimit is how many previous versions of each blob are kept.
const DefaultRevisionLimit = 20

// SQLiteBlobStore keeps blobs in a single SQLite table.
type SQLiteBlobStore struct {
	db            *sql.DB
	revisionLimit int
}

func NewSQLiteBlobStore(dbPath string) (*SQLiteBlobStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY under concurrent HTTP requests
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteBlobStore{db: db, revisionLimit: DefaultRevisionLimit}, nil
}

func (s *SQLiteBlobStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteBlobStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the blob under key. The previous value is moved to
// blob_revisions, trimmed to the newest revisionLimit entries.
func (s *SQLiteBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO blob_revisions (key, data) SELECT key, data FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("keep revision of %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM blob_revisions
		WHERE key = ? AND id NOT IN (
			SELECT id FROM blob_revisions WHERE key = ? ORDER BY id DESC LIMIT ?
		)`, key, key, s.revisionLimit); err != nil {
		return fmt.Errorf("trim revisions of %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data); err != nil {
		return fmt.Errorf("put blob %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit blob %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBlobStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Revisions returns how many previous versions of key are kept.
func (s *SQLiteBlobStore) Revisions(ctx context.Context, key string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blob_revisions WHERE key = ?`, key).Scan(&n); err != nil {
		return 0, fmt.Errorf("count revisions of %s: %w", key, err)
	}
	return n, nil
}
