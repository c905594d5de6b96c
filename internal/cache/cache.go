// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists serialized records between export runs so
// unchanged items are not re-encoded. Entries are keyed by item identity
// and dialect; the citekey is stored alongside for inspection.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bibexport/pkg/types"
)

const dbFile = "exports.db"

// Store manages the export cache SQLite database. It serializes its own
// writes; the engine treats it as an opaque append target.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at dir/exports.db, creating
// the schema if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			item_id TEXT NOT NULL,
			dialect TEXT NOT NULL,
			citekey TEXT NOT NULL,
			bibtex TEXT NOT NULL,
			exported_at TEXT NOT NULL,
			PRIMARY KEY (item_id, dialect)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_citekey ON exports(citekey)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the cached record text for an item, or "" when the entry is
// missing or was produced under a different citekey.
func (s *Store) Get(ctx context.Context, itemID string, dialect types.Dialect, citekey string) (string, error) {
	var text, storedKey string
	err := s.db.QueryRowContext(ctx,
		`SELECT bibtex, citekey FROM exports WHERE item_id = ? AND dialect = ?`,
		itemID, string(dialect),
	).Scan(&text, &storedKey)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading cache entry: %w", err)
	}
	if storedKey != citekey {
		return "", nil
	}
	return text, nil
}

// Put stores one serialized record.
func (s *Store) Put(ctx context.Context, itemID string, dialect types.Dialect, citekey, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (item_id, dialect, citekey, bibtex, exported_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(item_id, dialect) DO UPDATE SET
			citekey=excluded.citekey, bibtex=excluded.bibtex,
			exported_at=excluded.exported_at`,
		itemID, string(dialect), citekey, text,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear drops all entries, or only one dialect's entries when dialect is
// non-empty.
func (s *Store) Clear(ctx context.Context, dialect types.Dialect) (int64, error) {
	var res sql.Result
	var err error
	if dialect == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM exports`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM exports WHERE dialect = ?`, string(dialect))
	}
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Count returns the number of cached entries per dialect.
func (s *Store) Count(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dialect, count(*) FROM exports GROUP BY dialect`)
	if err != nil {
		return nil, fmt.Errorf("counting cache entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var dialect string
		var n int
		if err := rows.Scan(&dialect, &n); err != nil {
			return nil, fmt.Errorf("scanning cache count: %w", err)
		}
		counts[dialect] = n
	}
	return counts, rows.Err()
}
