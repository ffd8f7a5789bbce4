// Package cache is a compiled-bundle build cache: it keys a source
// file's bytecode by a hash of its contents so `stratum run --cache`
// can skip re-lexing/parsing/checking/compiling an unchanged file.
// It is a build-artifact cache, not the §9 allocation profiler that
// spec.md names as out of scope — it stores no object-graph telemetry,
// only gob-encoded vm.Bundle values keyed by hash.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/horizonanalytic/stratum/internal/vm"
)

// Store is a sqlite-backed cache of compiled bundles, pure-Go (cgo-free)
// via modernc.org/sqlite so the CLI stays a single static binary.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path and ensures its
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS bundles (
		hash TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		bundle BLOB NOT NULL,
		cached_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Hash returns the cache key for a source file's contents.
func Hash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached bundle for hash, if present.
func (s *Store) Lookup(hash string) (*vm.Bundle, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT bundle FROM bundles WHERE hash = ?`, hash).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup %s: %w", hash, err)
	}
	b, err := vm.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", hash, err)
	}
	return b, true, nil
}

// Store records a compiled bundle under hash, replacing any prior
// entry for the same key (a source edit changes the hash, so this is
// only reached for identical source re-compiled under a cleared cache).
func (s *Store) Store(hash, sourceFile string, b *vm.Bundle) error {
	data, err := vm.Encode(b)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO bundles (hash, source_file, bundle, cached_at) VALUES (?, ?, ?, ?)`,
		hash, sourceFile, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", hash, err)
	}
	return nil
}

// Entry describes one cached bundle for the `cache` subcommand's listing.
type Entry struct {
	Hash       string
	SourceFile string
	CachedAt   time.Time
	Size       int
}

// List returns every cached entry, most recently cached first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT hash, source_file, cached_at, length(bundle) FROM bundles ORDER BY cached_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("cache: list: %w", err)
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var cachedAt int64
		if err := rows.Scan(&e.Hash, &e.SourceFile, &cachedAt, &e.Size); err != nil {
			return nil, fmt.Errorf("cache: list: %w", err)
		}
		e.CachedAt = time.Unix(cachedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every cached bundle.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM bundles`)
	if err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}
