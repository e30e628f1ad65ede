// Package cache stores analysis responses in SQLite so unchanged chunks are
// not sent to the analysis provider twice.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one cached analysis response
type Entry struct {
	Key       string
	Provider  string
	Model     string
	Response  string
	Hits      int
	CreatedAt time.Time
}

// Stats summarizes the cache contents
type Stats struct {
	Entries   int
	Hits      int
	Providers map[string]int
}

// Store manages the SQLite response cache
type Store struct {
	db     *sql.DB
	dbPath string
}

// Key derives the cache key for a chunk. The display path is part of the
// key because the response names the file and chunk it was asked about.
func Key(provider, model, displayPath, content string) string {
	h := sha256.New()
	for _, field := range []string{provider, model, displayPath} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// NewStore opens (creating if needed) the cache database at dbPath
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return openAndInitStore(dbPath)
}

func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps an in-memory database visible to every query.
	db.SetMaxOpenConns(1)

	// busy_timeout must be set first so the rest wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry retries stmt with exponential backoff while the database
// is locked by another process
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the cached response for key and counts the hit
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var response string
	err := s.db.QueryRowContext(ctx, `SELECT response FROM analysis_cache WHERE cache_key = ?`, key).Scan(&response)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query cache entry: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE analysis_cache SET hits = hits + 1, last_hit_at = CURRENT_TIMESTAMP WHERE cache_key = ?`, key); err != nil {
		return "", false, fmt.Errorf("update cache hits: %w", err)
	}
	return response, true, nil
}

// Put stores or replaces an entry
func (s *Store) Put(ctx context.Context, e Entry) error {
	if e.Key == "" {
		return errors.New("cache entry has no key")
	}
	query := `INSERT INTO analysis_cache (cache_key, provider, model, response)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			response = excluded.response,
			provider = excluded.provider,
			model = excluded.model,
			created_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, e.Key, e.Provider, e.Model, e.Response); err != nil {
		return fmt.Errorf("insert cache entry: %w", err)
	}
	return nil
}

// Lookup returns the full entry for key without counting a hit
func (s *Store) Lookup(ctx context.Context, key string) (*Entry, error) {
	e := &Entry{}
	err := s.db.QueryRowContext(ctx,
		`SELECT cache_key, provider, model, response, hits, created_at FROM analysis_cache WHERE cache_key = ?`, key).
		Scan(&e.Key, &e.Provider, &e.Model, &e.Response, &e.Hits, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cache entry: %w", err)
	}
	return e, nil
}

// Stats counts entries, hits and entries per provider
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Providers: make(map[string]int)}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(hits), 0) FROM analysis_cache`).Scan(&stats.Entries, &stats.Hits); err != nil {
		return nil, fmt.Errorf("query cache totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT provider, COUNT(*) FROM analysis_cache GROUP BY provider`)
	if err != nil {
		return nil, fmt.Errorf("query cache providers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var provider string
		var n int
		if err := rows.Scan(&provider, &n); err != nil {
			return nil, fmt.Errorf("scan provider count: %w", err)
		}
		stats.Providers[provider] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return stats, nil
}

// Clear deletes every entry and returns how many were removed
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count cleared entries: %w", err)
	}
	return n, nil
}
