// Package localstore is the durable local key/value store every write lands
// in first. Values are JSON documents kept in an embedded SQLite file under
// fixed string keys.
package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devfolio/internal/database"
)

// Fixed keys shared by the site.
const (
	KeyProfile    = "site_data"
	KeySkills     = "site_skills"
	KeySkillsPage = "site_skills_page"
	KeyPosts      = "blog_posts"
)

// CommentsKey is the key holding the comment list of one post.
func CommentsKey(postID string) string {
	return "comments_" + postID
}

// Store reads and writes JSON values by key.
type Store struct {
	db *sql.DB
}

// New wraps a database that already carries the kv schema.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the SQLite file at path (":memory:" for a throwaway store).
func Open(path string) (*Store, error) {
	db, err := database.OpenLocal(path)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get decodes the value under key into dest and reports whether it did.
// A missing key and a value that no longer decodes both return false; the
// latter is logged and callers fall back to their default.
func (s *Store) Get(key string, dest any) bool {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		slog.Warn("local store read failed", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		slog.Warn("local store value corrupt, using default", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix, in key order.
func (s *Store) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// putRaw stores an undecoded value. Tests use it to simulate corruption.
func (s *Store) putRaw(key, raw string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, '')`, key, raw)
	return err
}
