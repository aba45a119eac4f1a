package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// GetValue returns the stored value for key. The bool is false when no row exists.
func GetValue(db DBExecutor, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

// PutValue inserts or replaces the value stored under key.
func PutValue(db DBExecutor, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
		  value = excluded.value,
		  updated_at = excluded.updated_at`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func DeleteValue(db DBExecutor, key string) error {
	if _, err := db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ListEntries returns every row whose key starts with prefix, ordered by key.
// An empty prefix lists the whole table.
func ListEntries(db DBExecutor, prefix string) ([]Entry, error) {
	rows, err := db.Query(`SELECT key, value, updated_at FROM kv
		WHERE substr(key, 1, length(?)) = ?
		ORDER BY key`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// KV adapts a database handle to the key-value medium used by the store package.
type KV struct {
	DB DBExecutor
}

// NewKV wraps db as a key-value medium.
func NewKV(db DBExecutor) *KV {
	return &KV{DB: db}
}

func (kv *KV) Get(key string) (string, bool, error) { return GetValue(kv.DB, key) }

func (kv *KV) Set(key, value string) error { return PutValue(kv.DB, key, value) }

func (kv *KV) Remove(key string) error { return DeleteValue(kv.DB, key) }

// Keys lists every key in the table.
func (kv *KV) Keys() ([]string, error) {
	entries, err := ListEntries(kv.DB, "")
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}
