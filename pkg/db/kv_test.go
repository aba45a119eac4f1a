package db

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPutAndGetValue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, ok, err := GetValue(db, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := PutValue(db, "vocabQuiz_totalScore", "10"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := PutValue(db, "vocabQuiz_totalScore", "25"); err != nil {
		t.Fatalf("put again: %v", err)
	}
	v, ok, err := GetValue(db, "vocabQuiz_totalScore")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if v != "25" {
		t.Fatalf("expected upserted value 25, got %q", v)
	}

	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 row, got %d", cnt)
	}
}

func TestPutValueRejectsEmptyKey(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if err := PutValue(db, "  ", "x"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestDeleteValue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if err := PutValue(db, "a", "1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := DeleteValue(db, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteValue(db, "a"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if _, ok, _ := GetValue(db, "a"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestListEntriesByPrefix(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	for _, k := range []string{"q_b", "q_a", "other", "q%_literal"} {
		if err := PutValue(db, k, "v"); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	entries, err := ListEntries(db, "q_")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Key != "q_a" || entries[1].Key != "q_b" {
		t.Fatalf("expected ordered keys, got %s, %s", entries[0].Key, entries[1].Key)
	}
	if entries[0].UpdatedAt.IsZero() {
		t.Fatalf("expected updated_at to be set")
	}

	all, err := ListEntries(db, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}
}

func TestKVMedium(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	kv := NewKV(db)
	if err := kv.Set("k1", `{"a":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("k2", `2`); err != nil {
		t.Fatalf("set: %v", err)
	}
	keys, err := kv.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "k1" || keys[1] != "k2" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := kv.Remove("k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := kv.Get("k1"); ok {
		t.Fatalf("expected k1 removed")
	}
}

func TestPutValueConcurrency(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			errs <- PutValue(db, "shared", fmt.Sprintf("%d", i))
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent put: %v", err)
		}
	}
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM kv WHERE key = ?`, "shared").Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 row, got %d", cnt)
	}
}
