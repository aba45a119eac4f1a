package db

import "time"

// Entry is a single row of the key-value table.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
