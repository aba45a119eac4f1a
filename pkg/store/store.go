// Package store provides namespaced JSON persistence on top of a simple
// key-value medium. When the medium is missing or unusable the Store keeps
// working as a no-op: writes report failure and reads return the caller's
// default, so gameplay can continue in memory.
package store

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// DefaultPrefix namespaces every key written by the quiz.
const DefaultPrefix = "vocabQuiz_"

const probeKey = "__probe__"

// Medium is the underlying storage the Store writes to.
type Medium interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
}

// SizeInfo summarizes what the Store currently holds.
type SizeInfo struct {
	ItemCount  int `json:"itemCount"`
	TotalBytes int `json:"totalBytes"`
}

// Store is a namespaced JSON key-value store.
type Store struct {
	medium Medium
	prefix string
	logger *slog.Logger

	probeOnce sync.Once
	available bool
	warnOnce  sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithLogger sets the logger used for degraded-mode reporting.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over m. A nil medium yields a permanently degraded Store.
func New(m Medium, opts ...Option) *Store {
	s := &Store{
		medium: m,
		prefix: DefaultPrefix,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Available reports whether values are actually being persisted.
// The first call probes the medium.
func (s *Store) Available() bool {
	s.probeOnce.Do(s.probe)
	return s.available
}

func (s *Store) probe() {
	if s.medium == nil {
		s.degrade("probe", nil)
		return
	}
	k := s.prefix + probeKey
	if err := s.medium.Set(k, "1"); err != nil {
		s.degrade("probe write", err)
		return
	}
	v, ok, err := s.medium.Get(k)
	if err != nil || !ok || v != "1" {
		s.degrade("probe read", err)
		return
	}
	if err := s.medium.Remove(k); err != nil {
		s.degrade("probe remove", err)
		return
	}
	s.available = true
}

// degrade logs the storage failure once for the lifetime of the Store.
func (s *Store) degrade(op string, err error) {
	s.warnOnce.Do(func() {
		s.logger.Warn("storage unavailable, progress will not be saved", "op", op, "error", err)
	})
}

func (s *Store) fullKey(key string) string { return s.prefix + key }

// getRaw returns the stored JSON text for key, if any.
func (s *Store) getRaw(key string) (string, bool) {
	if !s.Available() {
		return "", false
	}
	v, ok, err := s.medium.Get(s.fullKey(key))
	if err != nil {
		s.degrade("get", err)
		return "", false
	}
	return v, ok
}

func (s *Store) setRaw(key, raw string) bool {
	if !s.Available() {
		return false
	}
	if err := s.medium.Set(s.fullKey(key), raw); err != nil {
		s.degrade("set", err)
		return false
	}
	return true
}

// Get decodes the value stored under key into a T. Missing, null, corrupt or
// wrongly shaped values yield def.
func Get[T any](s *Store, key string, def T) T {
	raw, ok := s.getRaw(key)
	if !ok || strings.TrimSpace(raw) == "null" {
		return def
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.logger.Debug("ignoring malformed stored value", "key", key, "error", err)
		return def
	}
	return v
}

// Has reports whether a value exists under key.
func (s *Store) Has(key string) bool {
	_, ok := s.getRaw(key)
	return ok
}

// Set encodes v as JSON and stores it under key.
func (s *Store) Set(key string, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode stored value", "key", key, "error", err)
		return false
	}
	return s.setRaw(key, string(b))
}

// Remove deletes key.
func (s *Store) Remove(key string) bool {
	if !s.Available() {
		return false
	}
	if err := s.medium.Remove(s.fullKey(key)); err != nil {
		s.degrade("remove", err)
		return false
	}
	return true
}

// shortKeys lists the namespaced keys with the prefix stripped, sorted.
func (s *Store) shortKeys() []string {
	if !s.Available() {
		return nil
	}
	keys, err := s.medium.Keys()
	if err != nil {
		s.degrade("keys", err)
		return nil
	}
	var out []string
	for _, k := range keys {
		if !strings.HasPrefix(k, s.prefix) {
			continue
		}
		short := strings.TrimPrefix(k, s.prefix)
		if short == probeKey || short == "" {
			continue
		}
		out = append(out, short)
	}
	sort.Strings(out)
	return out
}

// ExportAll returns every namespaced value keyed by its short key.
// Values that are not valid JSON are skipped.
func (s *Store) ExportAll() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	for _, k := range s.shortKeys() {
		raw, ok := s.getRaw(k)
		if !ok || !json.Valid([]byte(raw)) {
			continue
		}
		out[k] = json.RawMessage(raw)
	}
	return out
}

// ImportAll stores every value in data. It returns false if any value could
// not be stored; the remaining values are still written.
func (s *Store) ImportAll(data map[string]json.RawMessage) bool {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ok := true
	for _, k := range keys {
		raw := data[k]
		if k == "" || !json.Valid(raw) {
			ok = false
			continue
		}
		if !s.setRaw(k, string(raw)) {
			ok = false
		}
	}
	return ok
}

// ClearAll removes every namespaced key, leaving unrelated keys untouched.
func (s *Store) ClearAll() {
	for _, k := range s.shortKeys() {
		s.Remove(k)
	}
}

// SizeInfo reports the number of namespaced items and their size in bytes
// (full key plus value).
func (s *Store) SizeInfo() SizeInfo {
	var info SizeInfo
	for _, k := range s.shortKeys() {
		raw, ok := s.getRaw(k)
		if !ok {
			continue
		}
		info.ItemCount++
		info.TotalBytes += len(s.fullKey(k)) + len(raw)
	}
	return info
}
