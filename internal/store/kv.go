package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Key addresses a value. Segments are arbitrary strings.
type Key []string

// K builds a Key from segments.
func K(segments ...string) Key {
	return Key(segments)
}

// Append returns a new key with extra segments.
func (k Key) Append(segments ...string) Key {
	out := make(Key, 0, len(k)+len(segments))
	out = append(out, k...)
	return append(out, segments...)
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

var segmentEscaper = strings.NewReplacer("%", "%25", "/", "%2F")

// encode joins escaped segments with "/" so that prefixes of a key encode
// to prefixes of its encoding.
func (k Key) encode() string {
	parts := make([]string, len(k))
	for i, seg := range k {
		parts[i] = segmentEscaper.Replace(seg)
	}
	return strings.Join(parts, "/")
}

// Get decodes the value stored under key into dst.
// Returns false (and leaves dst untouched) if the key is absent.
func (s *Store) Get(ctx context.Context, key Key, dst any) (bool, error) {
	raw, ok, err := s.getRaw(ctx, key.encode())
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v under key as JSON, replacing any previous value.
func (s *Store) Set(ctx context.Context, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	enc := key.encode()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, enc, raw, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	s.remember(enc, raw)
	return nil
}

// Delete removes the value under key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key Key) error {
	enc := key.encode()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, enc); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.forget(func(k string) bool { return k == enc })
	return nil
}

// DeletePrefix removes every value whose key starts with prefix, including
// the value stored at prefix itself.
func (s *Store) DeletePrefix(ctx context.Context, prefix Key) (int64, error) {
	enc := prefix.encode()
	// '0' is the byte after '/', so [enc/, enc0) covers exactly the subtree.
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM entries WHERE key = ? OR (key >= ? AND key < ?)
	`, enc, enc+"/", enc+"0")
	if err != nil {
		return 0, fmt.Errorf("delete prefix %s: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete prefix %s: %w", prefix, err)
	}
	s.forget(func(k string) bool { return k == enc || strings.HasPrefix(k, enc+"/") })
	return n, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (s *Store) getRaw(ctx context.Context, enc string) ([]byte, bool, error) {
	if raw, ok := s.recall(enc); ok {
		return raw, true, nil
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, enc).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", enc, err)
	}

	s.remember(enc, raw)
	return raw, true, nil
}

func (s *Store) recall(enc string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return nil, false
	}
	raw, ok := s.cache[enc]
	return raw, ok
}

func (s *Store) remember(enc string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		s.cache[enc] = raw
	}
}

func (s *Store) forget(match func(string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.cache {
		if match(k) {
			delete(s.cache, k)
		}
	}
}
