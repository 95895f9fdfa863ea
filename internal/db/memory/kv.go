// Package memory provides an in-process db.KVStore used by tests and by
// deployments running without Redis.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/smart-mall/concierge/internal/db"
)

// KV is a mutex-guarded in-memory key-value store. Safe for concurrent use.
// TTLs are honored lazily on read.
type KV struct {
	mu      sync.RWMutex
	data    map[string][]byte
	expires map[string]time.Time
}

var _ db.KVStore = (*KV)(nil)

// NewKV creates an empty in-memory KV store.
func NewKV() *KV {
	return &KV{
		data:    make(map[string][]byte),
		expires: make(map[string]time.Time),
	}
}

// Get retrieves a value by key.
func (s *KV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if exp, ok := s.expires[key]; ok && time.Now().After(exp) {
		return nil, db.ErrKeyNotFound
	}
	v, ok := s.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a value at the given key.
func (s *KV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	delete(s.expires, key)
	return nil
}

// SetWithTTL stores a value with an expiration.
func (s *KV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	s.expires[key] = time.Now().Add(ttl)
	return nil
}

// Del deletes a key.
func (s *KV) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	delete(s.expires, key)
	return nil
}

// Scan returns live keys matching a glob pattern. Only the trailing-star
// form ("prefix*") is supported, which is all the embedding cache needs.
func (s *KV) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")

	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	now := time.Now()
	for k := range s.data {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if exp, ok := s.expires[k]; ok && now.After(exp) {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Len returns the number of live keys.
func (s *KV) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	now := time.Now()
	for k := range s.data {
		if exp, ok := s.expires[k]; ok && now.After(exp) {
			continue
		}
		n++
	}
	return n
}

// Flush removes every key.
func (s *KV) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)
	s.expires = make(map[string]time.Time)
}
