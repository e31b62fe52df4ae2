package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store is a byte-oriented cache backend. Keys built with Key carry their
// namespace as the leading segment.
type Store interface {
	Get(ctx context.Context, key string) Result[[]byte]
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

// Key returns "<namespace>:<operation>:<sha256 of parts as JSON>". Map keys
// are sorted by encoding/json so equal inputs give equal keys.
func Key(namespace, operation string, parts ...any) string {
	b, err := json.Marshal(parts)
	if err != nil {
		b = []byte(fmt.Sprintf("%#v", parts))
	}
	sum := sha256.Sum256(b)
	return namespace + ":" + operation + ":" + hex.EncodeToString(sum[:])
}

func namespaceOf(key string) string {
	ns, _, _ := strings.Cut(key, ":")
	return ns
}

// NopStore never stores anything.
type NopStore struct{}

func (NopStore) Get(context.Context, string) Result[[]byte] { return Miss[[]byte]() }

func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NopStore) InvalidateNamespace(context.Context, string) error { return nil }

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is an in-process Store with per-entry expiry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{entries: map[string]memoryEntry{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) Result[[]byte] {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Miss[[]byte]()
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return Miss[[]byte]()
	}
	return Hit(append([]byte(nil), e.value...))
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if namespaceOf(key) == namespace {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
