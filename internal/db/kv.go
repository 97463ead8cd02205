package db

import (
	"context"
	"sync"
)

// KVStore is the durable storage collaborator: key to JSON blob. Readers must
// tolerate absent keys; callers treat write failures as "operate in-memory
// for this session", never as fatal.
type KVStore interface {
	// Get returns the blob for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores the blob under key, replacing any prior value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// MemoryKV is the in-process KVStore used by tests and as the degraded-mode
// fallback when no durable backend is configured.
type MemoryKV struct {
	mu    sync.RWMutex
	blobs map[string]string
}

var _ KVStore = (*MemoryKV)(nil)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{blobs: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.blobs[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = value
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MemoryKV) Ping(_ context.Context) error { return nil }

func (m *MemoryKV) Close() error { return nil }
