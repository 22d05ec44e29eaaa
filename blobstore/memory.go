package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// MemoryStore keeps blobs in a map. It is meant for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	puts  atomic.Int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Open returns a reader over the current content of name. Later Puts do not
// affect an open blob.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return memoryBlob{bytes.NewReader(data)}, nil
}

// Put replaces name with a copy of data.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	data = bytes.Clone(data)
	if data == nil {
		data = []byte{}
	}

	m.mu.Lock()
	m.blobs[name] = data
	m.mu.Unlock()
	m.puts.Add(1)
	return nil
}

// Delete removes name. Deleting a missing blob is not an error.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.blobs, name)
	m.mu.Unlock()
	return nil
}

// List returns the sorted names starting with prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := slices.Sorted(maps.Keys(m.blobs))
	return slices.DeleteFunc(names, func(name string) bool {
		return !strings.HasPrefix(name, prefix)
	}), nil
}

// Puts counts successful Put calls.
func (m *MemoryStore) Puts() int {
	return int(m.puts.Load())
}

type memoryBlob struct {
	r *bytes.Reader
}

// ReadAt follows io.ReaderAt: a short read returns io.EOF.
func (b memoryBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return b.r.ReadAt(p, off)
}

func (b memoryBlob) Close() error { return nil }

func (b memoryBlob) Size() int64 { return b.r.Size() }
