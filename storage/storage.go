// Package storage persists whole JSON documents (the pantry, the recipe
// catalog) in files, S3 objects or memory.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when the document does not exist yet.
var ErrNotFound = errors.New("document not found")

// Blob loads and saves one document.
type Blob interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// MemoryBlob keeps the document in memory. It is safe for concurrent use.
type MemoryBlob struct {
	mu   sync.RWMutex
	data []byte
	err  error
}

func NewMemoryBlob(data []byte) *MemoryBlob {
	return &MemoryBlob{data: data}
}

// NewMemoryBlobWithError returns a blob whose every call fails with err.
func NewMemoryBlobWithError(err error) *MemoryBlob {
	return &MemoryBlob{err: err}
}

func (m *MemoryBlob) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.data == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *MemoryBlob) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = make([]byte, len(data))
	copy(m.data, data)
	return nil
}
