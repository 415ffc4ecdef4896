package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-process ObjectStore used by tests and local
// development. It records every delete so tests can assert cleanup
// behavior.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	PutErr    error // when set, Put fails with this error
	DeleteErr error // when set, Delete fails with this error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error) {
	if m.PutErr != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, m.PutErr)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()

	return "memory://" + key, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()

	return nil
}

// Deleted returns the keys passed to Delete, in call order.
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
