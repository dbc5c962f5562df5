package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process ObjectStore used for local runs and
// tests. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]memoryObject
}

type memoryObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		namespaces: make(map[string]map[string]memoryObject),
	}
}

// EnsureNamespace creates the namespace if it does not exist
func (m *MemoryStore) EnsureNamespace(ctx context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.namespaces[namespace]; !ok {
		m.namespaces[namespace] = make(map[string]memoryObject)
	}
	return nil
}

// NamespaceExists checks if a namespace exists
func (m *MemoryStore) NamespaceExists(ctx context.Context, namespace string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.namespaces[namespace]
	return ok, nil
}

// DeleteNamespace removes a namespace and every object in it
func (m *MemoryStore) DeleteNamespace(ctx context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.namespaces, namespace)
	return nil
}

// Upload stores an object, reading the body fully into memory
func (m *MemoryStore) Upload(ctx context.Context, namespace, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		return fmt.Errorf("namespace %s does not exist", namespace)
	}
	ns[key] = memoryObject{
		data:         data,
		contentType:  contentType,
		lastModified: time.Now().UTC(),
	}
	return nil
}

// Download returns a reader over a copy of the stored object
func (m *MemoryStore) Download(ctx context.Context, namespace, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		return nil, fmt.Errorf("namespace %s does not exist", namespace)
	}
	obj, ok := ns[key]
	if !ok {
		return nil, fmt.Errorf("object %s/%s does not exist", namespace, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// List enumerates every object in a namespace, sorted by key
func (m *MemoryStore) List(ctx context.Context, namespace string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		return nil, fmt.Errorf("namespace %s does not exist", namespace)
	}
	objects := make([]ObjectInfo, 0, len(ns))
	for key, obj := range ns {
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			LastModified: obj.lastModified,
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Delete removes an object
func (m *MemoryStore) Delete(ctx context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ns, ok := m.namespaces[namespace]; ok {
		delete(ns, key)
	}
	return nil
}

// Exists checks if an object exists
func (m *MemoryStore) Exists(ctx context.Context, namespace, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		return false, nil
	}
	_, ok = ns[key]
	return ok, nil
}

// ContentType returns the stored content type of an object. Test helper.
func (m *MemoryStore) ContentType(namespace, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ns, ok := m.namespaces[namespace]; ok {
		return ns[key].contentType
	}
	return ""
}
