// Package storagetest provides an in-memory ObjectStore for tests.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Epistemic-Technology/pdf-splitter/internal/storage"
)

var _ storage.ObjectStore = (*MemoryStore)(nil)

// Object is a stored object.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps containers and objects in maps. Fail* fields inject errors.
type MemoryStore struct {
	mu         sync.Mutex
	containers map[string]map[string]Object

	// FailUploadAfter makes every upload after the first n fail when >= 0.
	FailUploadAfter int
	// FailEnsure makes EnsureContainer fail.
	FailEnsure bool

	uploads int
}

// NewMemoryStore creates an empty store with fault injection disabled.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		containers:      make(map[string]map[string]Object),
		FailUploadAfter: -1,
	}
}

// Put seeds an object, creating its container.
func (m *MemoryStore) Put(container, name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.container(container)[name] = Object{Data: data}
}

// CreateContainer seeds an empty container.
func (m *MemoryStore) CreateContainer(container string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.container(container)
}

// HasContainer reports whether the container exists.
func (m *MemoryStore) HasContainer(container string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.containers[container]
	return ok
}

// Get returns a stored object.
func (m *MemoryStore) Get(container, name string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.containers[container][name]
	return obj, ok
}

// Names returns the sorted object names in a container.
func (m *MemoryStore) Names(container string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name := range m.containers[container] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Uploads returns the number of successful uploads.
func (m *MemoryStore) Uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}

func (m *MemoryStore) container(name string) map[string]Object {
	c, ok := m.containers[name]
	if !ok {
		c = make(map[string]Object)
		m.containers[name] = c
	}
	return c
}

func (m *MemoryStore) EnsureContainer(ctx context.Context, container string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEnsure {
		return fmt.Errorf("injected failure creating container %s", container)
	}
	m.container(container)
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, container, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.containers[container][name]
	return ok, nil
}

func (m *MemoryStore) Download(ctx context.Context, container, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.containers[container][name]
	if !ok {
		return nil, fmt.Errorf("object %s not found", storage.ObjectLocation(container, name))
	}
	return obj.Data, nil
}

func (m *MemoryStore) Upload(ctx context.Context, container, name string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUploadAfter >= 0 && m.uploads >= m.FailUploadAfter {
		return fmt.Errorf("injected failure uploading %s", storage.ObjectLocation(container, name))
	}
	c, ok := m.containers[container]
	if !ok {
		return fmt.Errorf("container %s does not exist", container)
	}
	c[name] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	m.uploads++
	return nil
}
