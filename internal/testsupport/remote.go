package testsupport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"sync"

	"clipvault/internal/clipstore"
)

// MemoryRemote is an in-memory clipstore.RemoteBackend for tests. It also
// counts uploads per name and can be forced to fail.
type MemoryRemote struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads map[string]int

	// FailUploads makes every Upload call return an error.
	FailUploads bool
}

// NewMemoryRemote returns an empty in-memory remote tier.
func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{
		objects: make(map[string][]byte),
		uploads: make(map[string]int),
	}
}

// Seed stores an object directly, bypassing Upload accounting.
func (m *MemoryRemote) Seed(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = append([]byte(nil), data...)
}

// UploadCount reports how many times name was uploaded.
func (m *MemoryRemote) UploadCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads[name]
}

// ObjectCount reports how many distinct objects are stored.
func (m *MemoryRemote) ObjectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *MemoryRemote) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.objects))
	for name := range m.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryRemote) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[name]
	return ok, nil
}

func (m *MemoryRemote) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, errors.New("no such object: " + name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryRemote) Upload(ctx context.Context, name, srcPath string, progress clipstore.ProgressFunc) error {
	if m.FailUploads {
		return errors.New("upload failed (forced)")
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	m.uploads[name]++
	return nil
}

func (m *MemoryRemote) Download(ctx context.Context, name, destPath string) error {
	m.mu.Lock()
	data, ok := m.objects[name]
	m.mu.Unlock()
	if !ok {
		return errors.New("no such object: " + name)
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (m *MemoryRemote) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
	return nil
}
