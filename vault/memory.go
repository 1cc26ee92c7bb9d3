package vault

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryStorage is an in-process Storage for tests and dry runs.
// Paths are slash-separated and cleaned before use.
type MemoryStorage struct {
	// MoveFunc is consulted before every move if set. A non-nil error
	// aborts the move and leaves both paths untouched.
	MoveFunc func(sourceURL, destURL string) error

	// ListFunc is consulted before every listing if set.
	ListFunc func(dirURL string) error

	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
	moves int
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory tree.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true, ".": true},
	}
}

// Put writes a file, creating parent directories.
func (m *MemoryStorage) Put(URL string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := clean(URL)
	m.mkdirAllLocked(path.Dir(p))
	m.files[p] = append([]byte(nil), data...)
}

// Moves returns the number of successful moves.
func (m *MemoryStorage) Moves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.moves
}

func (m *MemoryStorage) List(ctx context.Context, dirURL string) ([]Entry, error) {
	if m.ListFunc != nil {
		if err := m.ListFunc(dirURL); err != nil {
			return nil, err
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir := clean(dirURL)
	if !m.dirs[dir] {
		return nil, fmt.Errorf("list %s: %w", dirURL, fs.ErrNotExist)
	}
	prefix := dir + "/"
	if dir == "/" {
		prefix = "/"
	}

	var entries []Entry
	for p := range m.dirs {
		if name, ok := childName(p, prefix); ok {
			entries = append(entries, Entry{Name: name, URL: p, IsDir: true})
		}
	}
	for p := range m.files {
		if name, ok := childName(p, prefix); ok {
			entries = append(entries, Entry{Name: name, URL: p})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MemoryStorage) Exists(ctx context.Context, URL string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := clean(URL)
	_, isFile := m.files[p]
	return isFile || m.dirs[p], nil
}

func (m *MemoryStorage) MkdirAll(ctx context.Context, URL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := clean(URL)
	if _, isFile := m.files[p]; isFile {
		return fmt.Errorf("mkdir %s: %w", URL, fs.ErrExist)
	}
	m.mkdirAllLocked(p)
	return nil
}

func (m *MemoryStorage) Move(ctx context.Context, sourceURL, destURL string) error {
	if m.MoveFunc != nil {
		if err := m.MoveFunc(sourceURL, destURL); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	src, dst := clean(sourceURL), clean(destURL)
	data, ok := m.files[src]
	if !ok {
		return fmt.Errorf("move %s: %w", sourceURL, fs.ErrNotExist)
	}
	if !m.dirs[path.Dir(dst)] {
		return fmt.Errorf("move to %s: parent %w", destURL, fs.ErrNotExist)
	}
	m.files[dst] = data
	delete(m.files, src)
	m.moves++
	return nil
}

func (m *MemoryStorage) ReadAll(ctx context.Context, URL string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[clean(URL)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", URL, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStorage) mkdirAllLocked(p string) {
	for p != "/" && p != "." && !m.dirs[p] {
		m.dirs[p] = true
		p = path.Dir(p)
	}
}

func clean(URL string) string {
	return path.Clean(URL)
}

func childName(p, prefix string) (string, bool) {
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	rest := p[len(prefix):]
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
