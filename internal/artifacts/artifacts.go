// Package artifacts stores generated banners, thumbnails and pages.
package artifacts

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned for a key with no stored object.
var ErrNotFound = errors.New("artifact not found")

// Ref locates a stored artifact.
type Ref struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Store persists artifacts by key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (Ref, error)
	Get(ctx context.Context, key string) ([]byte, string, error)
}

// MemoryStore keeps artifacts in memory.
type MemoryStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]object
}

type object struct {
	contentType string
	data        []byte
}

// NewMemoryStore creates a store whose URLs are baseURL joined with the key.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]object)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key, contentType string, data []byte) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{contentType: contentType, data: append([]byte(nil), data...)}
	return Ref{Key: key, URL: JoinURL(s.baseURL, key)}, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return append([]byte(nil), obj.data...), obj.contentType, nil
}

// Len returns the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// JoinURL joins a base URL and an object key with exactly one slash.
func JoinURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
