// Package artifact stores exported diagrams in an object bucket.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"path"
	"sort"
	"strings"
	"sync"
)

// Store defines operations for persisting exported diagrams.
type Store interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	GetURL(ctx context.Context, key string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

var ErrNotFound = errors.New("artifact not found")

// Key derives the object key of an export: the first 16 hex digits of the
// content digest, then the file name. Identical exports share a key.
func Key(name string, content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:8]) + "/" + strings.TrimLeft(path.Clean("/"+name), "/")
}

// ContentType guesses the MIME type from the file extension.
func ContentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Upload stores an export under its derived key and returns the key with a
// URL to fetch it.
func Upload(ctx context.Context, s Store, name string, content []byte) (key, url string, err error) {
	if s == nil {
		return "", "", fmt.Errorf("store is nil")
	}
	key = Key(name, content)
	if err := s.Put(ctx, key, content, ContentType(key)); err != nil {
		return "", "", fmt.Errorf("put %s: %w", key, err)
	}
	url, err = s.GetURL(ctx, key)
	if err != nil {
		return key, "", fmt.Errorf("url for %s: %w", key, err)
	}
	return key, url, nil
}

// MemoryStore keeps artifacts in process. It backs tests and servers running
// without a bucket.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *MemoryStore) Put(_ context.Context, key string, content []byte, _ string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) GetURL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", ErrNotFound
	}
	return s.baseURL + "/" + key, nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
