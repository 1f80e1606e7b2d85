package structure

import (
	"context"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of structure trees a CachedSource keeps.
const DefaultCacheSize = 1024

// cacheKey identifies one version of a file on disk.
type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

// documentSource is implemented by sources that read a document other than
// the source file itself, such as FileSource.
type documentSource interface {
	DocumentPath(path string) string
}

// CachedSource memoizes another Source by file path, size and modification
// time, so unchanged files are not re-analyzed across repeated builds. When
// the wrapped source reads a separate document, that document is the one
// stat'ed.
type CachedSource struct {
	next  Source
	cache *lru.Cache[cacheKey, Node]
}

// NewCachedSource wraps next with an LRU cache holding up to size trees.
func NewCachedSource(next Source, size int) (*CachedSource, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, Node](size)
	if err != nil {
		return nil, fmt.Errorf("structure cache: %w", err)
	}
	return &CachedSource{next: next, cache: c}, nil
}

// Structure returns the cached tree for path, analyzing it on a miss.
// Files that cannot be stat'ed bypass the cache.
func (s *CachedSource) Structure(ctx context.Context, path string) (Node, error) {
	statPath := path
	if d, ok := s.next.(documentSource); ok {
		statPath = d.DocumentPath(path)
	}
	info, err := os.Stat(statPath)
	if err != nil {
		return s.next.Structure(ctx, path)
	}
	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if node, ok := s.cache.Get(key); ok {
		return node, nil
	}

	node, err := s.next.Structure(ctx, path)
	if err != nil {
		return Node{}, err
	}
	s.cache.Add(key, node)
	return node, nil
}

// Len returns the number of cached trees.
func (s *CachedSource) Len() int {
	return s.cache.Len()
}
