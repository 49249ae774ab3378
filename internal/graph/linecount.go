package graph

import (
	"bufio"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LineCounter reports the number of lines in a file. The boolean result is
// false when the count is unknown; implementations never return errors
// because a missing or unreadable file is expected input here.
type LineCounter interface {
	CountLines(path string) (int, bool)
}

// DefaultLineCountCacheSize bounds the filesystem counter's cache.
const DefaultLineCountCacheSize = 4096

// FSLineCounter counts lines on the local filesystem behind an LRU cache,
// so repeated violations against the same file hit the disk once.
type FSLineCounter struct {
	cache *lru.Cache[string, int]
}

// NewFSLineCounter creates a filesystem-backed line counter. cacheSize <= 0
// selects the default.
func NewFSLineCounter(cacheSize int) *FSLineCounter {
	if cacheSize <= 0 {
		cacheSize = DefaultLineCountCacheSize
	}
	cache, _ := lru.New[string, int](cacheSize)
	return &FSLineCounter{cache: cache}
}

func (c *FSLineCounter) CountLines(path string) (int, bool) {
	if count, ok := c.cache.Get(path); ok {
		return count, true
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		count++
	}
	if scanner.Err() != nil {
		return 0, false
	}

	c.cache.Add(path, count)
	return count, true
}

// StaticLineCounter serves counts from a fixed map. Used in tests and
// wherever line counts arrive precomputed.
type StaticLineCounter map[string]int

func (c StaticLineCounter) CountLines(path string) (int, bool) {
	count, ok := c[path]
	return count, ok
}
