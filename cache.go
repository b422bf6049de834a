package exprun

import (
	"sync"

	"github.com/jcormont/expression-runner/ir"
)

// DefaultCacheSize is the number of programs kept by a Cache created with a
// size of 0.
const DefaultCacheSize = 1024

// Cache holds compiled programs, so that expressions that are evaluated
// repeatedly are only compiled once. It is safe for concurrent use. When
// full, the program added first is evicted. Validators and transformers are
// not part of the cache key, so a Cache should be used with one set of them.
type Cache struct {
	mu       sync.Mutex
	size     int
	programs map[string]*Program
	order    []string
	hits     int
	misses   int
}

// CacheStats reports the use of a Cache.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// NewCache returns a cache holding at most size programs.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{size: size, programs: map[string]*Program{}}
}

// cacheKey hashes the source together with the options that affect
// compilation.
func cacheKey(source string, cfg *config) (string, error) {
	return ir.Fingerprint(ir.Node{source, cfg.allowAssignment, cfg.allowStatements, cfg.filename})
}

// Compile returns the cached program for source and opts, compiling it if
// needed. Compilation errors are not cached. Programs compiled with
// different evaluation options but the same source share an entry; pass
// those options to Program.Run instead.
func (c *Cache) Compile(source string, opts ...Option) (*Program, error) {
	cfg := newConfig(opts...)
	if cfg.err != nil {
		return nil, cfg.err
	}
	key, err := cacheKey(source, cfg)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if p, ok := c.programs[key]; ok {
		c.hits++
		c.mu.Unlock()
		return p, nil
	}
	c.misses++
	c.mu.Unlock()

	p, err := Compile(source, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.programs[key]; ok {
		return existing, nil
	}
	for len(c.order) >= c.size {
		delete(c.programs, c.order[0])
		c.order = c.order[1:]
	}
	c.programs[key] = p
	c.order = append(c.order, key)
	return p, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.programs)
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.programs), Hits: c.hits, Misses: c.misses}
}

// Clear removes all programs.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs = map[string]*Program{}
	c.order = nil
}
