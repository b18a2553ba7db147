package gallery

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
)

// DefaultCategoryTTL is how long a successful directory read is served.
const DefaultCategoryTTL = 10 * time.Minute

// FallbackCategories is served, never cached, when the portfolio root
// cannot be read.
var FallbackCategories = []string{"cards", "fliers", "letterheads", "logos", "profiles"}

// Categories is the result of CategoryCache.Get. Fallback marks a degraded
// answer; Err carries the read failure behind it.
type Categories struct {
	Names    []string
	Fallback bool
	Err      error
}

// CategoryCache memoizes the subdirectory names of the portfolio root.
//
// The directory is read outside the lock. Two requests that miss at the same
// time may both read and the later write wins. A read that overlaps an
// Invalidate is returned to its caller but not stored.
type CategoryCache struct {
	fs   billy.Filesystem
	root string
	ttl  time.Duration
	now  func() time.Time

	mu         sync.RWMutex
	categories []string
	cachedAt   time.Time
	populated  bool
	generation uint64
}

// CacheOption configures a CategoryCache.
type CacheOption func(*CategoryCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CategoryCache) {
		c.now = now
	}
}

// NewCategoryCache creates an empty cache over the directory root of fsys.
// A non-positive ttl means DefaultCategoryTTL.
func NewCategoryCache(fsys billy.Filesystem, root string, ttl time.Duration, opts ...CacheOption) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	c := &CategoryCache{
		fs:   fsys,
		root: root,
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached categories while they are fresh, otherwise
// re-reads the portfolio root. A failed read leaves the cache untouched and
// returns FallbackCategories for this call only.
func (c *CategoryCache) Get() Categories {
	now := c.now()

	c.mu.RLock()
	if c.populated && now.Sub(c.cachedAt) < c.ttl {
		names := slices.Clone(c.categories)
		c.mu.RUnlock()
		return Categories{Names: names}
	}
	gen := c.generation
	c.mu.RUnlock()

	names, err := c.read()
	if err != nil {
		return Categories{
			Names:    slices.Clone(FallbackCategories),
			Fallback: true,
			Err:      err,
		}
	}

	c.mu.Lock()
	if c.generation == gen {
		c.categories = names
		c.cachedAt = now
		c.populated = true
	}
	c.mu.Unlock()

	return Categories{Names: slices.Clone(names)}
}

// Invalidate empties the cache so the next Get reads the filesystem.
func (c *CategoryCache) Invalidate() {
	c.mu.Lock()
	c.categories = nil
	c.cachedAt = time.Time{}
	c.populated = false
	c.generation++
	c.mu.Unlock()
}

// Root returns the portfolio root the cache reads.
func (c *CategoryCache) Root() string {
	return c.root
}

func (c *CategoryCache) read() ([]string, error) {
	entries, err := c.fs.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("read portfolio root %q: %w", c.root, err)
	}
	names := make([]string, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() {
			names = append(names, strings.ToLower(fi.Name()))
		}
	}
	return names, nil
}
