package gallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFS counts ReadDir calls and can be told to fail them.
type countingFS struct {
	billy.Filesystem

	mu    sync.Mutex
	reads int
	err   error
	// afterRead runs once the directory has been listed, before ReadDir
	// returns.
	afterRead func()
}

func (f *countingFS) ReadDir(p string) ([]os.FileInfo, error) {
	f.mu.Lock()
	f.reads++
	err, after := f.err, f.afterRead
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	entries, err := f.Filesystem.ReadDir(p)
	if after != nil {
		after()
	}
	return entries, err
}

func (f *countingFS) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *countingFS) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T, dirs ...string) (string, *countingFS, *fakeClock, *CategoryCache) {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "portfolio", d), 0o755))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "portfolio"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "portfolio", "README.txt"), []byte("x"), 0o644))

	fsys := &countingFS{Filesystem: osfs.New(root, osfs.WithBoundOS())}
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewCategoryCache(fsys, "portfolio", 10*time.Minute, WithClock(clock.Now))
	return root, fsys, clock, cache
}

func TestCategoryCacheServesFreshEntryWithoutReading(t *testing.T) {
	_, fsys, clock, cache := newTestCache(t, "Cards", "logos", "Fliers")

	first := cache.Get()
	require.False(t, first.Fallback)
	require.NoError(t, first.Err)
	assert.Equal(t, []string{"cards", "fliers", "logos"}, first.Names)

	clock.Advance(10*time.Minute - time.Second)
	second := cache.Get()
	assert.Equal(t, first.Names, second.Names)
	assert.Equal(t, 1, fsys.readCount())
}

func TestCategoryCacheRefreshesOnceAfterTTL(t *testing.T) {
	root, fsys, clock, cache := newTestCache(t, "logos")

	cache.Get()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "portfolio", "websites"), 0o755))

	// Still fresh: the new directory is not visible yet.
	assert.Equal(t, []string{"logos"}, cache.Get().Names)

	clock.Advance(10*time.Minute + time.Second)
	got := cache.Get()
	assert.Equal(t, []string{"logos", "websites"}, got.Names)
	cache.Get()
	assert.Equal(t, 2, fsys.readCount())
}

func TestCategoryCacheFailureKeepsPopulatedCache(t *testing.T) {
	_, fsys, clock, cache := newTestCache(t, "cards", "logos")

	require.Equal(t, []string{"cards", "logos"}, cache.Get().Names)

	fsys.setErr(errors.New("permission denied"))
	clock.Advance(11 * time.Minute)

	got := cache.Get()
	assert.True(t, got.Fallback)
	assert.Error(t, got.Err)
	assert.Equal(t, FallbackCategories, got.Names)

	cache.mu.RLock()
	assert.True(t, cache.populated)
	assert.Equal(t, []string{"cards", "logos"}, cache.categories)
	cache.mu.RUnlock()

	// The stale entry is retried on the next call, and recovers.
	fsys.setErr(nil)
	got = cache.Get()
	assert.False(t, got.Fallback)
	assert.Equal(t, []string{"cards", "logos"}, got.Names)
	assert.Equal(t, 3, fsys.readCount())
}

func TestCategoryCacheFailureWhileEmptyStaysEmpty(t *testing.T) {
	_, fsys, _, cache := newTestCache(t, "logos")
	fsys.setErr(errors.New("boom"))

	got := cache.Get()
	assert.True(t, got.Fallback)
	assert.Equal(t, []string{"cards", "fliers", "letterheads", "logos", "profiles"}, got.Names)

	cache.mu.RLock()
	assert.False(t, cache.populated)
	assert.Nil(t, cache.categories)
	cache.mu.RUnlock()

	// Fallback is never cached: every call reads again.
	cache.Get()
	assert.Equal(t, 2, fsys.readCount())
}

func TestCategoryCacheMissingRootFallsBack(t *testing.T) {
	root := t.TempDir()
	cache := NewCategoryCache(osfs.New(root, osfs.WithBoundOS()), "images/portfolio", 0)

	got := cache.Get()
	assert.True(t, got.Fallback)
	assert.ErrorIs(t, got.Err, os.ErrNotExist)
	assert.Equal(t, FallbackCategories, got.Names)
}

func TestCategoryCacheReturnsCopies(t *testing.T) {
	_, fsys, _, cache := newTestCache(t, "logos")

	got := cache.Get()
	got.Names[0] = "mutated"
	assert.Equal(t, []string{"logos"}, cache.Get().Names)

	fsys.setErr(errors.New("boom"))
	cache.Invalidate()
	fb := cache.Get()
	fb.Names[0] = "mutated"
	assert.Equal(t, "cards", FallbackCategories[0])
}

func TestCategoryCacheInvalidate(t *testing.T) {
	_, fsys, _, cache := newTestCache(t, "logos")

	cache.Get()
	cache.Invalidate()
	cache.Get()
	assert.Equal(t, 2, fsys.readCount())
}

func TestCategoryCacheDefaultTTL(t *testing.T) {
	cache := NewCategoryCache(nil, "portfolio", 0)
	assert.Equal(t, DefaultCategoryTTL, cache.ttl)
	assert.Equal(t, "portfolio", cache.Root())
}

func TestCategoryCacheConcurrentGets(t *testing.T) {
	_, _, clock, cache := newTestCache(t, "cards", "logos")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				clock.Advance(time.Minute)
			}
			assert.Equal(t, []string{"cards", "logos"}, cache.Get().Names)
		}(i)
	}
	wg.Wait()
}

func TestWatchPortfolioInvalidatesOnNewCategory(t *testing.T) {
	root, _, _, cache := newTestCache(t, "logos")
	dir := filepath.Join(root, "portfolio")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, WatchPortfolio(ctx, dir, cache, &recordingLogger{}))

	require.Equal(t, []string{"logos"}, cache.Get().Names)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "profiles"), 0o755))

	require.Eventually(t, func() bool {
		cache.mu.RLock()
		defer cache.mu.RUnlock()
		return !cache.populated
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"logos", "profiles"}, cache.Get().Names)
}

func TestWatchPortfolioMissingDir(t *testing.T) {
	cache := NewCategoryCache(nil, "portfolio", 0)
	err := WatchPortfolio(context.Background(), filepath.Join(t.TempDir(), "missing"), cache, nil)
	assert.Error(t, err)
}

func TestCategoryCacheDropsReadOverlappingInvalidate(t *testing.T) {
	root, fsys, _, cache := newTestCache(t, "cards")

	// A new category appears and is invalidated while Get is still holding
	// the listing taken before it existed.
	fsys.afterRead = func() {
		fsys.afterRead = nil
		require.NoError(t, os.MkdirAll(filepath.Join(root, "portfolio", "logos"), 0o755))
		cache.Invalidate()
	}

	assert.Equal(t, []string{"cards"}, cache.Get().Names)
	assert.Equal(t, []string{"cards", "logos"}, cache.Get().Names, "stale listing was not cached")
	assert.Equal(t, 2, fsys.readCount())
	assert.Equal(t, []string{"cards", "logos"}, cache.Get().Names)
	assert.Equal(t, 2, fsys.readCount())
}
