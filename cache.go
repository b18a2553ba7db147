package folio

import (
	"slices"
	"sync"
	"time"
)

// postSource is the part of Store the post cache reads from.
type postSource interface {
	ListPosts(tag string) ([]BlogPost, error)
	ListTags() ([]string, error)
}

// PostCache keeps published posts and their tags in memory for a TTL.
// Unlike the category cache, load errors are returned to the caller.
type PostCache struct {
	mu      sync.RWMutex
	posts   []BlogPost
	tags    []string
	fetched time.Time
	loaded  bool
	ttl     time.Duration
	src     postSource
	now     func() time.Time
}

// NewPostCache creates a PostCache backed by src.
func NewPostCache(src postSource, ttl time.Duration) *PostCache {
	return &PostCache{src: src, ttl: ttl, now: time.Now}
}

func (c *PostCache) fresh() bool {
	return c.loaded && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts, c.tags, c.loaded = nil, nil, false
	c.mu.Unlock()
}

// snapshot returns copies of the cached posts and tags, reloading under the
// write lock when stale. The second fresh check stops a queue of writers from
// each reloading.
func (c *PostCache) snapshot() ([]BlogPost, []string, error) {
	c.mu.RLock()
	if c.fresh() {
		posts, tags := clonePosts(c.posts), slices.Clone(c.tags)
		c.mu.RUnlock()
		return posts, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh() {
		return clonePosts(c.posts), slices.Clone(c.tags), nil
	}
	posts, err := c.src.ListPosts("")
	if err != nil {
		return nil, nil, err
	}
	tags, err := c.src.ListTags()
	if err != nil {
		return nil, nil, err
	}
	c.posts, c.tags = posts, tags
	c.fetched, c.loaded = c.now(), true
	return clonePosts(posts), slices.Clone(tags), nil
}

// clonePosts copies posts along with their tag slices.
func clonePosts(posts []BlogPost) []BlogPost {
	if posts == nil {
		return nil
	}
	out := make([]BlogPost, len(posts))
	for i, p := range posts {
		p.Tags = slices.Clone(p.Tags)
		out[i] = p
	}
	return out
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *PostCache) ListPosts(tag string) ([]BlogPost, error) {
	posts, _, err := c.snapshot()
	if err != nil || tag == "" {
		return posts, err
	}
	want := normalizeTag(tag)
	var filtered []BlogPost
	for _, p := range posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == want {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// Recent returns at most n published posts, newest first.
func (c *PostCache) Recent(n int) ([]BlogPost, error) {
	posts, _, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts, nil
}

// ListTags returns all unique tags from published posts.
func (c *PostCache) ListTags() ([]string, error) {
	_, tags, err := c.snapshot()
	return tags, err
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (BlogPost, error) {
	posts, _, err := c.snapshot()
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}
