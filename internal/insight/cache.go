package insight

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Source is anything that can classify and enrich a path, usually a
// *Registry.
type Source interface {
	KindOf(path string) Kind
	Enrich(ctx context.Context, path string, kind Kind) (*Insight, error)
}

// Store persists insights across processes.
type Store interface {
	Get(ctx context.Context, key string) (*Insight, bool, error)
	Put(ctx context.Context, key string, in *Insight) error
}

const (
	defaultCacheSize = 4096
	defaultCacheTTL  = 30 * time.Minute
)

// Cached memoises a Source by file identity (path, size and modification
// time), so an edited file is extracted again. Failures are not cached.
// Cached insights are shared and must be treated as read-only.
type Cached struct {
	next  Source
	lru   *expirable.LRU[string, *Insight]
	store Store
}

// NewCached wraps next with an in-memory LRU and an optional persistent
// store. Non-positive size or ttl select defaults.
func NewCached(next Source, size int, ttl time.Duration, store Store) *Cached {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cached{
		next:  next,
		lru:   expirable.NewLRU[string, *Insight](size, nil, ttl),
		store: store,
	}
}

func (c *Cached) KindOf(path string) Kind { return c.next.KindOf(path) }

func (c *Cached) Enrich(ctx context.Context, path string, kind Kind) (*Insight, error) {
	key, ok := cacheKey(path, kind)
	if !ok {
		return c.next.Enrich(ctx, path, kind)
	}
	if in, ok := c.lru.Get(key); ok {
		return nonEmpty(in), nil
	}
	if c.store != nil {
		if in, ok, err := c.store.Get(ctx, key); err == nil && ok {
			c.lru.Add(key, in)
			return nonEmpty(in), nil
		}
	}

	in, err := c.next.Enrich(ctx, path, kind)
	if err != nil {
		return nil, err
	}
	if in == nil {
		in = New(nil, "")
	}
	c.lru.Add(key, in)
	if c.store != nil {
		// Store failures are ignored.
		_ = c.store.Put(ctx, key, in)
	}
	return nonEmpty(in), nil
}

// Len is the number of live in-memory entries.
func (c *Cached) Len() int { return c.lru.Len() }

func nonEmpty(in *Insight) *Insight {
	if in.Empty() {
		return nil
	}
	return in
}

func cacheKey(path string, kind Kind) (string, bool) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return "", false
	}
	return string(kind) + "|" + path + "|" + strconv.FormatInt(fi.Size(), 10) + "|" + strconv.FormatInt(fi.ModTime().UnixNano(), 10), true
}
