package modelcache

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/minutes/ai"
	"github.com/poiesic/minutes/core"
)

// Cache is a keyed, construct-once store of recognizers. It is safe for
// concurrent use.
type Cache struct {
	loader     ai.ModelLoader
	group      singleflight.Group
	mu         sync.Mutex
	entries    map[core.ModelKey]*list.Element
	recency    *list.List // front is most recently acquired
	maxEntries int
	logger     *slog.Logger
}

type entry struct {
	key        core.ModelKey
	recognizer ai.Recognizer
}

// Option configures a Cache.
type Option func(*Cache) error

// WithMaxEntries bounds the number of cached recognizers. Zero, the
// default, means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *Cache) error {
		if n < 0 {
			return fmt.Errorf("max entries must not be negative: %d", n)
		}
		c.maxEntries = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates an empty cache backed by loader.
func New(loader ai.ModelLoader, opts ...Option) (*Cache, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	c := &Cache{
		loader:  loader,
		entries: make(map[core.ModelKey]*list.Element),
		recency: list.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "modelcache")
	return c, nil
}

// Acquire returns the recognizer for key, constructing it on first use.
//
// The construction runs detached from the context of whichever caller
// triggered it, so one caller giving up does not fail the others sharing
// the flight. ctx only bounds how long this caller waits.
func (c *Cache) Acquire(ctx context.Context, key core.ModelKey) (ai.Recognizer, error) {
	if r, ok := c.lookup(key); ok {
		return r, nil
	}

	ch := c.group.DoChan(key.String(), func() (any, error) {
		// A flight that finished between lookup and DoChan already stored it.
		if r, ok := c.lookup(key); ok {
			return r, nil
		}

		start := time.Now()
		c.logger.Info("constructing model", "key", key.String())
		r, err := c.load(context.WithoutCancel(ctx), key)
		if err != nil {
			c.logger.Warn("model construction failed", "key", key.String(), "err", err)
			return nil, fmt.Errorf("%w %s: %w", ErrLoadFailed, key, err)
		}
		c.store(key, r)
		c.logger.Info("model ready", "key", key.String(), "elapsed", time.Since(start))
		return r, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ai.Recognizer), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load calls the loader, turning a panic into an error. singleflight
// re-panics on a goroutine of its own when DoChan is used, where no caller
// could recover it.
func (c *Cache) load(ctx context.Context, key core.ModelKey) (r ai.Recognizer, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("%w: %v", ErrLoaderPanic, p)
		}
	}()
	return c.loader.Load(ctx, key)
}

// Len returns the number of cached recognizers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys in "size_device_compute" form, sorted.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k.String())
	}
	c.mu.Unlock()
	sort.Strings(keys)
	return keys
}

func (c *Cache) lookup(key core.ModelKey) (ai.Recognizer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.recency.MoveToFront(el)
	return el.Value.(*entry).recognizer, true
}

func (c *Cache) store(key core.ModelKey, r ai.Recognizer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.recency.MoveToFront(el)
		return
	}
	c.entries[key] = c.recency.PushFront(&entry{key: key, recognizer: r})

	for c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		oldest := c.recency.Back()
		evicted := oldest.Value.(*entry)
		c.recency.Remove(oldest)
		delete(c.entries, evicted.key)
		c.logger.Info("evicted model", "key", evicted.key.String())
	}
}
