package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Observer receives entity cache events. Implementations must be safe for
// concurrent use.
type Observer interface {
	CacheHit(kind string)
	CacheMiss(kind string)
	CacheInvalidated(kind string)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)         {}
func (nopObserver) CacheMiss(string)        {}
func (nopObserver) CacheInvalidated(string) {}

// EntityOption configures an EntityCache.
type EntityOption func(*entityOptions)

type entityOptions struct {
	observer Observer
}

// WithObserver reports hits, misses and invalidations to o.
func WithObserver(o Observer) EntityOption {
	return func(opts *entityOptions) {
		if o != nil {
			opts.observer = o
		}
	}
}

// EntityCache holds at most one snapshot of an entity list, tagged with the
// owner it was fetched for. A lookup for any other owner is a miss and a
// store for a new owner replaces the previous entry.
//
// Every Invalidate bumps a generation counter. Loads capture the generation
// before fetching and store through PutIfGeneration, so a fetch that started
// before a write cannot repopulate the cache after it.
type EntityCache[S any] struct {
	service   CacheService
	keys      KeySerializer
	namespace string
	kind      string
	observer  Observer

	mu         sync.Mutex
	owner      string
	present    bool
	generation uint64
}

// NewEntityCache binds an entity kind inside namespace to service. The
// namespace keeps caches of different workspaces apart when they share one
// service.
func NewEntityCache[S any](service CacheService, keys KeySerializer, namespace, kind string, opts ...EntityOption) *EntityCache[S] {
	o := entityOptions{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if keys == nil {
		keys = NewDefaultKeySerializer()
	}
	return &EntityCache[S]{
		service:   service,
		keys:      keys,
		namespace: namespace,
		kind:      kind,
		observer:  o.observer,
	}
}

// Kind names the cached entity.
func (c *EntityCache[S]) Kind() string {
	return c.kind
}

func (c *EntityCache[S]) key(owner string) string {
	return c.keys.SerializeKey(c.namespace, c.kind, owner)
}

// Get returns the snapshot for owner. It misses when forceReload is set, when
// nothing is stored, when the stored owner differs or when the entry expired.
func (c *EntityCache[S]) Get(ctx context.Context, owner string, forceReload bool) (S, bool) {
	var zero S

	c.mu.Lock()
	defer c.mu.Unlock()

	if forceReload || !c.present || c.owner != owner {
		c.observer.CacheMiss(c.kind)
		return zero, false
	}

	snapshot, ok, err := Get[S](ctx, c.service, c.key(owner))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", c.kind).Msg("discarding cache entry")
	}
	if err != nil || !ok {
		c.present = false
		c.observer.CacheMiss(c.kind)
		return zero, false
	}

	c.observer.CacheHit(c.kind)
	return snapshot, true
}

// Owner reports the owner of the stored snapshot, if any.
func (c *EntityCache[S]) Owner() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner, c.present
}

// Generation returns the current invalidation counter.
func (c *EntityCache[S]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Put replaces the stored entry unconditionally.
func (c *EntityCache[S]) Put(ctx context.Context, owner string, snapshot S) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.put(ctx, owner, snapshot)
}

// PutIfGeneration stores snapshot only when no invalidation happened since
// generation was read. It reports whether the snapshot was stored.
func (c *EntityCache[S]) PutIfGeneration(ctx context.Context, generation uint64, owner string, snapshot S) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		zerolog.Ctx(ctx).Debug().
			Str("kind", c.kind).
			Uint64("loaded_generation", generation).
			Uint64("current_generation", c.generation).
			Msg("dropping stale snapshot")
		return false, nil
	}
	if err := c.put(ctx, owner, snapshot); err != nil {
		return false, err
	}
	return true, nil
}

func (c *EntityCache[S]) put(ctx context.Context, owner string, snapshot S) error {
	if c.present && c.owner != owner {
		if err := c.service.Delete(ctx, c.key(c.owner)); err != nil {
			return err
		}
	}
	if err := c.service.Set(ctx, c.key(owner), snapshot); err != nil {
		return err
	}
	c.owner = owner
	c.present = true
	return nil
}

// Invalidate clears the stored entry and advances the generation.
func (c *EntityCache[S]) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.observer.CacheInvalidated(c.kind)
	if !c.present {
		return nil
	}
	c.present = false
	return c.service.Delete(ctx, c.key(c.owner))
}
