package repositorycache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-inventory/cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Loader fetches the full snapshot for owner from the source of truth.
type Loader[S any] func(ctx context.Context, owner string) (S, error)

// Invalidator is anything whose cached state can be dropped.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// FetchObserver is told about every load that reached the source of truth.
type FetchObserver interface {
	Fetched(kind string, elapsed time.Duration, err error)
}

// Option configures a CachedRepository.
type Option func(*options)

type options struct {
	dependents []Invalidator
	observer   FetchObserver
}

// WithDependents invalidates deps after every successful write.
func WithDependents(deps ...Invalidator) Option {
	return func(o *options) {
		o.dependents = append(o.dependents, deps...)
	}
}

// WithFetchObserver reports loads to obs.
func WithFetchObserver(obs FetchObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// CachedRepository serves snapshots from an entity cache and de-duplicates
// concurrent loads.
type CachedRepository[S any] struct {
	cache         *cache.EntityCache[S]
	load          Loader[S]
	keySerializer cache.KeySerializer
	group         singleflight.Group
	inflight      atomic.Int64
	dependents    []Invalidator
	observer      FetchObserver
}

// New creates a CachedRepository reading through entityCache.
func New[S any](entityCache *cache.EntityCache[S], load Loader[S], opts ...Option) *CachedRepository[S] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &CachedRepository[S]{
		cache:         entityCache,
		load:          load,
		keySerializer: cache.NewDefaultKeySerializer(),
		dependents:    o.dependents,
		observer:      o.observer,
	}
}

// Cache exposes the underlying entity cache.
func (r *CachedRepository[S]) Cache() *cache.EntityCache[S] {
	return r.cache
}

// Loading reports whether a load is outstanding.
func (r *CachedRepository[S]) Loading() bool {
	return r.inflight.Load() > 0
}

// Snapshot returns the snapshot for owner, loading it on a miss or when
// forceReload is set. Callers that arrive while a load for the same owner
// and generation is running receive that load's result.
func (r *CachedRepository[S]) Snapshot(ctx context.Context, owner string, forceReload bool) (S, error) {
	if snapshot, ok := r.cache.Get(ctx, owner, forceReload); ok {
		return snapshot, nil
	}

	generation := r.cache.Generation()
	key := r.keySerializer.SerializeKey(r.cache.Kind(), owner, generation)
	loadCtx := context.WithoutCancel(ctx)

	ch := r.group.DoChan(key, func() (any, error) {
		r.inflight.Add(1)
		defer r.inflight.Add(-1)
		return r.fetch(loadCtx, generation, owner)
	})

	var zero S
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			zerolog.Ctx(ctx).Debug().Str("kind", r.cache.Kind()).Msg("joined in-flight load")
		}
		snapshot, ok := res.Val.(S)
		if !ok {
			return zero, fmt.Errorf("%w: load returned %T", cache.ErrInvalidResultType, res.Val)
		}
		return snapshot, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r *CachedRepository[S]) fetch(ctx context.Context, generation uint64, owner string) (any, error) {
	start := time.Now()
	snapshot, err := r.load(ctx, owner)
	if r.observer != nil {
		r.observer.Fetched(r.cache.Kind(), time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	if _, err := r.cache.PutIfGeneration(ctx, generation, owner, snapshot); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", r.cache.Kind()).Msg("could not store snapshot")
	}
	return snapshot, nil
}

// Write runs fn and, when it succeeds, invalidates the cache and its
// dependents. A failed fn leaves every cache untouched and its error is
// returned unchanged.
func (r *CachedRepository[S]) Write(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	if err := r.Invalidate(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", r.cache.Kind()).Msg("cache invalidation failed")
	}
	return nil
}

// Invalidate drops the cached snapshot and those of every dependent.
func (r *CachedRepository[S]) Invalidate(ctx context.Context) error {
	errs := []error{r.cache.Invalidate(ctx)}
	for _, dep := range r.dependents {
		errs = append(errs, dep.Invalidate(ctx))
	}
	return errors.Join(errs...)
}
