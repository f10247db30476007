package inventory

import (
	"context"
	"errors"

	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/cache"
	"github.com/goliatone/go-inventory/repositorycache"
	"github.com/goliatone/go-inventory/session"
)

// Option configures a Workspace.
type Option func(*workspaceOptions)

type workspaceOptions struct {
	observer Observer
	keys     cache.KeySerializer
}

// WithObserver reports cache, fetch and mutation events to o.
func WithObserver(o Observer) Option {
	return func(opts *workspaceOptions) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithKeySerializer overrides how cache keys are built.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(opts *workspaceOptions) {
		opts.keys = keys
	}
}

// Workspace groups the catalogs that share one pair of entity caches.
type Workspace struct {
	ID         string
	Products   *ProductCatalog
	Categories *CategoryCatalog
	Dashboard  *Dashboard
}

// NewWorkspace builds the catalogs of one workspace. Its caches live in svc
// under keys starting with cache.KeyPrefix(id).
func NewWorkspace(id string, client backend.Client, resolver *session.Resolver, svc cache.CacheService, opts ...Option) *Workspace {
	o := workspaceOptions{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.keys == nil {
		o.keys = cache.NewDefaultKeySerializer()
	}

	productCache := cache.NewEntityCache[ProductSnapshot](svc, o.keys, id, KindProducts, cache.WithObserver(o.observer))
	categoryCache := cache.NewEntityCache[CategorySnapshot](svc, o.keys, id, KindCategories, cache.WithObserver(o.observer))

	guard := NewSubmissionGuard()

	products := &ProductCatalog{
		client:   client,
		resolver: resolver,
		guard:    guard,
		observer: o.observer,
	}
	products.repo = repositorycache.New(productCache, products.load,
		repositorycache.WithFetchObserver(o.observer))

	categories := &CategoryCatalog{
		client:   client,
		resolver: resolver,
		guard:    guard,
		observer: o.observer,
	}
	categories.repo = repositorycache.New(categoryCache, categories.load,
		repositorycache.WithFetchObserver(o.observer),
		repositorycache.WithDependents(productCache))

	return &Workspace{
		ID:         id,
		Products:   products,
		Categories: categories,
		Dashboard:  &Dashboard{products: products, categories: categories},
	}
}

// Invalidate drops both cached snapshots and advances their generations, so
// loads that are still running cannot store their results afterwards.
func (w *Workspace) Invalidate(ctx context.Context) error {
	return errors.Join(
		w.Products.repo.Invalidate(ctx),
		w.Categories.repo.Invalidate(ctx),
	)
}
