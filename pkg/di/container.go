package di

import (
	"context"

	"github.com/goliatone/go-inventory/auth"
	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/cache"
	"github.com/goliatone/go-inventory/inventory"
	"github.com/goliatone/go-inventory/session"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// Container wires the backend client, the shared cache service and one
// inventory workspace per signed-in principal. Each workspace keeps its own
// entity caches so the single-entry-per-kind contract holds per user.
type Container struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	config        cache.Config

	client   backend.Client
	resolver *session.Resolver
	accounts *auth.Service
	observer inventory.Observer

	workspaces *xsync.MapOf[string, *inventory.Workspace]
}

// Option configures a Container.
type Option func(*Container)

// WithObserver reports workspace events, typically to a metrics collector.
func WithObserver(o inventory.Observer) Option {
	return func(c *Container) {
		c.observer = o
	}
}

// WithKeySerializer replaces the default cache key serializer.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(c *Container) {
		if keys != nil {
			c.keySerializer = keys
		}
	}
}

// NewContainer creates a container over client. The cache service is built
// from config, which is validated first.
func NewContainer(client backend.Client, config cache.Config, opts ...Option) (*Container, error) {
	cacheService, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}

	c := &Container{
		cacheService:  cacheService,
		keySerializer: cache.NewDefaultKeySerializer(),
		config:        config,
		client:        client,
		resolver:      session.NewResolver(client.Auth()),
		accounts:      auth.NewService(client.Auth()),
		workspaces:    xsync.NewMapOf[string, *inventory.Workspace](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewContainerWithDefaults creates a container with cache.DefaultConfig.
func NewContainerWithDefaults(client backend.Client, opts ...Option) (*Container, error) {
	return NewContainer(client, cache.DefaultConfig(), opts...)
}

// CacheService returns the shared cache service.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the key serializer shared by every workspace.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns the cache configuration.
func (c *Container) Config() cache.Config {
	return c.config
}

func (c *Container) Client() backend.Client {
	return c.client
}

func (c *Container) Resolver() *session.Resolver {
	return c.resolver
}

func (c *Container) Accounts() *auth.Service {
	return c.accounts
}

// Workspace returns the workspace of principalID, creating it on first use.
func (c *Container) Workspace(principalID string) *inventory.Workspace {
	ws, _ := c.workspaces.LoadOrCompute(principalID, func() *inventory.Workspace {
		opts := []inventory.Option{inventory.WithKeySerializer(c.keySerializer)}
		if c.observer != nil {
			opts = append(opts, inventory.WithObserver(c.observer))
		}
		return inventory.NewWorkspace(principalID, c.client, c.resolver, c.cacheService, opts...)
	})
	return ws
}

// WorkspaceFor resolves the principal of the session bound to ctx and
// returns its workspace together with the principal id.
func (c *Container) WorkspaceFor(ctx context.Context) (*inventory.Workspace, string, error) {
	id, err := c.resolver.Require(ctx, "")
	if err != nil {
		return nil, "", err
	}
	return c.Workspace(id), id, nil
}

// Evict drops the workspace of principalID and every cache entry it owns.
func (c *Container) Evict(ctx context.Context, principalID string) error {
	ws, ok := c.workspaces.LoadAndDelete(principalID)
	if !ok {
		return nil
	}
	zerolog.Ctx(ctx).Debug().Str("user_id", principalID).Msg("evicting workspace")
	// The replacement workspace reuses the same keys.
	if err := ws.Invalidate(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", principalID).Msg("workspace invalidation failed")
	}
	return c.cacheService.DeleteByPrefix(ctx, cache.KeyPrefix(principalID))
}

// Workspaces reports how many workspaces are live.
func (c *Container) Workspaces() int {
	return c.workspaces.Size()
}
