package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidResultType is returned when a cached value does not have the
// type the caller asked for.
var ErrInvalidResultType = errors.New("cache: invalid result type")

// KeySerializer builds a cache key from a leading segment and arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// CacheService is the storage behind every entity cache.
// It is exported so that other packages can reuse the default serializer or provide alternate cache backends.
type CacheService interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Get is a type-safe wrapper around CacheService.Get. A miss returns the
// zero value and false; a value of another type returns ErrInvalidResultType.
func Get[T any](ctx context.Context, service CacheService, key string) (T, bool, error) {
	var zero T
	raw, ok := service.Get(ctx, key)
	if !ok {
		return zero, false, nil
	}
	if raw == nil {
		return zero, true, nil
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: key %q holds %T", ErrInvalidResultType, key, raw)
	}
	return value, true, nil
}
