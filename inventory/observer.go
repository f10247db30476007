package inventory

import (
	"time"

	"github.com/goliatone/go-inventory/cache"
	"github.com/goliatone/go-inventory/repositorycache"
)

// Observer receives cache, fetch and mutation events of a workspace.
type Observer interface {
	cache.Observer
	repositorycache.FetchObserver
	Mutated(kind, op string, err error)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)                      {}
func (nopObserver) CacheMiss(string)                     {}
func (nopObserver) CacheInvalidated(string)              {}
func (nopObserver) Fetched(string, time.Duration, error) {}
func (nopObserver) Mutated(string, string, error)        {}
