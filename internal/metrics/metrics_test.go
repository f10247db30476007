package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the samples of family name whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			matched := true
			for k, v := range want {
				if labels[k] != v {
					matched = false
				}
			}
			if matched {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.CacheMiss("products")
	c.CacheHit("products")
	c.CacheHit("products")
	c.CacheInvalidated("categories")
	c.Fetched("products", 20*time.Millisecond, nil)
	c.Fetched("products", time.Millisecond, errors.New("timeout"))
	c.Mutated("products", "create", nil)
	c.Mutated("products", "create", errors.New("boom"))
	c.ObserveHTTP("GET", "/api/v1/products", 200, time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, reg, "inventory_cache_requests_total", map[string]string{"kind": "products", "result": "hit"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "inventory_cache_requests_total", map[string]string{"result": "miss"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "inventory_cache_invalidations_total", map[string]string{"kind": "categories"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "inventory_backend_fetches_total", map[string]string{"outcome": "error"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "inventory_mutations_total", map[string]string{"op": "create"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "inventory_http_requests_total", map[string]string{"status": "200"}))
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
