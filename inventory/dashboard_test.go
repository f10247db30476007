package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-inventory/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)

	stats, err := f.ws.Dashboard.Stats(f.ctx, "", false)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalProducts)
	assert.Equal(t, 3, stats.AvailableProducts)
	assert.Equal(t, 2, stats.LowStock)
	assert.InDelta(t, 35.0, stats.TotalValue, 1e-9)
	assert.Equal(t, "$35.00", stats.TotalValueLabel)
	assert.Equal(t, 2, stats.TotalCategories)

	require.Len(t, stats.LowStockItems, 2)
	assert.Equal(t, "Rake", stats.LowStockItems[0].Name)
	assert.Equal(t, "Widget", stats.LowStockItems[1].Name)

	require.Len(t, stats.RecentProducts, 4)
	assert.Equal(t, "Ghost", stats.RecentProducts[0].Name)
	assert.Equal(t, "1 mar 2026", stats.RecentProducts[0].AddedLabel)
	assert.Equal(t, "Widget", stats.RecentProducts[3].Name)
}

func TestDashboardStats_SharesProductCache(t *testing.T) {
	f := newFixture(t)

	_, err := f.ws.Products.List(f.ctx, "", ListOptions{})
	require.NoError(t, err)
	_, err = f.ws.Dashboard.Stats(f.ctx, "", false)
	require.NoError(t, err)

	assert.Equal(t, 1, f.fb.CallCount(opSelectProducts))
}

func TestDashboardStats_CategoryFailureOnlyZeroesCount(t *testing.T) {
	f := newFixture(t)
	f.fb.SetError(opSelectCategories, errors.New("timeout"))

	stats, err := f.ws.Dashboard.Stats(f.ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCategories)
	assert.Equal(t, 4, stats.TotalProducts)
}

func TestDashboardStats_ProductFailure(t *testing.T) {
	f := newFixture(t)
	f.fb.SetError(opSelectProducts, errors.New("timeout"))

	_, err := f.ws.Dashboard.Stats(f.ctx, "", false)
	assert.EqualError(t, err, "timeout")
}

func TestComputeStats_CapsListsAndKeepsOrder(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var rows []model.Product
	for i := 1; i <= 7; i++ {
		rows = append(rows, model.Product{
			ID:        int64(i),
			Name:      string(rune('a' + i - 1)),
			Stock:     1 + i%2,
			Price:     1,
			CreatedAt: base.AddDate(0, 0, i),
		})
	}
	snap := ProductSnapshot{Products: rows}

	stats := computeStats(snap)

	assert.Equal(t, 7, stats.LowStock)
	require.Len(t, stats.LowStockItems, dashboardListSize)
	got := make([]int64, len(stats.LowStockItems))
	for i, p := range stats.LowStockItems {
		got[i] = p.ID
	}
	// stock 1 for even ids, 2 for odd ids; ties keep id order
	assert.Equal(t, []int64{2, 4, 6, 1, 3}, got)

	require.Len(t, stats.RecentProducts, dashboardListSize)
	assert.Equal(t, int64(7), stats.RecentProducts[0].ID)
	assert.Equal(t, int64(3), stats.RecentProducts[4].ID)

	assert.Equal(t, int64(1), snap.Products[0].ID, "snapshot order is untouched")
}

func TestComputeStats_Empty(t *testing.T) {
	stats := computeStats(ProductSnapshot{})
	assert.Zero(t, stats.TotalProducts)
	assert.Equal(t, "$0.00", stats.TotalValueLabel)
	assert.NotNil(t, stats.LowStockItems)
	assert.NotNil(t, stats.RecentProducts)
}
