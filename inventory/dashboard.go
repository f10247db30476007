package inventory

import (
	"context"
	"sort"

	"github.com/goliatone/go-inventory/model"
	"github.com/rs/zerolog"
)

const (
	// LowStockThreshold is the highest stock still counted as low.
	LowStockThreshold = 5
	dashboardListSize = 5
)

// RecentProduct is a dashboard row for a recently added product.
type RecentProduct struct {
	ProductView
	AddedLabel string `json:"added_label"`
}

// Stats summarizes an owner's inventory.
type Stats struct {
	TotalProducts     int     `json:"total_products"`
	AvailableProducts int     `json:"available_products"`
	LowStock          int     `json:"low_stock"`
	TotalValue        float64 `json:"total_value"`
	TotalValueLabel   string  `json:"total_value_label"`
	TotalCategories   int     `json:"total_categories"`

	LowStockItems  []ProductView   `json:"low_stock_items"`
	RecentProducts []RecentProduct `json:"recent_products"`
}

// Dashboard computes Stats from the catalogs' snapshots.
type Dashboard struct {
	products   *ProductCatalog
	categories *CategoryCatalog
}

// Stats loads both snapshots and summarizes them. A failed category load
// only leaves TotalCategories at zero.
func (d *Dashboard) Stats(ctx context.Context, ownerID string, forceReload bool) (*Stats, error) {
	owner, err := d.products.resolver.Require(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	snap, err := d.products.repo.Snapshot(ctx, owner, forceReload)
	if err != nil {
		return nil, err
	}

	stats := computeStats(snap)

	cats, err := d.categories.repo.Snapshot(ctx, owner, forceReload)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("category count unavailable")
	} else {
		stats.TotalCategories = len(cats.Categories)
	}
	return stats, nil
}

func isLowStock(p model.Product) bool {
	return p.Stock > 0 && p.Stock <= LowStockThreshold
}

func computeStats(snap ProductSnapshot) *Stats {
	stats := &Stats{
		TotalProducts:  len(snap.Products),
		LowStockItems:  []ProductView{},
		RecentProducts: []RecentProduct{},
	}

	var low []model.Product
	for _, p := range snap.Products {
		if p.Stock > 0 {
			stats.AvailableProducts++
		}
		if isLowStock(p) {
			stats.LowStock++
			low = append(low, p)
		}
		stats.TotalValue += p.Price * float64(p.Stock)
	}
	stats.TotalValueLabel = PriceLabel(stats.TotalValue)

	sort.SliceStable(low, func(i, j int) bool { return low[i].Stock < low[j].Stock })
	for _, p := range low[:min(len(low), dashboardListSize)] {
		stats.LowStockItems = append(stats.LowStockItems, productView(p, snap.CategoryNames, RowConfirmed))
	}

	recent := make([]model.Product, len(snap.Products))
	copy(recent, snap.Products)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	for _, p := range recent[:min(len(recent), dashboardListSize)] {
		stats.RecentProducts = append(stats.RecentProducts, RecentProduct{
			ProductView: productView(p, snap.CategoryNames, RowConfirmed),
			AddedLabel:  DateLabel(p.CreatedAt),
		})
	}
	return stats
}
