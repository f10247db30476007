package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-inventory/model"
)

// Labels rendered into product rows.
const (
	StatusAvailable  = "Disponible"
	StatusOutOfStock = "Agotado"

	LabelNoCategory       = "No category"
	LabelCategoryNotFound = "Category not found"
)

// RowState tells whether a row reflects the backend or a local edit the
// backend has accepted but not yet echoed back.
type RowState string

const (
	RowConfirmed RowState = "confirmed"
	RowPending   RowState = "pending"
)

// EmptyState is what a list shows when it has no rows.
type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ProductSnapshot is the cached raw result of a product load.
type ProductSnapshot struct {
	Products      []model.Product
	CategoryNames map[int64]string
}

// CategorySnapshot is the cached raw result of a category load.
type CategorySnapshot struct {
	Categories []model.Category
}

// ProductView is one rendered product row.
type ProductView struct {
	model.Product
	CategoryName string   `json:"category_name"`
	Status       string   `json:"status"`
	InStock      bool     `json:"in_stock"`
	PriceLabel   string   `json:"price_label"`
	State        RowState `json:"state"`
}

// ProductList is the output of the product pipeline.
type ProductList struct {
	Items []ProductView `json:"items"`
	// Total counts the owner's products before filtering.
	Total     int         `json:"total"`
	Filter    string      `json:"filter,omitempty"`
	HadFilter bool        `json:"had_filter"`
	Empty     *EmptyState `json:"empty,omitempty"`
}

// CategoryView is one rendered category row.
type CategoryView struct {
	model.Category
	CreatedLabel string `json:"created_label"`
}

// CategoryList is the output of the category pipeline.
type CategoryList struct {
	Items []CategoryView `json:"items"`
	Empty *EmptyState    `json:"empty,omitempty"`
}

// CategoryOption is an entry of the product form's category selector.
type CategoryOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func categoryLabel(p model.Product, names map[int64]string) string {
	if p.CategoryID == nil {
		return LabelNoCategory
	}
	if name, ok := names[*p.CategoryID]; ok {
		return name
	}
	return LabelCategoryNotFound
}

// PriceLabel formats a price with two decimals.
func PriceLabel(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

func productView(p model.Product, names map[int64]string, state RowState) ProductView {
	status := StatusOutOfStock
	if p.Stock > 0 {
		status = StatusAvailable
	}
	return ProductView{
		Product:      p.Clone(),
		CategoryName: categoryLabel(p, names),
		Status:       status,
		InStock:      p.Stock > 0,
		PriceLabel:   PriceLabel(p.Price),
		State:        state,
	}
}

// matchesFilter reports whether term (already trimmed and lower-cased)
// occurs in the product's id, name, category label or description.
func matchesFilter(p model.Product, names map[int64]string, term string) bool {
	if strings.Contains(strconv.FormatInt(p.ID, 10), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(categoryLabel(p, names)), term) {
		return true
	}
	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), term)
}

// buildProductList projects a snapshot into view rows. Rows whose id is in
// pending are marked RowPending.
func buildProductList(snap ProductSnapshot, filter string, pending map[int64]bool) *ProductList {
	term := strings.ToLower(strings.TrimSpace(filter))
	list := &ProductList{
		Items:     make([]ProductView, 0, len(snap.Products)),
		Total:     len(snap.Products),
		Filter:    strings.TrimSpace(filter),
		HadFilter: term != "",
	}
	for _, p := range snap.Products {
		if term != "" && !matchesFilter(p, snap.CategoryNames, term) {
			continue
		}
		state := RowConfirmed
		if pending[p.ID] {
			state = RowPending
		}
		list.Items = append(list.Items, productView(p, snap.CategoryNames, state))
	}
	if len(list.Items) == 0 {
		empty := list.EmptyState()
		list.Empty = &empty
	}
	return list
}

// EmptyState distinguishes "no matches" from "no data".
func (l *ProductList) EmptyState() EmptyState {
	if l.HadFilter {
		return EmptyState{
			Title:   "No products found",
			Message: fmt.Sprintf("No products match %q", l.Filter),
		}
	}
	return EmptyState{
		Title:   "No products currently",
		Message: "Start by adding your first product to inventory",
	}
}

var shortMonthsES = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// DateLabel renders t as a Spanish short date such as "2 ene 2026", or "-"
// for the zero time.
func DateLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%d %s %d", t.Day(), shortMonthsES[t.Month()-1], t.Year())
}

func buildCategoryList(snap CategorySnapshot) *CategoryList {
	list := &CategoryList{Items: make([]CategoryView, 0, len(snap.Categories))}
	for _, c := range snap.Categories {
		list.Items = append(list.Items, CategoryView{Category: c, CreatedLabel: DateLabel(c.CreatedAt)})
	}
	if len(list.Items) == 0 {
		list.Empty = &EmptyState{
			Title:   "No categories currently",
			Message: "Create a category to organize your products",
		}
	}
	return list
}
