package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/model"
	"github.com/goliatone/go-inventory/repositorycache"
	"github.com/goliatone/go-inventory/session"
	"github.com/rs/zerolog"
)

const KindProducts = "products"

// ListOptions controls a product list request.
type ListOptions struct {
	ForceReload bool
	Filter      string
}

// ProductResult is the outcome of a successful product mutation.
type ProductResult struct {
	// Product is the stored row for creates.
	Product *model.Product `json:"product,omitempty"`
	// Changed is false when the submission was a no-op.
	Changed bool         `json:"changed"`
	List    *ProductList `json:"list"`
	// RefreshError is set when the write succeeded but the reload that
	// follows it failed. List then holds the best local view, if any.
	RefreshError error `json:"-"`
}

// ProductCatalog serves the product list and its mutations.
type ProductCatalog struct {
	client   backend.Client
	resolver *session.Resolver
	repo     *repositorycache.CachedRepository[ProductSnapshot]
	guard    *SubmissionGuard
	observer Observer
}

// List returns the owner's products, joined with category names and
// filtered by opts.Filter.
func (c *ProductCatalog) List(ctx context.Context, ownerID string, opts ListOptions) (*ProductList, error) {
	owner, err := c.resolver.Require(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	snap, err := c.repo.Snapshot(ctx, owner, opts.ForceReload)
	if err != nil {
		return nil, err
	}
	return buildProductList(snap, opts.Filter, nil), nil
}

// Loading reports whether a product load is outstanding.
func (c *ProductCatalog) Loading() bool {
	return c.repo.Loading()
}

// Snapshot returns the raw cached rows for owner.
func (c *ProductCatalog) Snapshot(ctx context.Context, ownerID string, forceReload bool) (ProductSnapshot, error) {
	owner, err := c.resolver.Require(ctx, ownerID)
	if err != nil {
		return ProductSnapshot{}, err
	}
	return c.repo.Snapshot(ctx, owner, forceReload)
}

// Get fetches one of the owner's products for the edit form.
func (c *ProductCatalog) Get(ctx context.Context, ownerID string, id int64) (*model.Product, error) {
	owner, err := c.resolver.Require(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	p, err := c.client.Products().Single(ctx, backend.NewQuery().
		Eq(backend.ColID, id).
		Eq(backend.ColUserID, owner))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProductCatalog) load(ctx context.Context, owner string) (ProductSnapshot, error) {
	rows, err := c.client.Products().Select(ctx, backend.NewQuery().
		Eq(backend.ColUserID, owner).
		Order(backend.ColID, true))
	if err != nil {
		return ProductSnapshot{}, err
	}

	snap := ProductSnapshot{Products: rows, CategoryNames: map[int64]string{}}

	ids := distinctCategoryIDs(rows)
	if len(ids) == 0 {
		return snap, nil
	}
	cats, err := c.client.Categories().Select(ctx, backend.NewQuery().
		Select(backend.ColID, backend.ColName).
		Eq(backend.ColUserID, owner).
		In(backend.ColID, backend.Int64s(ids)))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("categories", len(ids)).Msg("category names unavailable")
		return snap, nil
	}
	for _, cat := range cats {
		snap.CategoryNames[cat.ID] = cat.Name
	}
	return snap, nil
}

func distinctCategoryIDs(rows []model.Product) []int64 {
	seen := map[int64]struct{}{}
	var ids []int64
	for _, p := range rows {
		if p.CategoryID == nil {
			continue
		}
		if _, ok := seen[*p.CategoryID]; ok {
			continue
		}
		seen[*p.CategoryID] = struct{}{}
		ids = append(ids, *p.CategoryID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// mutation runs the shared submission flow: guard, validate, resolve the
// owner, write once and reload.
func (c *ProductCatalog) mutation(ctx context.Context, op, formKey, ownerID string, validate func() error, write func(ctx context.Context, owner string) error) (owner string, err error) {
	defer func() { c.observer.Mutated(KindProducts, op, err) }()

	sub, err := c.guard.Begin(formKey)
	if err != nil {
		return "", err
	}
	defer sub.Done()

	if err := validate(); err != nil {
		return "", err
	}
	sub.Submitting()

	owner, err = c.resolver.Require(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if err := c.repo.Write(ctx, func(ctx context.Context) error { return write(ctx, owner) }); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("op", op).Msg("product write failed")
		return "", err
	}
	return owner, nil
}

func (c *ProductCatalog) refreshed(ctx context.Context, owner string, result *ProductResult) *ProductResult {
	snap, err := c.repo.Snapshot(ctx, owner, true)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("reload after product write failed")
		result.RefreshError = err
		return result
	}
	result.List = buildProductList(snap, "", nil)
	return result
}

func productPatch(in ProductInput) backend.Patch {
	patch := backend.Patch{
		backend.ColName:        in.Name,
		backend.ColStock:       in.Stock,
		backend.ColPrice:       in.Price,
		backend.ColCategoryID:  nil,
		backend.ColDescription: nil,
	}
	if in.CategoryID != nil {
		patch[backend.ColCategoryID] = *in.CategoryID
	}
	if in.Description != nil {
		patch[backend.ColDescription] = *in.Description
	}
	return patch
}

// Create validates form and inserts a product owned by the resolved owner.
func (c *ProductCatalog) Create(ctx context.Context, ownerID string, form ProductForm) (*ProductResult, error) {
	var (
		in      ProductInput
		created model.Product
	)
	owner, err := c.mutation(ctx, "create", "product-form", ownerID,
		func() (err error) {
			in, err = form.Parse()
			return err
		},
		func(ctx context.Context, owner string) (err error) {
			created, err = c.client.Products().Insert(ctx, model.Product{
				Name:        in.Name,
				CategoryID:  in.CategoryID,
				Stock:       in.Stock,
				Price:       in.Price,
				Description: in.Description,
				UserID:      owner,
			})
			return err
		})
	if err != nil {
		return nil, err
	}
	return c.refreshed(ctx, owner, &ProductResult{Product: &created, Changed: true}), nil
}

// Update replaces the editable fields of product id.
func (c *ProductCatalog) Update(ctx context.Context, ownerID string, id int64, form ProductForm) (*ProductResult, error) {
	var in ProductInput
	owner, err := c.mutation(ctx, "update", "product-form", ownerID,
		func() (err error) {
			in, err = form.Parse()
			return err
		},
		func(ctx context.Context, owner string) error {
			return c.client.Products().Update(ctx, productPatch(in), backend.NewQuery().
				Eq(backend.ColID, id).
				Eq(backend.ColUserID, owner))
		})
	if err != nil {
		return nil, err
	}
	return c.refreshed(ctx, owner, &ProductResult{Changed: true}), nil
}

// Delete removes product id.
func (c *ProductCatalog) Delete(ctx context.Context, ownerID string, id int64) (*ProductResult, error) {
	owner, err := c.mutation(ctx, "delete", fmt.Sprintf("product-delete::%d", id), ownerID,
		func() error { return nil },
		func(ctx context.Context, owner string) error {
			return c.client.Products().Delete(ctx, backend.NewQuery().
				Eq(backend.ColID, id).
				Eq(backend.ColUserID, owner))
		})
	if err != nil {
		return nil, err
	}
	return c.refreshed(ctx, owner, &ProductResult{Changed: true}), nil
}

// UpdateStock sets the stock of product id from the inline editor. An
// unchanged value is a no-op. After the write, the returned list comes from
// a forced reload; if that reload fails the list carries the edited row as
// RowPending on top of the previous snapshot.
func (c *ProductCatalog) UpdateStock(ctx context.Context, ownerID string, id int64, form StockForm) (result *ProductResult, err error) {
	defer func() { c.observer.Mutated(KindProducts, "update_stock", err) }()

	sub, err := c.guard.Begin(fmt.Sprintf("product-stock::%d", id))
	if err != nil {
		return nil, err
	}
	defer sub.Done()

	stock, err := form.Parse()
	if err != nil {
		return nil, err
	}
	sub.Submitting()

	owner, err := c.resolver.Require(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	current, err := c.repo.Snapshot(ctx, owner, false)
	if err != nil {
		return nil, err
	}
	if p, ok := findProduct(current.Products, id); ok && p.Stock == stock {
		return &ProductResult{Changed: false, List: buildProductList(current, "", nil)}, nil
	}

	err = c.repo.Write(ctx, func(ctx context.Context) error {
		return c.client.Products().Update(ctx, backend.Patch{backend.ColStock: stock}, backend.NewQuery().
			Eq(backend.ColID, id).
			Eq(backend.ColUserID, owner))
	})
	if err != nil {
		return nil, err
	}

	result = c.refreshed(ctx, owner, &ProductResult{Changed: true})
	if result.RefreshError != nil {
		pending := withStock(current, id, stock)
		result.List = buildProductList(pending, "", map[int64]bool{id: true})
	}
	return result, nil
}

func findProduct(rows []model.Product, id int64) (model.Product, bool) {
	for _, p := range rows {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// withStock returns a copy of snap with product id's stock replaced. The
// cached snapshot is never modified.
func withStock(snap ProductSnapshot, id int64, stock int) ProductSnapshot {
	rows := make([]model.Product, len(snap.Products))
	for i, p := range snap.Products {
		rows[i] = p.Clone()
		if p.ID == id {
			rows[i].Stock = stock
		}
	}
	return ProductSnapshot{Products: rows, CategoryNames: snap.CategoryNames}
}
