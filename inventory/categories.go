package inventory

import (
	"context"
	"fmt"

	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/model"
	"github.com/goliatone/go-inventory/repositorycache"
	"github.com/goliatone/go-inventory/session"
	"github.com/rs/zerolog"
)

const KindCategories = "categories"

// CategoryResult is the outcome of a successful category mutation.
type CategoryResult struct {
	Category     *model.Category `json:"category,omitempty"`
	List         *CategoryList   `json:"list"`
	RefreshError error           `json:"-"`
}

// CategoryCatalog serves the category list and its mutations. Writes also
// invalidate the product cache since product rows embed category names.
type CategoryCatalog struct {
	client   backend.Client
	resolver *session.Resolver
	repo     *repositorycache.CachedRepository[CategorySnapshot]
	guard    *SubmissionGuard
	observer Observer
}

// List returns the owner's categories ordered by name.
func (c *CategoryCatalog) List(ctx context.Context, ownerID string, forceReload bool) (*CategoryList, error) {
	owner, err := c.resolver.Require(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	snap, err := c.repo.Snapshot(ctx, owner, forceReload)
	if err != nil {
		return nil, err
	}
	return buildCategoryList(snap), nil
}

// Loading reports whether a category load is outstanding.
func (c *CategoryCatalog) Loading() bool {
	return c.repo.Loading()
}

// Options returns a fresh id/name list for the product form selector.
func (c *CategoryCatalog) Options(ctx context.Context, ownerID string) ([]CategoryOption, error) {
	owner, err := c.resolver.Require(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := c.client.Categories().Select(ctx, backend.NewQuery().
		Select(backend.ColID, backend.ColName).
		Eq(backend.ColUserID, owner).
		Order(backend.ColName, true))
	if err != nil {
		return nil, err
	}
	out := make([]CategoryOption, len(rows))
	for i, r := range rows {
		out[i] = CategoryOption{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

func (c *CategoryCatalog) load(ctx context.Context, owner string) (CategorySnapshot, error) {
	rows, err := c.client.Categories().Select(ctx, backend.NewQuery().
		Eq(backend.ColUserID, owner).
		Order(backend.ColName, true))
	if err != nil {
		return CategorySnapshot{}, err
	}
	return CategorySnapshot{Categories: rows}, nil
}

func (c *CategoryCatalog) mutation(ctx context.Context, op, formKey, ownerID string, validate func() error, write func(ctx context.Context, owner string) error) (result *CategoryResult, err error) {
	defer func() { c.observer.Mutated(KindCategories, op, err) }()

	sub, err := c.guard.Begin(formKey)
	if err != nil {
		return nil, err
	}
	defer sub.Done()

	if err := validate(); err != nil {
		return nil, err
	}
	sub.Submitting()

	owner, err := c.resolver.Require(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := c.repo.Write(ctx, func(ctx context.Context) error { return write(ctx, owner) }); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("op", op).Msg("category write failed")
		return nil, err
	}

	result = &CategoryResult{}
	snap, err := c.repo.Snapshot(ctx, owner, true)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("reload after category write failed")
		result.RefreshError = err
		return result, nil
	}
	result.List = buildCategoryList(snap)
	return result, nil
}

func (c *CategoryCatalog) Create(ctx context.Context, ownerID string, form CategoryForm) (*CategoryResult, error) {
	var (
		in      CategoryInput
		created model.Category
	)
	result, err := c.mutation(ctx, "create", "category-form", ownerID,
		func() (err error) {
			in, err = form.Parse()
			return err
		},
		func(ctx context.Context, owner string) (err error) {
			created, err = c.client.Categories().Insert(ctx, model.Category{Name: in.Name, UserID: owner})
			return err
		})
	if err != nil {
		return nil, err
	}
	result.Category = &created
	return result, nil
}

func (c *CategoryCatalog) Update(ctx context.Context, ownerID string, id int64, form CategoryForm) (*CategoryResult, error) {
	var in CategoryInput
	return c.mutation(ctx, "update", "category-form", ownerID,
		func() (err error) {
			in, err = form.Parse()
			return err
		},
		func(ctx context.Context, owner string) error {
			return c.client.Categories().Update(ctx, backend.Patch{backend.ColName: in.Name}, backend.NewQuery().
				Eq(backend.ColID, id).
				Eq(backend.ColUserID, owner))
		})
}

// Delete removes category id. Products that referenced it keep the dangling
// id and render as "Category not found".
func (c *CategoryCatalog) Delete(ctx context.Context, ownerID string, id int64) (*CategoryResult, error) {
	return c.mutation(ctx, "delete", fmt.Sprintf("category-delete::%d", id), ownerID,
		func() error { return nil },
		func(ctx context.Context, owner string) error {
			return c.client.Categories().Delete(ctx, backend.NewQuery().
				Eq(backend.ColID, id).
				Eq(backend.ColUserID, owner))
		})
}
