package inventory

import (
	"context"
	"testing"

	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/cache"
	"github.com/goliatone/go-inventory/model"
	"github.com/goliatone/go-inventory/pkg/testsupport"
	"github.com/goliatone/go-inventory/session"
	"github.com/stretchr/testify/require"
)

var (
	opSelectProducts   = testsupport.TableOp("products", "select")
	opSelectCategories = testsupport.TableOp("categories", "select")
)

type fixture struct {
	fb    *testsupport.FakeBackend
	ws    *Workspace
	users map[string]model.Principal
	// ctx carries ana's access token.
	ctx context.Context
}

func (f *fixture) id(email string) string {
	return f.users[email].ID
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	fb := testsupport.NewFakeBackend()
	users := testsupport.SeedInventory(t, fb, testsupport.FixturePath("catalog.json"))

	svc, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)

	ws := NewWorkspace("test", fb, session.NewResolver(fb.Auth()), svc, opts...)
	ctx := backend.WithAccessToken(context.Background(), fb.Login("ana@example.com"))

	return &fixture{fb: fb, ws: ws, users: users, ctx: ctx}
}

func names(list *ProductList) []string {
	out := make([]string, len(list.Items))
	for i, item := range list.Items {
		out[i] = item.Name
	}
	return out
}

func item(t *testing.T, list *ProductList, id int64) ProductView {
	t.Helper()
	for _, it := range list.Items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("product %d not in list", id)
	return ProductView{}
}
