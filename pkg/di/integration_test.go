package di

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-inventory/auth"
	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/internal/bunstore"
	"github.com/goliatone/go-inventory/inventory"
	"github.com/google/uuid"
)

func newStoreContainer(t *testing.T) (*Container, *bunstore.Store) {
	t.Helper()
	ctx := context.Background()
	store, err := bunstore.Open(ctx, bunstore.Options{
		Driver:    bunstore.DriverSQLite,
		DSN:       fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		JWTSecret: []byte("integration-secret"),
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	c, err := NewContainerWithDefaults(store)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	return c, store
}

func TestIntegration_InventoryLifecycle(t *testing.T) {
	ctx := context.Background()
	c, store := newStoreContainer(t)
	accounts := c.Accounts()

	form := auth.RegisterForm{
		Username:        "ana_1",
		Email:           "ana@example.com",
		Phone:           "5551234567",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		AcceptTerms:     true,
	}
	if _, err := accounts.Register(ctx, form); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	login := auth.LoginForm{Email: form.Email, Password: form.Password}
	if _, err := accounts.Login(ctx, login); !errors.Is(err, auth.ErrUnconfirmedEmail) {
		t.Fatalf("Expected ErrUnconfirmedEmail before confirmation, got %v", err)
	}

	if err := store.ConfirmEmail(ctx, form.Email); err != nil {
		t.Fatalf("ConfirmEmail() failed: %v", err)
	}
	sess, err := accounts.Login(ctx, login)
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	authed := backend.WithAccessToken(ctx, sess.AccessToken)

	ws, owner, err := c.WorkspaceFor(authed)
	if err != nil {
		t.Fatalf("WorkspaceFor() failed: %v", err)
	}

	cat, err := ws.Categories.Create(authed, "", inventory.CategoryForm{Name: "Tools"})
	if err != nil {
		t.Fatalf("Categories.Create() failed: %v", err)
	}

	created, err := ws.Products.Create(authed, "", inventory.ProductForm{
		Name:       "Widget",
		CategoryID: inventory.FormValue(fmt.Sprint(cat.Category.ID)),
		Stock:      "5",
		Price:      "2.50",
	})
	if err != nil {
		t.Fatalf("Products.Create() failed: %v", err)
	}
	if created.Product.UserID != owner {
		t.Errorf("Expected product owned by %q, got %q", owner, created.Product.UserID)
	}

	list, err := ws.Products.List(authed, "", inventory.ListOptions{})
	if err != nil {
		t.Fatalf("Products.List() failed: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Status != inventory.StatusAvailable || list.Items[0].CategoryName != "Tools" {
		t.Fatalf("Unexpected list: %+v", list.Items)
	}

	id := created.Product.ID
	updated, err := ws.Products.UpdateStock(authed, "", id, inventory.StockForm{Stock: "0"})
	if err != nil {
		t.Fatalf("UpdateStock() failed: %v", err)
	}
	if got := updated.List.Items[0].Status; got != inventory.StatusOutOfStock {
		t.Errorf("Expected %q after stock update, got %q", inventory.StatusOutOfStock, got)
	}

	stats, err := ws.Dashboard.Stats(authed, "", false)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.TotalProducts != 1 || stats.AvailableProducts != 0 || stats.TotalCategories != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	if err := accounts.Logout(authed); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if err := c.Evict(ctx, owner); err != nil {
		t.Fatalf("Evict() failed: %v", err)
	}
	if _, _, err := c.WorkspaceFor(authed); err == nil {
		t.Error("Expected WorkspaceFor() to fail after logout")
	}
}

func TestIntegration_OwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	c, store := newStoreContainer(t)

	owners := make([]string, 2)
	for i, email := range []string{"ana@example.com", "ben@example.com"} {
		p, err := store.Auth().SignUp(ctx, email, "Secret123", nil)
		if err != nil {
			t.Fatalf("SignUp() failed: %v", err)
		}
		owners[i] = p.ID
	}

	if _, err := c.Workspace(owners[0]).Products.Create(ctx, owners[0], inventory.ProductForm{Name: "Widget", Stock: "1", Price: "1"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	list, err := c.Workspace(owners[1]).Products.List(ctx, owners[1], inventory.ListOptions{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list.Items) != 0 {
		t.Errorf("Expected no products for the second owner, got %d", len(list.Items))
	}
	if list.Empty == nil || list.Empty.Title != "No products currently" {
		t.Errorf("Expected the no-data empty state, got %+v", list.Empty)
	}
}
