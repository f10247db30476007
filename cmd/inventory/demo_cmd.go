package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-inventory/auth"
	"github.com/goliatone/go-inventory/backend"
	"github.com/goliatone/go-inventory/internal/bunstore"
	"github.com/goliatone/go-inventory/internal/logging"
	"github.com/goliatone/go-inventory/inventory"
	"github.com/goliatone/go-inventory/pkg/di"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newDemoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through a session against an in-memory store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := root.logLevel
			if level == "" {
				level = "warn"
			}
			logging.Setup(level, true)
			return runDemo(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runDemo(ctx context.Context, out io.Writer) error {
	store, err := bunstore.Open(ctx, bunstore.Options{
		Driver:      bunstore.DriverSQLite,
		DSN:         "file:demo-" + uuid.NewString() + "?mode=memory&cache=shared",
		JWTSecret:   []byte(uuid.NewString()),
		AutoConfirm: true,
	})
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	container, err := di.NewContainerWithDefaults(store)
	if err != nil {
		return err
	}
	accounts := container.Accounts()

	fmt.Fprintln(out, "== register and sign in")
	if _, err := accounts.Register(ctx, auth.RegisterForm{
		Username:        "demo_user",
		Email:           "demo@example.com",
		Phone:           "5550001111",
		Password:        "Demo1234",
		ConfirmPassword: "Demo1234",
		AcceptTerms:     true,
	}); err != nil {
		return err
	}
	sess, err := accounts.Login(ctx, auth.LoginForm{Email: "demo@example.com", Password: "Demo1234"})
	if err != nil {
		return err
	}
	ctx = backend.WithAccessToken(ctx, sess.AccessToken)
	fmt.Fprintf(out, "signed in as %s\n", auth.DisplayName(sess.User))

	ws, _, err := container.WorkspaceFor(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "== create categories and products")
	tools, err := ws.Categories.Create(ctx, "", inventory.CategoryForm{Name: "Tools"})
	if err != nil {
		return err
	}
	toolsID := inventory.FormValue(fmt.Sprint(tools.Category.ID))
	for _, form := range []inventory.ProductForm{
		{Name: "Hammer", CategoryID: toolsID, Stock: "12", Price: "9.90"},
		{Name: "Screwdriver", CategoryID: toolsID, Stock: "3", Price: "4.50"},
		{Name: "Tape", Stock: "0", Price: "1.20"},
	} {
		if _, err := ws.Products.Create(ctx, "", form); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "== product list")
	list, err := ws.Products.List(ctx, "", inventory.ListOptions{})
	if err != nil {
		return err
	}
	printProducts(out, list)

	fmt.Fprintln(out, "== filter \"tools\"")
	list, err = ws.Products.List(ctx, "", inventory.ListOptions{Filter: "tools"})
	if err != nil {
		return err
	}
	printProducts(out, list)

	fmt.Fprintln(out, "== dashboard")
	stats, err := ws.Dashboard.Stats(ctx, "", false)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "products: %d  available: %d  low stock: %d  categories: %d  value: %s\n",
		stats.TotalProducts, stats.AvailableProducts, stats.LowStock, stats.TotalCategories, stats.TotalValueLabel)

	return accounts.Logout(ctx)
}

func printProducts(out io.Writer, list *inventory.ProductList) {
	if len(list.Items) == 0 {
		empty := list.EmptyState()
		fmt.Fprintf(out, "%s: %s\n", empty.Title, empty.Message)
		return
	}
	for _, p := range list.Items {
		fmt.Fprintf(out, "  %-12s %-10s stock %3d  %8s  %s\n", p.Name, p.CategoryName, p.Stock, p.PriceLabel, p.Status)
	}
}
