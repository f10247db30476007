package main

import (
	"fmt"

	"github.com/goliatone/go-inventory/internal/bunstore"
	"github.com/spf13/cobra"
)

func newConfirmEmailCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm-email <email>",
		Short: "Mark an account's email address as confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := bunstore.Open(ctx, cfg.StoreOptions())
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			if err := store.ConfirmEmail(ctx, args[0]); err != nil {
				return err
			}
			logger.Info().Str("email", args[0]).Msg("email confirmed")
			fmt.Fprintf(cmd.OutOrStdout(), "confirmed %s\n", args[0])
			return nil
		},
	}
}
