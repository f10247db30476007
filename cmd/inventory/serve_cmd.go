package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-inventory/internal/api"
	"github.com/goliatone/go-inventory/internal/bunstore"
	"github.com/goliatone/go-inventory/internal/metrics"
	"github.com/goliatone/go-inventory/pkg/di"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			store, err := bunstore.Open(ctx, cfg.StoreOptions())
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			collector := metrics.New(prometheus.DefaultRegisterer)
			container, err := di.NewContainer(store, cfg.Cache, di.WithObserver(collector))
			if err != nil {
				return fmt.Errorf("container: %w", err)
			}

			srv := &http.Server{
				Addr: cfg.HTTP.Addr,
				Handler: api.NewRouter(container, api.Options{
					CookieName:   cfg.Auth.CookieName,
					SecureCookie: cfg.Service.Env == "production",
					Logger:       logger,
					Metrics:      collector,
				}),
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}

			go func() {
				<-ctx.Done()
				logger.Info().Msg("shutting down")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
				defer shutdownCancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("graceful shutdown failed")
				}
			}()

			logger.Info().
				Str("addr", cfg.HTTP.Addr).
				Str("driver", cfg.Store.Driver).
				Str("env", cfg.Service.Env).
				Msg("inventory API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override HTTP_ADDR")
	return cmd
}
