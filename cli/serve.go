package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tem/calculator"
	"tem/server"
	"tem/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve runs over websocket and HTTP",
		Long: `Starts the HTTP server. /ws accepts run and stop messages and streams progress,
/runs exposes stored results as JSON, CSV and PNG and /metrics the prometheus metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = server.NewServer(cfg, catalog, st, logger).Serve(ctx)
			logger.Info("server stopped")
			return err
		},
	}
	cmd.Flags().String("addr", "", "listen address, [server] Addr when empty")
	return cmd
}

func openStore(ctx context.Context, cfg calculator.Config, logger *log.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		st := store.NewRedis(cfg.RedisAddr, cfg.RedisDB,
			store.WithPrefix(cfg.RedisPrefix),
			store.WithTTL(cfg.RedisTTL))
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		logger.WithField("addr", cfg.RedisAddr).Info("using redis store")
		return st, nil
	case "", "memory":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: unknown store backend %q", calculator.ErrConfig, cfg.StoreBackend)
}
