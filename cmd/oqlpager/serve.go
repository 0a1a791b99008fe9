package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guileen/oqlpager/api"
	"github.com/guileen/oqlpager/cache"
	"github.com/guileen/oqlpager/logger"
)

func newServeCommand() *cobra.Command {
	var (
		addr    string
		dbPath  string
		ttl     time.Duration
		entries int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the query derivation HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, dbPath, entries, ttl)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "path of the persistent derived-query store (disabled when empty)")
	cmd.Flags().IntVar(&entries, "cache-entries", 256, "in-memory derivation cache capacity")
	cmd.Flags().DurationVar(&ttl, "cache-ttl", 0, "in-memory derivation cache TTL (0 disables expiration)")

	return cmd
}

func runServe(addr, dbPath string, entries int, ttl time.Duration) error {
	cfg := cache.Config{Capacity: entries, TTL: ttl}

	if dbPath != "" {
		store, err := cache.NewStore(cache.DefaultStoreConfig(dbPath))
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Store = store
		logger.Info("derived-query store opened", "path", dbPath)
	}

	handler := api.NewHandler(cache.New(cfg))

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("derivation service listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
