package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/swiftpay/swiftpay/internal/config"
	"github.com/swiftpay/swiftpay/internal/infra"
	"github.com/swiftpay/swiftpay/internal/logging"
	"github.com/swiftpay/swiftpay/internal/server"
	"github.com/swiftpay/swiftpay/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "swiftpay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	clients, err := infra.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect backends: %w", err)
	}
	defer func() {
		if err := clients.Close(); err != nil {
			logger.Warn("close backends", "error", err)
		}
	}()

	st, err := store.Open(ctx, cfg.StoreDriver, store.Backends{
		Postgres: clients.DB,
		Redis:    clients.Cache,
		SQLite:   clients.SQLite,
	})
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("close record store", "error", err)
		}
	}()

	srv, err := server.New(cfg, st, *clients, logger)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()
	logger.Info("swiftpay listening", "addr", cfg.Address(), "store", cfg.StoreDriver, "env", cfg.Env)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server exited cleanly")
	return nil
}
