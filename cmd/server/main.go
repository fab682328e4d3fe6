// Package main is the entry point for the pet-composer HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/app"
	"github.com/fleveque/pet-composer/internal/config"
	"github.com/fleveque/pet-composer/internal/server"
	"github.com/fleveque/pet-composer/internal/storage"
)

func main() {
	// run() is separate so deferred cleanup executes before os.Exit.
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// An empty path lets config.Load pick up PETCOMPOSER_CONFIG_PATH.
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// zap outputs JSON in production and human-readable lines in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr, so the error is ignored.
	defer func() { _ = logger.Sync() }()

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	captionCalls := storage.NewCaptionCallRepository(db)

	a, err := app.New(cfg, captionCalls, logger)
	if err != nil {
		return err
	}

	srv := server.New(cfg, server.Deps{
		Images:       a.Images,
		Composer:     a.Composer,
		Battles:      a.Battles,
		CaptionCalls: captionCalls,
	}, logger)

	// Graceful shutdown on SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Battles can take a while; give in-flight requests 30 seconds.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
