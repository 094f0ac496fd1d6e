package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"example.com/octofit/internal/config"
	"example.com/octofit/internal/leaderboard"
	"example.com/octofit/internal/logging"
	"example.com/octofit/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("leaderboard rebuild failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opened, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer opened.Store.Close(context.Background())

	result, err := leaderboard.NewRebuilder(opened.Store).Rebuild(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully created leaderboard with %d entries\n", result.EntriesWritten)
	return nil
}
