package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"example.com/octofit/internal/config"
	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/leaderboard"
	"example.com/octofit/internal/logging"
	"example.com/octofit/internal/seed"
	"example.com/octofit/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("populate failed")
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
	ctx, cancel := context.WithTimeout(ctx, cfg.SeedTimeout)
	defer cancel()

	opened, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer opened.Store.Close(context.Background())

	if cfg.StoreBackend == config.BackendMemory {
		logging.Warn().Msg("memory backend selected; seeded data is discarded on exit")
	}

	counts, err := seed.Populate(ctx,
		domain.NewService(opened.Store),
		leaderboard.NewRebuilder(opened.Store),
		logging.WithComponent("seed"),
	)
	if err != nil {
		return err
	}

	fmt.Println("Database populated successfully!")
	fmt.Printf("Total Users: %d\n", counts.Users)
	fmt.Printf("Total Teams: %d\n", counts.Teams)
	fmt.Printf("Total Activities: %d\n", counts.Activities)
	fmt.Printf("Total Leaderboard Entries: %d\n", counts.Leaderboard)
	fmt.Printf("Total Workouts: %d\n", counts.Workouts)
	return nil
}
