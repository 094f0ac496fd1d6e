package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"example.com/octofit/internal/api"
	"example.com/octofit/internal/config"
	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/leaderboard"
	"example.com/octofit/internal/logging"
	"example.com/octofit/internal/outbox"
	"example.com/octofit/internal/store"
	"example.com/octofit/internal/supervisor"
	httptransport "example.com/octofit/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opened, err := store.Open(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("open record store")
	}
	defer func() {
		if err := opened.Store.Close(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("close record store")
		}
	}()

	service := domain.NewService(opened.Store)
	rebuilder := leaderboard.NewRebuilder(opened.Store)

	router := api.NewRouter(api.RouterConfig{
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		Logger:            logging.WithComponent("http"),
	}, api.NewHandler(service, rebuilder), opened.Store)

	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress)
	server := httptransport.NewServer(serverCfg, router)

	root := supervisor.New("octofit-api", logging.WithComponent("supervisor"), supervisor.Config{})
	root.Add(httptransport.NewService("http-server", server, serverCfg.ShutdownTimeout))

	if cfg.OutboxEnabled() {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
		root.Add(outbox.NewDispatcher(opened.Pool, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize))
		logging.Info().Strs("brokers", cfg.KafkaBrokers).Msg("outbox dispatcher enabled")
	}
	if cfg.LeaderboardRebuildInterval > 0 {
		root.Add(leaderboard.NewScheduler(rebuilder, cfg.LeaderboardRebuildInterval))
	}

	logging.Info().Str("address", cfg.HTTPAddress).Str("backend", cfg.StoreBackend).Msg("octofit api listening")
	if err := root.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped")
	}
	logging.Info().Msg("octofit api stopped")
}
