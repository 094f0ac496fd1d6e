package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/octofit/internal/config"
	"example.com/octofit/internal/consumer"
	"example.com/octofit/internal/logging"
	"example.com/octofit/internal/supervisor"
	httptransport "example.com/octofit/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.PostgresURL == "" || len(cfg.KafkaBrokers) == 0 {
		logging.Fatal().Msg("consumer requires POSTGRES_URL and KAFKA_BROKERS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	handler := consumer.NewEventLogHandler(pool)
	root := supervisor.New("octofit-consumer", logging.WithComponent("supervisor"), supervisor.Config{})

	metricsCfg := httptransport.DefaultServerConfig(cfg.MetricsAddress)
	root.Add(httptransport.NewService("metrics-server", httptransport.NewServer(metricsCfg, promhttp.Handler()), metricsCfg.ShutdownTimeout))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.ConsumerGroupID,
		GroupTopics:    cfg.ConsumerTopics,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		RetentionTime:  24 * time.Hour,
	})
	defer reader.Close()
	root.Add(consumer.NewProcessor(reader, handler))

	logging.Info().
		Strs("topics", cfg.ConsumerTopics).
		Str("group", cfg.ConsumerGroupID).
		Str("metrics_address", cfg.MetricsAddress).
		Msg("consumer started")
	if err := root.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped")
	}
	logging.Info().Msg("consumer stopped")
}
