// Package store selects and opens the configured Record Store backend.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/octofit/internal/config"
	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/logging"
	"example.com/octofit/internal/store/memory"
	"example.com/octofit/internal/store/mongo"
	"example.com/octofit/internal/store/postgres"
)

// Opened is a connected backend. Pool is set only for the postgres backend,
// which is the one that carries the outbox.
type Opened struct {
	Store domain.Store
	Pool  *pgxpool.Pool
}

// Open connects to the backend named by cfg.StoreBackend.
func Open(ctx context.Context, cfg config.Config) (Opened, error) {
	logging.Info().Str("backend", cfg.StoreBackend).Msg("opening record store")

	switch cfg.StoreBackend {
	case config.BackendMemory:
		return Opened{Store: memory.New()}, nil
	case config.BackendPostgres:
		pg, err := postgres.Connect(ctx, cfg.PostgresURL, cfg.PostgresMaxConns, postgres.WithOutbox(cfg.OutboxEnabled()))
		if err != nil {
			return Opened{}, err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close(ctx)
			return Opened{}, fmt.Errorf("ping postgres: %w", err)
		}
		return Opened{Store: pg, Pool: pg.Pool()}, nil
	case config.BackendMongo:
		m, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return Opened{}, err
		}
		return Opened{Store: m}, nil
	default:
		return Opened{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
