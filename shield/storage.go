package shield

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/menu"
	"github.com/gatekeep/shield/internal/gateways/database/repositories"
	"github.com/gatekeep/shield/internal/gateways/memory"
	"github.com/gatekeep/shield/internal/gateways/mongo"
	"github.com/gatekeep/shield/shield/database"
)

type purger interface {
	PurgeExpired(ctx context.Context, now time.Time, retention time.Duration) (int64, error)
}

// Stores is the persistence backend selected by storage.driver.
type Stores struct {
	Driver   string
	Access   access.Repository
	Channels channels.Repository
	Menu     menu.Repository

	purger purger
	close  func(ctx context.Context) error
}

func OpenStores(ctx context.Context, cfg Config) (*Stores, error) {
	start := time.Now()
	var stores *Stores

	switch cfg.Storage.Driver {
	case StoragePostgres:
		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := db.InitializeSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database schema: %w", err)
		}
		stores = &Stores{
			Access:   repositories.NewAccessRequestRepository(db.BunDB(), db.GetPool()),
			Channels: repositories.NewChannelRepository(db.BunDB(), db.GetPool()),
			Menu:     repositories.NewAdminSessionRepository(db.BunDB()),
			purger:   db,
			close: func(context.Context) error {
				db.Close()
				return nil
			},
		}

	case StorageMongo:
		store, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		stores = &Stores{
			Access:   mongo.NewAccessRepository(store),
			Channels: mongo.NewChannelRepository(store),
			Menu:     mongo.NewMenuRepository(store),
			purger:   store,
			close:    store.Close,
		}

	case StorageMemory:
		stores = &Stores{
			Access:   memory.NewAccessRepository(),
			Channels: memory.NewChannelRepository(),
			Menu:     memory.NewMenuRepository(),
			close:    func(context.Context) error { return nil },
		}

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	stores.Driver = cfg.Storage.Driver
	slog.Info("Storage ready",
		slog.String("type", "db"),
		slog.String("driver", stores.Driver),
		slog.Duration("took", time.Since(start)),
	)
	return stores, nil
}

func (s *Stores) Close(ctx context.Context) error {
	return s.close(ctx)
}

// RunJanitor purges stale rows every interval until ctx is done. Stores
// without a purge step return immediately.
func (s *Stores) RunJanitor(ctx context.Context, interval, retention time.Duration) {
	if s.purger == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			purgeCtx, cancel := context.WithTimeout(ctx, time.Minute)
			n, err := s.purger.PurgeExpired(purgeCtx, start.UTC(), retention)
			cancel()
			if err != nil {
				slog.Error("Failed to purge expired records",
					slog.String("type", "db"),
					slog.Any("error", err),
				)
				continue
			}
			slog.Info("Expired records purged",
				slog.String("type", "db"),
				slog.Int64("rows", n),
				slog.Duration("took", time.Since(start)),
			)
		}
	}
}
