package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollAccessRequests = "access_requests"
	CollChannels       = "channels"
	CollChannelConfigs = "channel_configs"
	CollAdminSessions  = "admin_sessions"

	connectTimeout = 10 * time.Second
)

type Config struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Store wraps one Mongo database holding every Shield collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, cfg Config) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	slog.Info("Connected to MongoDB",
		slog.String("type", "db"),
		slog.String("database", cfg.Database),
	)
	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the lookup indexes and the TTL index that lets Mongo
// drop stale admin menu sessions by itself.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{CollChannels, mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}}}},
		{CollAccessRequests, mongo.IndexModel{Keys: bson.D{{Key: "channel_id", Value: 1}, {Key: "created_at", Value: -1}}}},
		{CollAdminSessions, mongo.IndexModel{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		}},
	}

	for _, idx := range indexes {
		start := time.Now()
		name, err := s.db.Collection(idx.coll).Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.coll, err)
		}
		slog.Info("Index ensured",
			slog.String("type", "db"),
			slog.String("collection", idx.coll),
			slog.String("index", name),
			slog.Duration("took", time.Since(start)),
		)
	}
	return nil
}

// PurgeExpired deletes access requests that expired more than retention ago.
// Admin sessions are dropped by the TTL index.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	res, err := s.db.Collection(CollAccessRequests).DeleteMany(ctx,
		bson.M{"expires_at": bson.M{"$lte": now.Add(-retention)}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge access requests: %w", err)
	}
	return res.DeletedCount, nil
}
