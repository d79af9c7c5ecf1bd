package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/gatekeep/shield/internal/gateways/mongo"
	"github.com/gatekeep/shield/internal/migration"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/database"
	"github.com/gatekeep/shield/shield/logger"
)

func main() {
	path := flag.String("config", "config.toml", "path to config.toml")
	useCopy := flag.Bool("copy", false, "use COPY FROM (target tables must be empty)")
	batchSize := flag.Int("batch-size", 1000, "rows per insert batch")
	flag.Parse()

	cfg, err := shield.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Setup("Shield-Migrate", cfg.Log.Level)

	ctx := context.Background()

	source, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		slog.Error("Failed to connect to mongo", slog.Any("error", err))
		os.Exit(1)
	}
	defer source.Close(ctx)

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := migration.NewMigrator(source.Database(), db.GetPool())
	migrator.SetBatchSize(*batchSize)
	migrator.SetUseCopy(*useCopy)
	migrator.SetIdentityMaxDigits(cfg.Verification.IdentityMaxDigits)

	if err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Migration completed successfully!")
}
