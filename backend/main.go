package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/rest"
	"github.com/gatekeep/shield/backend/server"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

// The standalone web process serves the verification pages without a
// gateway connection. It talks to Discord over REST only.
func main() {
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := shield.LoadConfig(*path)
	if err != nil {
		logger.Setup("Shield-Web", slog.LevelInfo)
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Setup("Shield-Web", cfg.Log.Level)

	slog.Info("Starting Shield web server",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	stores, err := shield.OpenStores(setupCtx, *cfg)
	if err != nil {
		slog.Error("Failed to open storage", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = stores.Close(ctx)
	}()

	client := rest.New(rest.NewClient(cfg.Bot.Token))
	defer client.Close(context.Background())

	app, err := shield.NewApp(setupCtx, *cfg, stores, client)
	if err != nil {
		slog.Error("Failed to initialize services", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(1)
	}

	if err := server.Serve(ctx, app.WebServer(*cfg, version, commit), cfg.Web.Address()); err != nil {
		slog.Error("Web server stopped with error", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Web server shutdown complete", slog.String("type", "sys"))
}
