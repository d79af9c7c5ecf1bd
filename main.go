package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/gatekeep/shield/backend/server"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/commands"
	"github.com/gatekeep/shield/shield/handlers"
	"github.com/gatekeep/shield/shield/logger"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	runWeb := flag.Bool("web", true, "Whether to serve the verification pages from this process")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := shield.LoadConfig(*path)
	if err != nil {
		logger.Setup("Shield", slog.LevelInfo)
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	logger.Setup("Shield", cfg.Log.Level)

	slog.Info("Starting Shield",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	stores, err := shield.OpenStores(setupCtx, *cfg)
	cancel()
	if err != nil {
		slog.Error("Failed to open storage",
			slog.String("type", "sys"),
			slog.String("driver", cfg.Storage.Driver),
			slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := stores.Close(ctx); err != nil {
			slog.Error("Failed to close storage", slog.Any("error", err))
		}
	}()

	b := shield.New(*cfg, version, commit)

	h := handler.New()
	commands.Register(h, b)

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady), handlers.GuildHandler(b)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	setupCtx, cancel = context.WithTimeout(ctx, time.Minute)
	b.App, err = shield.NewApp(setupCtx, *cfg, stores, b.Client.Rest())
	cancel()
	if err != nil {
		slog.Error("Failed to initialize services", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = b.Client.OpenGateway(openCtx)
	cancel()
	if err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stores.RunJanitor(gctx, cfg.Storage.PurgeInterval.Duration, cfg.Storage.Retention.Duration)
		return nil
	})
	if *runWeb {
		app := b.WebServer(*cfg, version, commit)
		g.Go(func() error {
			return server.Serve(gctx, app, cfg.Web.Address())
		})
	}

	slog.Info("Bot is running. Press CTRL-C to exit.", slog.String("type", "sys"))
	<-gctx.Done()
	if err := g.Wait(); err != nil {
		slog.Error("Shield stopped with error", slog.String("type", "sys"), slog.Any("error", err))
	}
	slog.Info("Shutting down Shield...", slog.String("type", "sys"))
}
