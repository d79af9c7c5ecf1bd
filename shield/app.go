package shield

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/challenge"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/menu"
	"github.com/gatekeep/shield/internal/domain/verification"
	discordgw "github.com/gatekeep/shield/internal/gateways/discord"
	"github.com/gatekeep/shield/internal/metrics"
	"github.com/gatekeep/shield/shield/services"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the set of domain services shared by the bot and the web server.
type App struct {
	Stores       *Stores
	Channels     *channels.Service
	Ledger       *access.Ledger
	Sessions     *challenge.LRUStore
	Orchestrator *verification.Orchestrator
	Menu         *menu.Machine
	Messenger    *discordgw.Messenger
	Metrics      *metrics.Metrics
}

// NewApp wires the domain services over the configured stores. rest is the
// Discord REST client used for invites and owner DMs.
func NewApp(ctx context.Context, cfg Config, stores *Stores, rest discordgw.RestClient) (*App, error) {
	v := cfg.Verification

	sessions, err := challenge.NewLRUStore(v.SessionCapacity, v.SessionTTL.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge session store: %w", err)
	}

	channelService := channels.NewService(stores.Channels, channels.Options{
		IdentityMaxDigits: v.IdentityMaxDigits,
		DedupeOnAppend:    v.DedupeOnAppend,
	})
	ledger := access.NewLedger(stores.Access, v.RequestTTL.Duration)
	messenger := discordgw.NewMessenger(rest, cfg.Bot.LogChannelID)
	m := metrics.New(prometheus.NewRegistry())

	orchestrator := verification.NewOrchestrator(
		ledger,
		channelService,
		challenge.NewIssuer(challenge.NewPNGRenderer()),
		sessions,
		messenger,
		verification.Options{
			PublicURL:        cfg.Web.PublicURL,
			InviteTTL:        v.InviteTTL.Duration,
			MessengerTimeout: v.MessengerTimeout.Duration,
		},
	).WithRecorder(m)

	if cfg.Spaces.Enabled() {
		spaces, err := services.NewSpacesService(ctx,
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.Prefix,
		)
		if err != nil {
			return nil, err
		}
		orchestrator.WithArchiver(spaces)
		slog.Info("Verification audit archive enabled",
			slog.String("type", "sys"),
			slog.String("bucket", spaces.GetBucket()),
		)
	}

	return &App{
		Stores:       stores,
		Channels:     channelService,
		Ledger:       ledger,
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Menu:         menu.NewMachine(stores.Menu, cfg.Menu.SessionTTL.Duration),
		Messenger:    messenger,
		Metrics:      m,
	}, nil
}
