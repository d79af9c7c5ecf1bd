package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/shield"
)

const guildEventTimeout = 10 * time.Second

type inviteCandidate struct {
	ID       snowflake.ID
	Position int
	Text     bool
}

// pickInviteChannel prefers the guild's system channel and falls back to the
// top-most text channel.
func pickInviteChannel(systemChannelID *snowflake.ID, candidates []inviteCandidate) snowflake.ID {
	if systemChannelID != nil && *systemChannelID != 0 {
		return *systemChannelID
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Position < candidates[j].Position
	})
	for _, c := range candidates {
		if c.Text {
			return c.ID
		}
	}
	return 0
}

func (g guildEvents) inviteChannel(ctx context.Context, guild discord.Guild) snowflake.ID {
	if guild.SystemChannelID != nil && *guild.SystemChannelID != 0 {
		return *guild.SystemChannelID
	}
	chans, err := g.b.Client.Rest().GetGuildChannels(guild.ID, rest.WithCtx(ctx))
	if err != nil {
		slog.Warn("Failed to list guild channels",
			slog.String("type", "sys"),
			slog.String("guild_id", guild.ID.String()),
			slog.Any("error", err),
		)
		return 0
	}
	candidates := make([]inviteCandidate, 0, len(chans))
	for _, ch := range chans {
		candidates = append(candidates, inviteCandidate{
			ID:       ch.ID(),
			Position: ch.Position(),
			Text:     ch.Type() == discord.ChannelTypeGuildText,
		})
	}
	return pickInviteChannel(nil, candidates)
}

// canGuard reports whether the bot may mint invites in a guild.
func canGuard(perms discord.Permissions) bool {
	return perms.Has(discord.PermissionAdministrator) || perms.Has(discord.PermissionCreateInstantInvite)
}

type ownershipAction int

const (
	ownershipKeep ownershipAction = iota
	ownershipRegister
	ownershipUnregister
)

// ownershipChange decides what a permission change means for a guild's
// registration. Guilds the bot can guard are always re-registered so owner
// and title stay current.
func ownershipChange(guardable, registered bool) ownershipAction {
	switch {
	case guardable:
		return ownershipRegister
	case registered:
		return ownershipUnregister
	default:
		return ownershipKeep
	}
}

type guildEvents struct {
	b *shield.Bot
}

// GuildHandler keeps the owned-channels index in sync with the guilds the
// bot can guard. Losing invite rights deregisters a guild, regaining them
// registers it again.
func GuildHandler(b *shield.Bot) bot.EventListener {
	g := guildEvents{b: b}
	return bot.NewListenerFunc(func(e bot.Event) {
		switch e := e.(type) {
		case *events.GuildReady:
			g.sync(e.GuildID, false)
		case *events.GuildJoin:
			g.sync(e.GuildID, true)
		case *events.GuildUpdate:
			g.sync(e.GuildID, false)
		case *events.RoleUpdate:
			g.sync(e.GuildID, false)
		case *events.RoleDelete:
			g.sync(e.GuildID, false)
		case *events.GuildMemberUpdate:
			if e.Member.User.ID == g.b.Client.ID() {
				g.sync(e.GuildID, false)
			}
		case *events.GuildLeave:
			g.unregister(e.GuildID, "➖ Left server `%s`")
		}
	})
}

func (g guildEvents) sync(guildID snowflake.ID, announce bool) {
	ctx, cancel := context.WithTimeout(context.Background(), guildEventTimeout)
	defer cancel()

	caches := g.b.Client.Caches()
	guild, ok := caches.Guild(guildID)
	if !ok {
		slog.Warn("Guild missing from cache",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
		)
		return
	}
	self, ok := caches.SelfMember(guildID)
	if !ok {
		slog.Warn("Bot member missing from cache",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
		)
		return
	}

	registered := true
	if _, err := g.b.Channels.Channel(ctx, guildID); err != nil {
		if !errors.Is(err, channels.ErrChannelNotFound) {
			slog.Error("Failed to look up server",
				slog.String("type", "error"),
				slog.String("guild_id", guildID.String()),
				slog.Any("error", err),
			)
			return
		}
		registered = false
	}

	switch ownershipChange(canGuard(caches.MemberPermissions(self)), registered) {
	case ownershipRegister:
		g.register(ctx, guild, announce || !registered)
	case ownershipUnregister:
		g.unregister(guildID, "🔒 Lost invite rights in `%s`, server unregistered")
	default:
		slog.Warn("Missing invite rights, server not registered",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
		)
	}
}

func (g guildEvents) register(ctx context.Context, guild discord.Guild, announce bool) {
	err := g.b.Channels.RegisterChannel(ctx, channels.Channel{
		ID:              guild.ID,
		OwnerID:         guild.OwnerID,
		Title:           guild.Name,
		InviteChannelID: g.inviteChannel(ctx, guild),
	})
	if err != nil {
		slog.Error("Failed to register server",
			slog.String("type", "error"),
			slog.String("guild_id", guild.ID.String()),
			slog.Any("error", err),
		)
		return
	}

	slog.Info("Server registered",
		slog.String("type", "sys"),
		slog.String("guild_id", guild.ID.String()),
		slog.String("owner_id", guild.OwnerID.String()),
	)
	if announce {
		g.b.Messenger.LogEvent(ctx, fmt.Sprintf("➕ Registered **%s** (`%s`), owner <@%s>", guild.Name, guild.ID, guild.OwnerID))
	}
}

func (g guildEvents) unregister(guildID snowflake.ID, format string) {
	ctx, cancel := context.WithTimeout(context.Background(), guildEventTimeout)
	defer cancel()

	if err := g.b.Channels.UnregisterChannel(ctx, guildID); err != nil {
		slog.Error("Failed to unregister server",
			slog.String("type", "error"),
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err),
		)
		return
	}

	slog.Info("Server unregistered",
		slog.String("type", "sys"),
		slog.String("guild_id", guildID.String()),
	)
	g.b.Messenger.LogEvent(ctx, fmt.Sprintf(format, guildID))
}
