package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/verification"
)

const (
	inviteBaseURL = "https://discord.gg/"

	colorInfo    = 0x0099FF
	colorSuccess = 0x00FF00
)

var ErrNoInviteChannel = errors.New("server has no channel to create invites on")

// RestClient is the subset of disgo's rest.Rest used by the messenger.
type RestClient interface {
	CreateInvite(channelID snowflake.ID, inviteCreate discord.InviteCreate, opts ...rest.RequestOpt) (*discord.Invite, error)
	CreateDMChannel(userID snowflake.ID, opts ...rest.RequestOpt) (*discord.DMChannel, error)
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// Messenger mints single-use invites and delivers owner notifications over
// the Discord REST API.
type Messenger struct {
	rest         RestClient
	logChannelID snowflake.ID
}

func NewMessenger(client RestClient, logChannelID snowflake.ID) *Messenger {
	return &Messenger{rest: client, logChannelID: logChannelID}
}

func (m *Messenger) CreateInvite(ctx context.Context, channel channels.Channel, maxAge time.Duration) (string, error) {
	if channel.InviteChannelID == 0 {
		return "", ErrNoInviteChannel
	}

	maxUses := 1
	age := int(maxAge / time.Second)
	invite, err := m.rest.CreateInvite(channel.InviteChannelID, discord.InviteCreate{
		MaxAge:  &age,
		MaxUses: &maxUses,
		Unique:  true,
	}, rest.WithCtx(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create invite for %s: %w", channel.ID, err)
	}
	if invite == nil || invite.Code == "" {
		return "", fmt.Errorf("discord returned an empty invite for %s", channel.ID)
	}
	return inviteBaseURL + invite.Code, nil
}

func (m *Messenger) NotifyOwner(ctx context.Context, ownerID snowflake.ID, n verification.Notification) error {
	dm, err := m.rest.CreateDMChannel(ownerID, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM with owner %s: %w", ownerID, err)
	}

	_, err = m.rest.CreateMessage(dm.ID(), discord.MessageCreate{
		Embeds: []discord.Embed{notificationEmbed(n)},
	}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to message owner %s: %w", ownerID, err)
	}
	return nil
}

// LogEvent posts content to the configured log channel. It is a no-op when
// no log channel is configured.
func (m *Messenger) LogEvent(ctx context.Context, content string) {
	if m.logChannelID == 0 {
		return
	}
	_, err := m.rest.CreateMessage(m.logChannelID, discord.NewMessageCreateBuilder().
		SetContent(content).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		slog.Error("Failed to post to log channel",
			slog.String("type", "error"),
			slog.String("channel_id", m.logChannelID.String()),
			slog.Any("error", err),
		)
	}
}

func notificationEmbed(n verification.Notification) discord.Embed {
	eb := discord.NewEmbedBuilder().SetTimestamp(n.At)
	switch n.Kind {
	case verification.NotifyVerified:
		eb.SetTitle("✅ Access granted").
			SetColor(colorSuccess).
			SetDescription(fmt.Sprintf("<@%s> passed verification for **%s**.", n.RequesterID, n.ChannelTitle))
		if n.Address != "" {
			eb.AddField("Address", n.Address, true)
		}
		if n.ReportedAddress != "" && n.ReportedAddress != n.Address {
			eb.AddField("Reported address", n.ReportedAddress, true)
		}
		if n.InviteLink != "" {
			eb.AddField("Invite", n.InviteLink, false)
		}
	default:
		eb.SetTitle("🔔 New access request").
			SetColor(colorInfo).
			SetDescription(fmt.Sprintf("<@%s> asked to join **%s**.", n.RequesterID, n.ChannelTitle))
	}
	eb.AddField("User ID", n.RequesterID.String(), true).
		AddField("Request", n.RequestID, false)
	return eb.Build()
}
