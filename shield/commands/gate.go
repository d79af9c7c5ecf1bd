package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/config"
	"github.com/gatekeep/shield/shield/utils"
)

var Gate = discord.SlashCommandCreate{
	Name:        "gate",
	Description: "Post a button that lets people request access to this server",
}

const gateJoinPrefix = "/gate/join/"

func GateHandler(b *shield.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateUserError(e, "Use /gate inside the server you want to protect.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.InteractionTimeout)
		defer cancel()

		channel, err := b.Channels.Channel(ctx, *guildID)
		switch {
		case errors.Is(err, channels.ErrChannelNotFound):
			return utils.EH.CreateNotFoundError(e, "Server", guildID.String())
		case err != nil:
			return utils.EH.CreateSystemError(e, "Failed to load this server, please try again later.")
		case channel.OwnerID != e.User().ID:
			return utils.EH.CreatePermissionError(e, "post the access gate")
		}

		cfg, err := b.Channels.Config(ctx, channel.ID)
		if err != nil {
			return utils.EH.CreateSystemError(e, "Failed to load this server, please try again later.")
		}

		return e.CreateMessage(gateMessage(channel, cfg.CaptchaOn))
	}
}

func gateMessage(channel channels.Channel, protected bool) discord.MessageCreate {
	description := fmt.Sprintf("Press the button below to request access to **%s**. You will be asked to solve a short challenge.", channel.Title)
	if !protected {
		description += "\n\nProtection is currently off. Enable it with /config."
	}
	return discord.NewMessageCreateBuilder().
		AddEmbeds(discord.NewEmbedBuilder().
			SetTitle("🛡️ Protected server").
			SetDescription(description).
			SetColor(config.BackgroundColor).
			SetFooterText("Server code: " + channel.ID.String()).
			Build()).
		AddActionRow(discord.NewPrimaryButton("Request access", gateJoinPrefix+channel.ID.String())).
		Build()
}

func GateJoinHandler(b *shield.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		guildID, err := snowflake.Parse(e.Vars["guild"])
		if err != nil {
			return utils.EH.CreateUserError(e, "This button is no longer valid.")
		}
		return beginAccess(b, e, guildID)
	}
}
