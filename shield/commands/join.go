package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/verification"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/config"
	"github.com/gatekeep/shield/shield/utils"
)

var Join = discord.SlashCommandCreate{
	Name:        "join",
	Description: "Request access to a protected server",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "code",
			Description: "The server code shared by its owner",
			Required:    true,
		},
	},
}

var joinErrors = []utils.Classification{
	{Err: verification.ErrNotProtected, Type: utils.UserError, Message: "This server does not require verification right now. Ask the owner for an invite."},
	{Err: verification.ErrUnknownChannel, Type: utils.NotFoundError, Message: "Shield does not know this server. Check the code with its owner."},
	{Err: verification.ErrDenied, Type: utils.PermissionError, Message: "You are not allowed to request access to this server."},
}

func JoinHandler(b *shield.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		code := strings.TrimSpace(e.SlashCommandInteractionData().String("code"))
		channelID, err := snowflake.Parse(code)
		if err != nil || channelID == 0 {
			return utils.EH.CreateUserError(e, fmt.Sprintf("`%s` is not a valid server code.", code))
		}
		return beginAccess(b, e, channelID)
	}
}

// deferredResponder is satisfied by command and component events.
type deferredResponder interface {
	User() discord.User
	DeferCreateMessage(ephemeral bool, opts ...rest.RequestOpt) error
	UpdateInteractionResponse(messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// beginAccess opens an access request for the interacting user and answers
// with the verification link. The owner DM can take a while, so the response
// is deferred first.
func beginAccess(b *shield.Bot, e deferredResponder, channelID snowflake.ID) error {
	if err := e.DeferCreateMessage(true); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.Cfg.Verification.MessengerTimeout.Duration+config.InteractionTimeout)
	defer cancel()

	user := e.User()
	res, err := b.Orchestrator.Begin(ctx, channelID, user.ID)
	if err != nil {
		errType, msg := utils.Classify(err, joinErrors...)
		if errType == utils.SystemError {
			slog.Error("Failed to begin access request",
				slog.String("type", "cmd"),
				slog.String("channel_id", channelID.String()),
				slog.String("user_id", user.ID.String()),
				slog.Any("error", err),
			)
		}
		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Embeds: &[]discord.Embed{utils.ErrorEmbed(errType, msg)},
		})
		return err
	}

	_, err = e.UpdateInteractionResponse(verifyMessage(res))
	return err
}

func verifyMessage(res verification.BeginResult) discord.MessageUpdate {
	embed := discord.NewEmbedBuilder().
		SetTitle("Verification required").
		SetDescription(fmt.Sprintf(
			"Open the link below and solve the challenge to receive a single-use invite.\nThe link expires <t:%d:R>.",
			res.Request.ExpiresAt.Unix(),
		)).
		SetColor(config.InfoColor).
		SetFooterText("Request " + access.ShortID(res.Request.ID)).
		Build()

	return discord.MessageUpdate{
		Embeds: &[]discord.Embed{embed},
		Components: &[]discord.ContainerComponent{
			discord.NewActionRow(discord.NewLinkButton("Verify Now", res.VerifyURL)),
		},
	}
}
