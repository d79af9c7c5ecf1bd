package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/menu"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/config"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "Learn what Shield does and how to set it up",
}

// invitePermissions is what the bot asks for when added to a server.
const invitePermissions = discord.PermissionCreateInstantInvite | discord.PermissionViewChannel

func addBotURL(clientID snowflake.ID) string {
	return fmt.Sprintf("https://discord.com/oauth2/authorize?client_id=%s&scope=bot%%20applications.commands&permissions=%d",
		clientID, int64(invitePermissions))
}

func homeEmbed(user discord.User) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("🛡️ Welcome to Shield").
		SetDescription(fmt.Sprintf("Hello %s!\n\n"+
			"➻ Shield guards your servers with a CAPTCHA before anyone gets an invite.\n"+
			"──────────────────\n"+
			"➻ Press **Help** to discover all available features.", user.Mention())).
		SetColor(config.BackgroundColor).
		Build()
}

func helpEmbed() discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("🛠 Help").
		SetDescription("These are the available commands:\n\n" +
			"➻ `/config` lists the servers you own and manages their protection\n" +
			"➻ `/gate` posts the join button for a protected server\n" +
			"➻ `/join` requests access to a protected server\n" +
			"➻ `/version` shows the running build").
		SetColor(config.InfoColor).
		Build()
}

func privacyEmbed() discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("🔏 Privacy Policy").
		SetDescription("Shield only stores the data it needs to operate: the servers it guards, " +
			"their owners, the deny lists they configure and short-lived access requests. " +
			"No personal data is shared or sold. By using the bot, you agree to this policy.").
		SetColor(config.InfoColor).
		Build()
}

func homeComponents(clientID snowflake.ID) []discord.ContainerComponent {
	return []discord.ContainerComponent{
		discord.NewActionRow(discord.NewLinkButton("Add me", addBotURL(clientID))),
		discord.NewActionRow(
			discord.NewSecondaryButton("Help", menu.Action{Kind: menu.ActionHelp}.CustomID()),
			discord.NewSecondaryButton("Privacy Policy", menu.Action{Kind: menu.ActionPrivacy}.CustomID()),
		),
	}
}

func backHomeComponents() []discord.ContainerComponent {
	return []discord.ContainerComponent{
		discord.NewActionRow(discord.NewSecondaryButton("Back", menu.Action{Kind: menu.ActionHome}.CustomID())),
	}
}

func HelpHandler(b *shield.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return e.CreateMessage(discord.MessageCreate{
			Embeds:     []discord.Embed{homeEmbed(e.User())},
			Components: homeComponents(b.Client.ID()),
			Flags:      discord.MessageFlagEphemeral,
		})
	}
}

func (h *ConfigHandler) home(_ context.Context, e *handler.ComponentEvent, _ menu.Session, _ menu.Action) error {
	components := homeComponents(h.b.Client.ID())
	return e.UpdateMessage(discord.MessageUpdate{
		Embeds:     &[]discord.Embed{homeEmbed(e.User())},
		Components: &components,
	})
}

func (h *ConfigHandler) help(_ context.Context, e *handler.ComponentEvent, _ menu.Session, _ menu.Action) error {
	components := backHomeComponents()
	return e.UpdateMessage(discord.MessageUpdate{
		Embeds:     &[]discord.Embed{helpEmbed()},
		Components: &components,
	})
}

func (h *ConfigHandler) privacy(_ context.Context, e *handler.ComponentEvent, _ menu.Session, _ menu.Action) error {
	components := backHomeComponents()
	return e.UpdateMessage(discord.MessageUpdate{
		Embeds:     &[]discord.Embed{privacyEmbed()},
		Components: &components,
	})
}
