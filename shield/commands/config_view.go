package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/menu"
	"github.com/gatekeep/shield/shield/config"
)

const maxButtonLabel = 80

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// listPreview renders up to max entries of a deny list as a code block.
func listPreview(values []string, max int) string {
	if len(values) == 0 {
		return "*empty*"
	}
	shown := values
	if len(shown) > max {
		shown = shown[:max]
	}
	preview := "```\n" + strings.Join(shown, "\n") + "\n```"
	if rest := len(values) - len(shown); rest > 0 {
		preview += fmt.Sprintf("…and %d more", rest)
	}
	return preview
}

func protectionLabel(on bool) string {
	if on {
		return "🟢 On"
	}
	return "🔴 Off"
}

func channelEmbed(channel channels.Channel, cfg channels.Config, showLists bool) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("⚙️ " + channel.Title).
		SetColor(config.BackgroundColor).
		AddField("Protection", protectionLabel(cfg.CaptchaOn), true).
		AddField("Banned addresses", fmt.Sprintf("%d", len(cfg.BannedAddresses)), true).
		AddField("Banned users", fmt.Sprintf("%d", len(cfg.BannedIdentities)), true).
		SetFooterText("Server code: " + channel.ID.String())

	if showLists {
		builder.AddField("Addresses", listPreview(cfg.BannedAddresses, config.MaxListPreview), false)
		builder.AddField("Users", listPreview(cfg.BannedIdentities, config.MaxListPreview), false)
	}
	if !cfg.UpdatedAt.IsZero() {
		builder.SetTimestamp(cfg.UpdatedAt)
	}
	return builder.Build()
}

type buttonFunc func(label string, customID string) discord.ButtonComponent

func actionButton(style buttonFunc, label string, a menu.Action) discord.ButtonComponent {
	return style(label, a.CustomID())
}

func channelComponents(id snowflake.ID, captchaOn bool) []discord.ContainerComponent {
	toggle := actionButton(discord.NewSuccessButton, "Enable protection", menu.Action{Kind: menu.ActionProtectOn, ChannelID: id})
	if captchaOn {
		toggle = actionButton(discord.NewDangerButton, "Disable protection", menu.Action{Kind: menu.ActionProtectOff, ChannelID: id})
	}

	return []discord.ContainerComponent{
		discord.NewActionRow(
			toggle,
			actionButton(discord.NewSecondaryButton, "Show lists", menu.Action{Kind: menu.ActionShowLists, ChannelID: id}),
			actionButton(discord.NewSecondaryButton, "Back", menu.Action{Kind: menu.ActionBack, ChannelID: id}),
		),
		discord.NewActionRow(
			actionButton(discord.NewPrimaryButton, "Replace addresses", menu.Action{Kind: menu.ActionEditAddresses, ChannelID: id, Mode: channels.ModeOverwrite}),
			actionButton(discord.NewPrimaryButton, "Add addresses", menu.Action{Kind: menu.ActionEditAddresses, ChannelID: id, Mode: channels.ModeAppend}),
			actionButton(discord.NewDangerButton, "Clear addresses", menu.Action{Kind: menu.ActionClearAddresses, ChannelID: id}),
		),
		discord.NewActionRow(
			actionButton(discord.NewPrimaryButton, "Replace users", menu.Action{Kind: menu.ActionEditIdentities, ChannelID: id, Mode: channels.ModeOverwrite}),
			actionButton(discord.NewPrimaryButton, "Add users", menu.Action{Kind: menu.ActionEditIdentities, ChannelID: id, Mode: channels.ModeAppend}),
			actionButton(discord.NewDangerButton, "Clear users", menu.Action{Kind: menu.ActionClearIdentities, ChannelID: id}),
		),
	}
}

// channelsList renders at most max servers, one per line.
func channelsList(owned []channels.Channel, max int) string {
	var sb strings.Builder
	for i, c := range owned {
		if i == max {
			sb.WriteString(fmt.Sprintf("…and %d more, use `/config server:` to pick one\n", len(owned)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("• **%s** `%s`\n", c.Title, c.ID))
	}
	return sb.String()
}

func channelsEmbed(owned []channels.Channel) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("🛡️ Your servers").
		SetDescription(channelsList(owned, config.MaxListPreview)).
		SetColor(config.BackgroundColor).
		SetFooterText("Pick a server to manage its protection").
		Build()
}

// channelsComponents offers one button per server, five to a row. It
// returns nil when there are too many servers for buttons.
func channelsComponents(owned []channels.Channel) []discord.ContainerComponent {
	if len(owned) == 0 || len(owned) > config.MaxMenuButtons {
		return nil
	}
	buttons := make([]discord.InteractiveComponent, 0, len(owned))
	for _, c := range owned {
		buttons = append(buttons, actionButton(discord.NewSecondaryButton, truncate(c.Title, maxButtonLabel), menu.Action{Kind: menu.ActionOpen, ChannelID: c.ID}))
	}
	return []discord.ContainerComponent{discord.NewActionRow(buttons...)}
}

// inputTarget maps a modal kind segment onto the screen and list it fills.
func inputTarget(kind string) (menu.Screen, channels.ListKind, bool) {
	switch kind {
	case channels.ListAddresses.String():
		return menu.ScreenAwaitAddresses, channels.ListAddresses, true
	case channels.ListIdentities.String():
		return menu.ScreenAwaitIdentities, channels.ListIdentities, true
	default:
		return 0, 0, false
	}
}

func inputCustomID(kind channels.ListKind, channelID snowflake.ID) string {
	return fmt.Sprintf("/menu-input/%s/%s", kind, channelID)
}

// inputSummary describes the result of a list update, reporting every
// rejected line.
func inputSummary(kind channels.ListKind, mode channels.ListMode, result channels.ListResult) string {
	verb := "Replaced"
	if mode == channels.ModeAppend {
		verb = "Added"
	}
	noun := "addresses"
	if kind == channels.ListIdentities {
		noun = "users"
	}

	return fmt.Sprintf("%s banned %s: %d valid entries.", verb, noun, len(result.Accepted)) + invalidLines(result.Invalid)
}

func invalidLines(invalid []channels.InvalidEntry) string {
	if len(invalid) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n\nIgnored %d invalid lines:\n", len(invalid)))
	for i, inv := range invalid {
		if i == config.MaxListPreview {
			sb.WriteString(fmt.Sprintf("…and %d more\n", len(invalid)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("• line %d `%s`: %s\n", inv.Line, truncate(inv.Value, 40), inv.Reason))
	}
	return sb.String()
}
