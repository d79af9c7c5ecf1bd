package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/menu"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/config"
	"github.com/gatekeep/shield/shield/utils"
)

var Config = discord.SlashCommandCreate{
	Name:        "config",
	Description: "Manage the protection of the servers you own",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "server",
			Description:  "The server to manage",
			Required:     false,
			Autocomplete: true,
		},
	},
}

const listInputID = "entries"

var menuErrors = []utils.Classification{
	{Err: channels.ErrNotOwner, Type: utils.PermissionError, Message: "Only the server owner can change its protection."},
	{Err: channels.ErrChannelNotFound, Type: utils.NotFoundError, Message: "Shield is no longer in that server."},
	{Err: menu.ErrStaleSession, Type: utils.UserError, Message: "This menu expired, run /config again."},
	{Err: menu.ErrInvalidAction, Type: utils.UserError, Message: "This button is no longer valid, run /config again."},
}

type menuActionFunc func(h *ConfigHandler, ctx context.Context, e *handler.ComponentEvent, s menu.Session, a menu.Action) error

// menuActions dispatches every menu button by its kind.
var menuActions = map[menu.ActionKind]menuActionFunc{
	menu.ActionOpen:            (*ConfigHandler).open,
	menu.ActionShowLists:       (*ConfigHandler).showLists,
	menu.ActionProtectOn:       (*ConfigHandler).protectOn,
	menu.ActionProtectOff:      (*ConfigHandler).protectOff,
	menu.ActionEditAddresses:   (*ConfigHandler).editList,
	menu.ActionEditIdentities:  (*ConfigHandler).editList,
	menu.ActionClearAddresses:  (*ConfigHandler).clearAddresses,
	menu.ActionClearIdentities: (*ConfigHandler).clearIdentities,
	menu.ActionBack:            (*ConfigHandler).back,
	menu.ActionHome:            (*ConfigHandler).home,
	menu.ActionHelp:            (*ConfigHandler).help,
	menu.ActionPrivacy:         (*ConfigHandler).privacy,
}

type ConfigHandler struct {
	b *shield.Bot
}

func NewConfigHandler(b *shield.Bot) *ConfigHandler {
	return &ConfigHandler{b: b}
}

func (h *ConfigHandler) respondError(e any, err error) error {
	errType, msg := utils.Classify(err, menuErrors...)
	if errType == utils.SystemError {
		slog.Error("Config menu failed",
			slog.String("type", "cmd"),
			slog.Any("error", err),
		)
	}
	return utils.EH.CreateClassifiedError(e, errType, msg)
}

func (h *ConfigHandler) ownedChannel(ctx context.Context, userID, channelID snowflake.ID) (channels.Channel, error) {
	channel, err := h.b.Channels.Channel(ctx, channelID)
	if err != nil {
		return channels.Channel{}, err
	}
	if channel.OwnerID != userID {
		return channels.Channel{}, channels.ErrNotOwner
	}
	return channel, nil
}

func (h *ConfigHandler) HandleCommand(e *handler.CommandEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), config.InteractionTimeout)
	defer cancel()

	userID := e.User().ID
	if server, ok := e.SlashCommandInteractionData().OptString("server"); ok && server != "" {
		channelID, err := snowflake.Parse(server)
		if err != nil {
			return utils.EH.CreateUserError(e, "Pick a server from the suggestions.")
		}
		return h.openDirect(ctx, e, userID, channelID)
	}

	if _, err := h.b.Menu.Start(ctx, userID); err != nil {
		return h.respondError(e, err)
	}
	owned, err := h.b.Channels.OwnedChannels(ctx, userID)
	if err != nil {
		return h.respondError(e, err)
	}
	if len(owned) == 0 {
		return utils.EH.CreateUserError(e, "Shield is not in any server you own. Add the bot to your server first.")
	}

	if len(owned) <= config.MaxMenuButtons {
		return e.CreateMessage(discord.MessageCreate{
			Embeds:     []discord.Embed{channelsEmbed(owned)},
			Components: channelsComponents(owned),
			Flags:      discord.MessageFlagEphemeral,
		})
	}

	pageSize := h.b.Cfg.Menu.PageSize
	return h.b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: userID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			start := page * pageSize
			end := min(start+pageSize, len(owned))
			embed.SetTitle("🛡️ Your servers").
				SetDescription(channelsList(owned[start:end], pageSize) + "\nUse `/config server:` to manage one.").
				SetColor(config.BackgroundColor)
		},
		Pages:      (len(owned) + pageSize - 1) / pageSize,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, true)
}

// openDirect jumps straight to the channel screen for /config server:.
func (h *ConfigHandler) openDirect(ctx context.Context, e *handler.CommandEvent, userID, channelID snowflake.ID) error {
	channel, err := h.ownedChannel(ctx, userID, channelID)
	if err != nil {
		return h.respondError(e, err)
	}
	a := menu.Action{Kind: menu.ActionOpen, ChannelID: channelID}
	if _, err := h.b.Menu.Apply(ctx, userID, a); err != nil {
		return h.respondError(e, err)
	}
	h.b.Metrics.ObserveMenuAction(a.Kind.String())

	cfg, err := h.b.Channels.Config(ctx, channelID)
	if err != nil {
		return h.respondError(e, err)
	}
	return e.CreateMessage(discord.MessageCreate{
		Embeds:     []discord.Embed{channelEmbed(channel, cfg, false)},
		Components: channelComponents(channel.ID, cfg.CaptchaOn),
		Flags:      discord.MessageFlagEphemeral,
	})
}

func (h *ConfigHandler) HandleAutocomplete(e *handler.AutocompleteEvent) error {
	focused := e.Data.Focused()
	var query string
	if err := json.Unmarshal(focused.Value, &query); err != nil {
		return e.AutocompleteResult([]discord.AutocompleteChoice{})
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.AutocompleteTimeout)
	defer cancel()

	owned, err := h.b.Channels.SearchOwnedChannels(ctx, e.User().ID, query, config.AutocompleteLimit)
	if err != nil {
		slog.Error("Failed to search owned servers",
			slog.String("type", "cmd"),
			slog.String("user_id", e.User().ID.String()),
			slog.Any("error", err),
		)
		return e.AutocompleteResult([]discord.AutocompleteChoice{})
	}

	choices := make([]discord.AutocompleteChoice, 0, len(owned))
	for _, c := range owned {
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  truncate(c.Title, 100),
			Value: c.ID.String(),
		})
	}
	return e.AutocompleteResult(choices)
}

func (h *ConfigHandler) HandleAction(e *handler.ComponentEvent) error {
	a, err := menu.ParseAction(e.Vars["kind"], e.Vars["channel"], e.Vars["mode"])
	if err != nil {
		return h.respondError(e, err)
	}
	fn, ok := menuActions[a.Kind]
	if !ok {
		return h.respondError(e, menu.ErrInvalidAction)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.InteractionTimeout)
	defer cancel()

	if a.Kind.Informational() {
		h.b.Metrics.ObserveMenuAction(a.Kind.String())
		return fn(h, ctx, e, menu.Session{}, a)
	}

	userID := e.User().ID
	if a.ChannelID != 0 {
		if _, err := h.ownedChannel(ctx, userID, a.ChannelID); err != nil {
			return h.respondError(e, err)
		}
	}

	s, err := h.b.Menu.Apply(ctx, userID, a)
	if err != nil {
		return h.respondError(e, err)
	}
	h.b.Metrics.ObserveMenuAction(a.Kind.String())
	return fn(h, ctx, e, s, a)
}

func (h *ConfigHandler) renderChannel(ctx context.Context, e *handler.ComponentEvent, channelID snowflake.ID, notice string, showLists bool) error {
	channel, err := h.b.Channels.Channel(ctx, channelID)
	if err != nil {
		return h.respondError(e, err)
	}
	cfg, err := h.b.Channels.Config(ctx, channelID)
	if err != nil {
		return h.respondError(e, err)
	}
	components := channelComponents(channel.ID, cfg.CaptchaOn)
	return e.UpdateMessage(discord.MessageUpdate{
		Content:    &notice,
		Embeds:     &[]discord.Embed{channelEmbed(channel, cfg, showLists)},
		Components: &components,
	})
}

func (h *ConfigHandler) open(ctx context.Context, e *handler.ComponentEvent, _ menu.Session, a menu.Action) error {
	return h.renderChannel(ctx, e, a.ChannelID, "", false)
}

func (h *ConfigHandler) showLists(ctx context.Context, e *handler.ComponentEvent, _ menu.Session, a menu.Action) error {
	return h.renderChannel(ctx, e, a.ChannelID, "", true)
}

func (h *ConfigHandler) protectOn(ctx context.Context, e *handler.ComponentEvent, _ menu.Session, a menu.Action) error {
	if err := h.b.Channels.SetProtection(ctx, e.User().ID, a.ChannelID, true); err != nil {
		return h.respondError(e, err)
	}
	return h.renderChannel(ctx, e, a.ChannelID, "✅ Protection enabled.", false)
}

func (h *ConfigHandler) protectOff(ctx context.Context, e *handler.ComponentEvent, _ menu.Session, a menu.Action) error {
	if err := h.b.Channels.SetProtection(ctx, e.User().ID, a.ChannelID, false); err != nil {
		return h.respondError(e, err)
	}
	return h.renderChannel(ctx, e, a.ChannelID, "Protection disabled.", false)
}

func (h *ConfigHandler) editList(_ context.Context, e *handler.ComponentEvent, _ menu.Session, a menu.Action) error {
	kind := channels.ListAddresses
	if a.Kind == menu.ActionEditIdentities {
		kind = channels.ListIdentities
	}
	return e.Modal(listModal(kind, a))
}

func (h *ConfigHandler) clearAddresses(ctx context.Context, e *handler.ComponentEvent, _ menu.Session, a menu.Action) error {
	if err := h.b.Channels.ClearAddressList(ctx, e.User().ID, a.ChannelID); err != nil {
		return h.respondError(e, err)
	}
	return h.renderChannel(ctx, e, a.ChannelID, "✅ Banned addresses cleared.", false)
}

func (h *ConfigHandler) clearIdentities(ctx context.Context, e *handler.ComponentEvent, _ menu.Session, a menu.Action) error {
	if err := h.b.Channels.ClearIdentityList(ctx, e.User().ID, a.ChannelID); err != nil {
		return h.respondError(e, err)
	}
	return h.renderChannel(ctx, e, a.ChannelID, "✅ Banned users cleared.", false)
}

func (h *ConfigHandler) back(ctx context.Context, e *handler.ComponentEvent, s menu.Session, _ menu.Action) error {
	if s.Screen != menu.ScreenChannels {
		return h.renderChannel(ctx, e, s.ChannelID, "", false)
	}

	owned, err := h.b.Channels.OwnedChannels(ctx, e.User().ID)
	if err != nil {
		return h.respondError(e, err)
	}
	components := channelsComponents(owned)
	if components == nil {
		components = []discord.ContainerComponent{}
	}
	return e.UpdateMessage(discord.MessageUpdate{
		Content:    utils.Ptr(""),
		Embeds:     &[]discord.Embed{channelsEmbed(owned)},
		Components: &components,
	})
}

func listModal(kind channels.ListKind, a menu.Action) discord.ModalCreate {
	title := "Replace banned "
	if a.Mode == channels.ModeAppend {
		title = "Add banned "
	}
	placeholder := "One IPv4 address per line"
	if kind == channels.ListIdentities {
		title += "users"
		placeholder = "One user ID per line"
	} else {
		title += "addresses"
	}

	return discord.NewModalCreateBuilder().
		SetCustomID(inputCustomID(kind, a.ChannelID)).
		SetTitle(title).
		AddActionRow(discord.NewParagraphTextInput(listInputID, "Entries").
			WithPlaceholder(placeholder).
			WithRequired(true)).
		Build()
}

// HandleInput applies the list typed into the edit modal.
func (h *ConfigHandler) HandleInput(e *handler.ModalEvent) error {
	screen, kind, ok := inputTarget(e.Vars["kind"])
	channelID, err := snowflake.Parse(e.Vars["channel"])
	if !ok || err != nil {
		return h.respondError(e, menu.ErrInvalidAction)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.InteractionTimeout)
	defer cancel()

	userID := e.User().ID
	s, err := h.b.Menu.Expect(ctx, userID, screen, channelID)
	if err != nil {
		return h.respondError(e, err)
	}

	lines := channels.SplitLines(e.Data.Text(listInputID))
	var result channels.ListResult
	if kind == channels.ListAddresses {
		result, err = h.b.Channels.SetAddressList(ctx, userID, channelID, lines, s.Mode)
	} else {
		result, err = h.b.Channels.SetIdentityList(ctx, userID, channelID, lines, s.Mode)
	}

	var verr *channels.ValidationError
	if errors.As(err, &verr) {
		return utils.EH.CreateUserError(e, "No valid entries, nothing was saved."+invalidLines(verr.Invalid))
	}
	if err != nil {
		return h.respondError(e, err)
	}

	h.b.Metrics.ObserveMenuAction("input-" + kind.String())
	return utils.EH.HandleSuccess(e, inputSummary(kind, s.Mode, result))
}
