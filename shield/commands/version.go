package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/utils"
)

var Version = discord.SlashCommandCreate{
	Name:        "version",
	Description: "Show the running version of Shield",
}

func VersionHandler(b *shield.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}
		_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: utils.Ptr(fmt.Sprintf("Version: %s\nCommit: %s", b.Version, b.Commit)),
		})
		return err
	}
}
