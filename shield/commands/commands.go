package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/gatekeep/shield/shield"
	"github.com/gatekeep/shield/shield/handlers"
)

var Commands = []discord.ApplicationCommandCreate{
	Version,
	Help,
	Join,
	Gate,
	Config,
}

// Register mounts every command, component and modal route on r.
func Register(r handler.Router, b *shield.Bot) {
	r.Command("/version", handlers.WrapWithLogging("version", VersionHandler(b)))

	r.Command("/help", handlers.WrapWithLogging("help", HelpHandler(b)))

	r.Command("/join", handlers.WrapWithLogging("join", JoinHandler(b)))
	r.Command("/gate", handlers.WrapWithLogging("gate", GateHandler(b)))
	r.Component("/gate/join/{guild}", handlers.WrapComponentWithLogging("gate-join", GateJoinHandler(b)))

	cfg := NewConfigHandler(b)
	r.Command("/config", handlers.WrapWithLogging("config", cfg.HandleCommand))
	r.Autocomplete("/config", cfg.HandleAutocomplete)
	r.Component("/menu/{kind}/{channel}/{mode}", handlers.WrapComponentWithLogging("menu", cfg.HandleAction))
	r.Modal("/menu-input/{kind}/{channel}", handlers.WrapModalWithLogging("menu-input", cfg.HandleInput))
}
