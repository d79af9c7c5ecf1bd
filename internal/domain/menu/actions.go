package menu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
)

// ActionKind tags every button the configuration menu can produce.
type ActionKind int

const (
	ActionOpen ActionKind = iota
	ActionProtectOn
	ActionProtectOff
	ActionEditAddresses
	ActionEditIdentities
	ActionClearAddresses
	ActionClearIdentities
	ActionShowLists
	ActionBack
	ActionHome
	ActionHelp
	ActionPrivacy

	actionKindCount
)

var actionNames = [actionKindCount]string{
	ActionOpen:            "open",
	ActionProtectOn:       "protect-on",
	ActionProtectOff:      "protect-off",
	ActionEditAddresses:   "edit-addresses",
	ActionEditIdentities:  "edit-identities",
	ActionClearAddresses:  "clear-addresses",
	ActionClearIdentities: "clear-identities",
	ActionShowLists:       "show",
	ActionBack:            "back",
	ActionHome:            "home",
	ActionHelp:            "help",
	ActionPrivacy:         "privacy",
}

func (k ActionKind) String() string {
	if k < 0 || k >= actionKindCount {
		return "unknown"
	}
	return actionNames[k]
}

// Informational reports whether the action only renders a static screen and
// leaves the admin's session untouched.
func (k ActionKind) Informational() bool {
	return k == ActionHome || k == ActionHelp || k == ActionPrivacy
}

// Kinds lists every action kind.
func Kinds() []ActionKind {
	kinds := make([]ActionKind, 0, actionKindCount)
	for k := ActionKind(0); k < actionKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func parseKind(s string) (ActionKind, bool) {
	for k, name := range actionNames {
		if name == s {
			return ActionKind(k), true
		}
	}
	return 0, false
}

// Action is one menu interaction. Mode only matters for the edit actions.
type Action struct {
	Kind      ActionKind
	ChannelID snowflake.ID
	Mode      channels.ListMode
}

const customIDPrefix = "/menu/"

// CustomID encodes the action as a component custom id of the form
// /menu/{action}/{channel}/{mode}.
func (a Action) CustomID() string {
	return fmt.Sprintf("%s%s/%d/%d", customIDPrefix, a.Kind, a.ChannelID, a.Mode)
}

// ParseAction decodes the three path segments of a menu custom id.
func ParseAction(kind, channel, mode string) (Action, error) {
	k, ok := parseKind(kind)
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, kind)
	}
	channelID, err := snowflake.Parse(channel)
	if err != nil {
		return Action{}, fmt.Errorf("%w: bad channel %q", ErrInvalidAction, channel)
	}
	m, err := strconv.Atoi(mode)
	if err != nil || (channels.ListMode(m) != channels.ModeOverwrite && channels.ListMode(m) != channels.ModeAppend) {
		return Action{}, fmt.Errorf("%w: bad mode %q", ErrInvalidAction, mode)
	}
	return Action{Kind: k, ChannelID: channelID, Mode: channels.ListMode(m)}, nil
}

func ParseCustomID(customID string) (Action, error) {
	rest, ok := strings.CutPrefix(customID, customIDPrefix)
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, customID)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, customID)
	}
	return ParseAction(parts[0], parts[1], parts[2])
}
