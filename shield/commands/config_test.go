package commands

import (
	"strings"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/menu"
	"github.com/gatekeep/shield/shield/config"
	"github.com/stretchr/testify/require"
)

func TestMenuActions_CoverEveryKind(t *testing.T) {
	for _, kind := range menu.Kinds() {
		_, ok := menuActions[kind]
		require.Truef(t, ok, "no handler for menu action %s", kind)
	}
}

func TestChannelComponents_RoundTrip(t *testing.T) {
	const id snowflake.ID = 4242

	for _, on := range []bool{false, true} {
		rows := channelComponents(id, on)
		require.Len(t, rows, 3)

		for _, row := range rows {
			ar, ok := row.(discord.ActionRowComponent)
			require.True(t, ok)
			for _, c := range ar.Components() {
				button, ok := c.(discord.ButtonComponent)
				require.True(t, ok)

				a, err := menu.ParseCustomID(button.CustomID)
				require.NoError(t, err)
				require.Equal(t, id, a.ChannelID)
				require.Contains(t, menuActions, a.Kind)
				if a.Kind == menu.ActionProtectOn {
					require.False(t, on)
				}
				if a.Kind == menu.ActionProtectOff {
					require.True(t, on)
				}
			}
		}
	}
}

func TestChannelsComponents(t *testing.T) {
	owned := func(n int) []channels.Channel {
		out := make([]channels.Channel, n)
		for i := range out {
			out[i] = channels.Channel{ID: snowflake.ID(i + 1), Title: "Guild"}
		}
		return out
	}

	tests := []struct {
		name    string
		owned   []channels.Channel
		wantNil bool
	}{
		{name: "none", owned: nil, wantNil: true},
		{name: "one", owned: owned(1)},
		{name: "at limit", owned: owned(config.MaxMenuButtons)},
		{name: "too many", owned: owned(config.MaxMenuButtons + 1), wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := channelsComponents(tt.owned)
			if tt.wantNil {
				require.Nil(t, rows)
				return
			}
			require.Len(t, rows, 1)
			ar := rows[0].(discord.ActionRowComponent)
			require.Len(t, ar.Components(), len(tt.owned))
		})
	}
}

func TestListPreview(t *testing.T) {
	require.Equal(t, "*empty*", listPreview(nil, 3))
	require.Equal(t, "```\n1.1.1.1\n2.2.2.2\n```", listPreview([]string{"1.1.1.1", "2.2.2.2"}, 3))

	preview := listPreview([]string{"a", "b", "c", "d", "e"}, 2)
	require.True(t, strings.HasPrefix(preview, "```\na\nb\n```"))
	require.True(t, strings.HasSuffix(preview, "and 3 more"))
}

func TestInputTarget(t *testing.T) {
	screen, kind, ok := inputTarget("addresses")
	require.True(t, ok)
	require.Equal(t, menu.ScreenAwaitAddresses, screen)
	require.Equal(t, channels.ListAddresses, kind)

	screen, kind, ok = inputTarget("identities")
	require.True(t, ok)
	require.Equal(t, menu.ScreenAwaitIdentities, screen)
	require.Equal(t, channels.ListIdentities, kind)

	_, _, ok = inputTarget("bogus")
	require.False(t, ok)

	require.Equal(t, "/menu-input/identities/77", inputCustomID(channels.ListIdentities, 77))
}

func TestInputSummary(t *testing.T) {
	got := inputSummary(channels.ListAddresses, channels.ModeAppend, channels.ListResult{
		Accepted: []string{"10.0.0.1"},
		Invalid: []channels.InvalidEntry{
			{Line: 2, Value: "nope", Reason: "not an IPv4 address"},
		},
	})
	require.Contains(t, got, "Added banned addresses: 1 valid entries.")
	require.Contains(t, got, "Ignored 1 invalid lines")
	require.Contains(t, got, "line 2 `nope`: not an IPv4 address")

	got = inputSummary(channels.ListIdentities, channels.ModeOverwrite, channels.ListResult{Accepted: []string{"1", "2"}})
	require.Equal(t, "Replaced banned users: 2 valid entries.", got)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
