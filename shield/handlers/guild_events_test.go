package handlers

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/require"
)

func TestPickInviteChannel(t *testing.T) {
	system := snowflake.ID(99)
	zero := snowflake.ID(0)

	tests := []struct {
		name       string
		system     *snowflake.ID
		candidates []inviteCandidate
		want       snowflake.ID
	}{
		{name: "system channel wins", system: &system, candidates: []inviteCandidate{{ID: 1, Text: true}}, want: 99},
		{name: "zero system channel ignored", system: &zero, candidates: []inviteCandidate{{ID: 1, Text: true}}, want: 1},
		{
			name: "top-most text channel",
			candidates: []inviteCandidate{
				{ID: 3, Position: 2, Text: true},
				{ID: 4, Position: 0, Text: false},
				{ID: 5, Position: 1, Text: true},
			},
			want: 5,
		},
		{name: "no text channel", candidates: []inviteCandidate{{ID: 4}}, want: 0},
		{name: "empty guild", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, pickInviteChannel(tt.system, tt.candidates))
		})
	}
}

func TestCanGuard(t *testing.T) {
	tests := []struct {
		name  string
		perms discord.Permissions
		want  bool
	}{
		{name: "administrator", perms: discord.PermissionAdministrator, want: true},
		{name: "create invite", perms: discord.PermissionCreateInstantInvite | discord.PermissionViewChannel, want: true},
		{name: "view only", perms: discord.PermissionViewChannel | discord.PermissionSendMessages, want: false},
		{name: "none", perms: discord.PermissionsNone, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, canGuard(tt.perms))
		})
	}
}

func TestOwnershipChange(t *testing.T) {
	tests := []struct {
		name       string
		guardable  bool
		registered bool
		want       ownershipAction
	}{
		{name: "new guild with rights", guardable: true, registered: false, want: ownershipRegister},
		{name: "refresh owner on update", guardable: true, registered: true, want: ownershipRegister},
		{name: "rights revoked", guardable: false, registered: true, want: ownershipUnregister},
		{name: "never had rights", guardable: false, registered: false, want: ownershipKeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ownershipChange(tt.guardable, tt.registered))
		})
	}
}
