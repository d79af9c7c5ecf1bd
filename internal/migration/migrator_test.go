package migration

import (
	"strings"
	"testing"
	"time"

	shieldmongo "github.com/gatekeep/shield/internal/gateways/mongo"
	"github.com/stretchr/testify/require"
)

func TestInsertQuery(t *testing.T) {
	got := insertQuery("channels", []string{"channel_id", "owner_id", "title"})
	require.Equal(t, "INSERT INTO channels (channel_id, owner_id, title) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING", got)
}

func TestChannelRow(t *testing.T) {
	registered := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	row := channelRow(shieldmongo.ChannelDoc{ID: 10, OwnerID: 20, Title: "Lounge", RegisteredAt: registered})
	require.Equal(t, []any{int64(10), int64(20), "Lounge", nil, registered}, row)

	row = channelRow(shieldmongo.ChannelDoc{ID: 10, OwnerID: 20, InviteChannelID: 30})
	require.Equal(t, int64(30), row[3])
}

func TestConfigRow(t *testing.T) {
	doc := shieldmongo.ChannelConfigDoc{ChannelID: 1, OwnerID: 2, CaptchaOn: true}
	row, err := configRow(doc, 20)
	require.NoError(t, err)
	require.Equal(t, []string{}, row[3])
	require.Equal(t, []string{}, row[4])

	doc.BannedAddresses = []string{"10.0.0.1"}
	row, err = configRow(doc, 20)
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1"}, row[3])

	doc.BannedAddresses = []string{"not an address"}
	_, err = configRow(doc, 20)
	require.Error(t, err)
}

func TestAccessRow(t *testing.T) {
	created := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	doc := shieldmongo.AccessRequestDoc{
		ID:            strings.Repeat("cd", 32),
		ChannelID:     1,
		OwnerID:       2,
		RequesterID:   3,
		CreatedAt:     created,
		ExpiresAt:     created.Add(time.Hour),
		ReservedBy:    "attempt",
		ReservedUntil: created.Add(time.Minute),
	}

	tests := []struct {
		name     string
		mutate   func(*shieldmongo.AccessRequestDoc)
		wantLink any
		wantErr  bool
	}{
		{name: "pending", mutate: func(*shieldmongo.AccessRequestDoc) {}},
		{name: "used", mutate: func(d *shieldmongo.AccessRequestDoc) {
			d.Used = true
			d.InviteLink = "https://discord.gg/abc"
		}, wantLink: "https://discord.gg/abc"},
		{name: "malformed", mutate: func(d *shieldmongo.AccessRequestDoc) { d.ID = "x" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc
			tt.mutate(&d)
			row, err := accessRow(d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, row, 8)
			require.Equal(t, d.Used, row[6])
			require.Equal(t, tt.wantLink, row[7])
		})
	}
}
