package mongo

import (
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/require"
)

func TestAccessRequestDoc_ToDomain(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	valid := AccessRequestDoc{
		ID:          strings.Repeat("ab", 32),
		ChannelID:   100,
		OwnerID:     200,
		RequesterID: 300,
		CreatedAt:   created,
		ExpiresAt:   created.Add(time.Hour),
	}

	tests := []struct {
		name    string
		mutate  func(*AccessRequestDoc)
		wantErr bool
	}{
		{name: "valid", mutate: func(*AccessRequestDoc) {}},
		{name: "used with link", mutate: func(d *AccessRequestDoc) {
			d.Used = true
			d.InviteLink = "https://discord.gg/abc"
		}},
		{name: "malformed id", mutate: func(d *AccessRequestDoc) { d.ID = "nope" }, wantErr: true},
		{name: "expires before creation", mutate: func(d *AccessRequestDoc) { d.ExpiresAt = created }, wantErr: true},
		{name: "used without link", mutate: func(d *AccessRequestDoc) { d.Used = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid
			tt.mutate(&doc)
			req, err := doc.ToDomain()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, snowflake.ID(300), req.RequesterID)
			require.Equal(t, doc.Used, req.Used)
		})
	}
}

func TestChannelConfigDoc_ToDomain(t *testing.T) {
	doc := ChannelConfigDoc{
		ChannelID:        1,
		OwnerID:          2,
		CaptchaOn:        true,
		BannedAddresses:  []string{"10.0.0.1"},
		BannedIdentities: []string{"123456789012345678"},
	}
	cfg, err := doc.ToDomain(maxStoredIdentityDigits)
	require.NoError(t, err)
	require.True(t, cfg.CaptchaOn)
	require.True(t, cfg.BansAddress("10.0.0.1"))
	require.True(t, cfg.BansIdentity(123456789012345678))

	doc.BannedAddresses = []string{"010.0.0.1"}
	_, err = doc.ToDomain(maxStoredIdentityDigits)
	require.Error(t, err)

	doc.BannedAddresses = nil
	doc.BannedIdentities = []string{"007"}
	_, err = doc.ToDomain(maxStoredIdentityDigits)
	require.Error(t, err)
}
