package repositories

import (
	"strings"
	"testing"
	"time"

	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/gateways/database/models"
)

func TestAccessRequestFromModel(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := models.AccessRequest{
		ID:          strings.Repeat("c", 64),
		ChannelID:   1,
		OwnerID:     2,
		RequesterID: 3,
		CreatedAt:   created,
		ExpiresAt:   created.Add(access.DefaultTTL),
	}

	tests := []struct {
		name    string
		mutate  func(m *models.AccessRequest)
		wantErr bool
	}{
		{"valid", func(*models.AccessRequest) {}, false},
		{"used with link", func(m *models.AccessRequest) { m.Used = true; m.InviteLink = "https://discord.gg/x" }, false},
		{"malformed id", func(m *models.AccessRequest) { m.ID = "short" }, true},
		{"expiry before creation", func(m *models.AccessRequest) { m.ExpiresAt = created }, true},
		{"used without link", func(m *models.AccessRequest) { m.Used = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			got, err := accessRequestFromModel(&m)
			if (err != nil) != tt.wantErr {
				t.Fatalf("accessRequestFromModel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != accessRequestFromModelMust(t, accessRequestModel(got)) {
				t.Errorf("accessRequestFromModel() does not survive a second conversion")
			}
		})
	}
}

func accessRequestFromModelMust(t *testing.T, m *models.AccessRequest) access.AccessRequest {
	t.Helper()
	got, err := accessRequestFromModel(m)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestConfigFromModel(t *testing.T) {
	tests := []struct {
		name    string
		model   models.ChannelConfig
		wantErr bool
	}{
		{"canonical", models.ChannelConfig{BannedAddresses: []string{"1.2.3.4"}, BannedIdentities: []string{"123456789012345678"}}, false},
		{"nil lists", models.ChannelConfig{}, false},
		{"cidr smuggled in", models.ChannelConfig{BannedAddresses: []string{"10.0.0.0/8"}}, true},
		{"leading zeros", models.ChannelConfig{BannedIdentities: []string{"0042"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := configFromModel(&tt.model)
			if (err != nil) != tt.wantErr {
				t.Errorf("configFromModel() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
