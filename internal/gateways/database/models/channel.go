package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Channel is the owned-channels index, one row per guild the bot administers.
type Channel struct {
	bun.BaseModel `bun:"table:channels,alias:ch"`

	ChannelID       int64     `bun:"channel_id,pk"`
	OwnerID         int64     `bun:"owner_id,notnull"`
	Title           string    `bun:"title,notnull"`
	InviteChannelID int64     `bun:"invite_channel_id,nullzero"`
	RegisteredAt    time.Time `bun:"registered_at,notnull"`
}

type ChannelConfig struct {
	bun.BaseModel `bun:"table:channel_configs,alias:cc"`

	ChannelID        int64     `bun:"channel_id,pk"`
	OwnerID          int64     `bun:"owner_id,notnull"`
	CaptchaOn        bool      `bun:"captcha_on,notnull,default:false"`
	BannedAddresses  []string  `bun:"banned_addresses,array"`
	BannedIdentities []string  `bun:"banned_identities,array"`
	UpdatedAt        time.Time `bun:"updated_at,notnull"`
}
