package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AdminSession struct {
	bun.BaseModel `bun:"table:admin_sessions,alias:ads"`

	AdminID   int64     `bun:"admin_id,pk"`
	Screen    int       `bun:"screen,notnull"`
	ChannelID int64     `bun:"channel_id,nullzero"`
	ListMode  int       `bun:"list_mode,notnull,default:0"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
}
