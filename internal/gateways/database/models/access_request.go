package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AccessRequest struct {
	bun.BaseModel `bun:"table:access_requests,alias:ar"`

	ID            string    `bun:"id,pk"`
	ChannelID     int64     `bun:"channel_id,notnull"`
	OwnerID       int64     `bun:"owner_id,notnull"`
	RequesterID   int64     `bun:"requester_id,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	Used          bool      `bun:"used,notnull,default:false"`
	InviteLink    string    `bun:"invite_link,nullzero"`
	ReservedBy    string    `bun:"reserved_by,nullzero"`
	ReservedUntil time.Time `bun:"reserved_until,nullzero"`
}
