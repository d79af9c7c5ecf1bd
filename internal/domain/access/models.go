package access

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// DefaultTTL is the lifetime of an access request from creation.
const DefaultTTL = time.Hour

// AccessRequest is one tracked attempt by a requester to obtain an invite to a
// protected channel.
type AccessRequest struct {
	ID          string
	ChannelID   snowflake.ID
	OwnerID     snowflake.ID
	RequesterID snowflake.ID
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Used        bool
	InviteLink  string

	// ReservedBy holds the lease taken right before an invite is minted.
	ReservedBy    string
	ReservedUntil time.Time
}

// Expired reports whether the request outlived its window at now.
func (r AccessRequest) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Live reports whether the request can still be verified at now.
func (r AccessRequest) Live(now time.Time) bool {
	return !r.Used && !r.Expired(now)
}

// Reserved reports whether another submission currently holds the mint lease.
func (r AccessRequest) Reserved(now time.Time) bool {
	return r.ReservedBy != "" && now.Before(r.ReservedUntil)
}
