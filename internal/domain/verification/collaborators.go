package verification

//go:generate mockgen -source=collaborators.go -destination=mock/collaborators.go -package=mock

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/challenge"
	"github.com/gatekeep/shield/internal/domain/channels"
)

type Ledger interface {
	Create(ctx context.Context, channelID, ownerID, requesterID snowflake.ID) (access.AccessRequest, error)
	Lookup(ctx context.Context, id string) (access.AccessRequest, error)
	Finalize(ctx context.Context, id, link string) error
	Reserve(ctx context.Context, id, holder string, lease time.Duration) error
	Release(ctx context.Context, id, holder string) error
	IsLive(r access.AccessRequest) bool
	Now() time.Time
}

type ChannelReader interface {
	Config(ctx context.Context, channelID snowflake.ID) (channels.Config, error)
	Channel(ctx context.Context, channelID snowflake.ID) (channels.Channel, error)
}

type Issuer interface {
	Issue() (challenge.Challenge, error)
}

type NotificationKind int

const (
	NotifyNewRequest NotificationKind = iota
	NotifyVerified
)

type Notification struct {
	Kind            NotificationKind
	ChannelID       snowflake.ID
	ChannelTitle    string
	RequesterID     snowflake.ID
	RequestID       string
	Address         string
	ReportedAddress string
	InviteLink      string
	At              time.Time
}

// Messenger is the chat platform side: it mints invites and talks to owners.
type Messenger interface {
	CreateInvite(ctx context.Context, channel channels.Channel, maxAge time.Duration) (string, error)
	NotifyOwner(ctx context.Context, ownerID snowflake.ID, n Notification) error
}

type AuditRecord struct {
	RequestID       string       `json:"request_id"`
	ChannelID       snowflake.ID `json:"channel_id"`
	OwnerID         snowflake.ID `json:"owner_id"`
	RequesterID     snowflake.ID `json:"requester_id"`
	Address         string       `json:"address"`
	ReportedAddress string       `json:"reported_address,omitempty"`
	InviteLink      string       `json:"invite_link"`
	CreatedAt       time.Time    `json:"created_at"`
	VerifiedAt      time.Time    `json:"verified_at"`
}

// Archiver keeps a copy of every successful verification.
type Archiver interface {
	Archive(ctx context.Context, rec AuditRecord) error
}

type Recorder interface {
	ObserveOutcome(outcome string)
	ObserveMint(d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOutcome(string)            {}
func (nopRecorder) ObserveMint(time.Duration, error) {}
