package menu

//go:generate mockgen -source=session.go -destination=mock/session.go -package=mock

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
)

const DefaultSessionTTL = 15 * time.Minute

var (
	ErrSessionNotFound = errors.New("menu session not found")
	ErrStaleSession    = errors.New("menu session expired, run /config again")
	ErrInvalidAction   = errors.New("invalid menu action")
)

type Screen int

const (
	ScreenChannels Screen = iota
	ScreenChannel
	ScreenAwaitAddresses
	ScreenAwaitIdentities
)

func (s Screen) String() string {
	switch s {
	case ScreenChannels:
		return "channels"
	case ScreenChannel:
		return "channel"
	case ScreenAwaitAddresses:
		return "await-addresses"
	case ScreenAwaitIdentities:
		return "await-identities"
	default:
		return "unknown"
	}
}

// Session is the per-admin position in the configuration menu.
type Session struct {
	AdminID   snowflake.ID
	Screen    Screen
	ChannelID snowflake.ID
	Mode      channels.ListMode
	ExpiresAt time.Time
}

type Repository interface {
	Get(ctx context.Context, adminID snowflake.ID) (Session, error)
	Put(ctx context.Context, session Session) error
	Delete(ctx context.Context, adminID snowflake.ID) error
}
