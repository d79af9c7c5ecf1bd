package channels

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

type Repository interface {
	UpsertChannel(ctx context.Context, channel Channel) error
	DeleteChannel(ctx context.Context, channelID snowflake.ID) error
	GetChannel(ctx context.Context, channelID snowflake.ID) (Channel, error)
	ListChannelsByOwner(ctx context.Context, ownerID snowflake.ID) ([]Channel, error)

	// GetConfig returns ErrConfigNotFound when no owner action has touched
	// the channel yet.
	GetConfig(ctx context.Context, channelID snowflake.ID) (Config, error)
	SetProtection(ctx context.Context, channelID, ownerID snowflake.ID, enabled bool, at time.Time) error
	// ReplaceList overwrites one deny list, creating the config if needed.
	ReplaceList(ctx context.Context, channelID, ownerID snowflake.ID, kind ListKind, values []string, at time.Time) error
	// AppendList adds values after the existing entries in one atomic update.
	AppendList(ctx context.Context, channelID, ownerID snowflake.ID, kind ListKind, values []string, at time.Time) error
}
