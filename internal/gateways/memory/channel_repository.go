package memory

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
)

type ChannelRepository struct {
	mu       sync.RWMutex
	channels map[snowflake.ID]channels.Channel
	configs  map[snowflake.ID]channels.Config
}

func NewChannelRepository() *ChannelRepository {
	return &ChannelRepository{
		channels: make(map[snowflake.ID]channels.Channel),
		configs:  make(map[snowflake.ID]channels.Config),
	}
}

func (r *ChannelRepository) UpsertChannel(_ context.Context, channel channels.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.channels[channel.ID]; ok && channel.RegisteredAt.IsZero() {
		channel.RegisteredAt = existing.RegisteredAt
	}
	r.channels[channel.ID] = channel
	return nil
}

func (r *ChannelRepository) DeleteChannel(_ context.Context, channelID snowflake.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[channelID]; !ok {
		return channels.ErrChannelNotFound
	}
	delete(r.channels, channelID)
	return nil
}

func (r *ChannelRepository) GetChannel(_ context.Context, channelID snowflake.ID) (channels.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channel, ok := r.channels[channelID]
	if !ok {
		return channels.Channel{}, channels.ErrChannelNotFound
	}
	return channel, nil
}

func (r *ChannelRepository) ListChannelsByOwner(_ context.Context, ownerID snowflake.ID) ([]channels.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var owned []channels.Channel
	for _, channel := range r.channels {
		if channel.OwnerID == ownerID {
			owned = append(owned, channel)
		}
	}
	return owned, nil
}

func (r *ChannelRepository) GetConfig(_ context.Context, channelID snowflake.ID) (channels.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[channelID]
	if !ok {
		return channels.Config{}, channels.ErrConfigNotFound
	}
	cfg.BannedAddresses = append([]string(nil), cfg.BannedAddresses...)
	cfg.BannedIdentities = append([]string(nil), cfg.BannedIdentities...)
	return cfg, nil
}

// mutate applies fn to the stored config, creating it first when needed.
func (r *ChannelRepository) mutate(channelID, ownerID snowflake.ID, at time.Time, fn func(*channels.Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[channelID]
	if !ok {
		cfg = channels.Config{ChannelID: channelID}
	}
	cfg.OwnerID = ownerID
	cfg.UpdatedAt = at
	fn(&cfg)
	r.configs[channelID] = cfg
}

func (r *ChannelRepository) SetProtection(_ context.Context, channelID, ownerID snowflake.ID, enabled bool, at time.Time) error {
	r.mutate(channelID, ownerID, at, func(cfg *channels.Config) {
		cfg.CaptchaOn = enabled
	})
	return nil
}

func (r *ChannelRepository) ReplaceList(_ context.Context, channelID, ownerID snowflake.ID, kind channels.ListKind, values []string, at time.Time) error {
	values = append([]string{}, values...)
	r.mutate(channelID, ownerID, at, func(cfg *channels.Config) {
		if kind == channels.ListIdentities {
			cfg.BannedIdentities = values
		} else {
			cfg.BannedAddresses = values
		}
	})
	return nil
}

func (r *ChannelRepository) AppendList(_ context.Context, channelID, ownerID snowflake.ID, kind channels.ListKind, values []string, at time.Time) error {
	r.mutate(channelID, ownerID, at, func(cfg *channels.Config) {
		if kind == channels.ListIdentities {
			cfg.BannedIdentities = append(cfg.BannedIdentities, values...)
		} else {
			cfg.BannedAddresses = append(cfg.BannedAddresses, values...)
		}
	})
	return nil
}
