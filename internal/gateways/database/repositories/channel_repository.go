package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/logger"
	"github.com/gatekeep/shield/internal/gateways/database/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
)

// Snowflakes never exceed 20 digits, whatever bound the writer enforced.
const maxStoredIdentityDigits = 20

type channelRepository struct {
	db   *bun.DB
	pool *pgxpool.Pool
}

func NewChannelRepository(db *bun.DB, pool *pgxpool.Pool) channels.Repository {
	return &channelRepository{db: db, pool: pool}
}

func (r *channelRepository) UpsertChannel(ctx context.Context, channel channels.Channel) error {
	model := &models.Channel{
		ChannelID:       int64(channel.ID),
		OwnerID:         int64(channel.OwnerID),
		Title:           channel.Title,
		InviteChannelID: int64(channel.InviteChannelID),
		RegisteredAt:    channel.RegisteredAt,
	}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (channel_id) DO UPDATE").
		Set("owner_id = EXCLUDED.owner_id").
		Set("title = EXCLUDED.title").
		Set("invite_channel_id = EXCLUDED.invite_channel_id").
		Exec(ctx)
	return err
}

func (r *channelRepository) DeleteChannel(ctx context.Context, channelID snowflake.ID) error {
	res, err := r.db.NewDelete().
		Model((*models.Channel)(nil)).
		Where("channel_id = ?", int64(channelID)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return channels.ErrChannelNotFound
	}
	return nil
}

func (r *channelRepository) GetChannel(ctx context.Context, channelID snowflake.ID) (channels.Channel, error) {
	model := new(models.Channel)
	err := r.db.NewSelect().Model(model).Where("channel_id = ?", int64(channelID)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return channels.Channel{}, channels.ErrChannelNotFound
	}
	if err != nil {
		return channels.Channel{}, err
	}
	return channelFromModel(model), nil
}

func (r *channelRepository) ListChannelsByOwner(ctx context.Context, ownerID snowflake.ID) ([]channels.Channel, error) {
	var rows []*models.Channel
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", int64(ownerID)).
		Order("title ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]channels.Channel, 0, len(rows))
	for _, row := range rows {
		owned = append(owned, channelFromModel(row))
	}
	return owned, nil
}

func (r *channelRepository) GetConfig(ctx context.Context, channelID snowflake.ID) (channels.Config, error) {
	model := new(models.ChannelConfig)
	err := r.db.NewSelect().Model(model).Where("channel_id = ?", int64(channelID)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return channels.Config{}, channels.ErrConfigNotFound
	}
	if err != nil {
		return channels.Config{}, err
	}
	return configFromModel(model)
}

func (r *channelRepository) SetProtection(ctx context.Context, channelID, ownerID snowflake.ID, enabled bool, at time.Time) error {
	model := &models.ChannelConfig{
		ChannelID:        int64(channelID),
		OwnerID:          int64(ownerID),
		CaptchaOn:        enabled,
		BannedAddresses:  []string{},
		BannedIdentities: []string{},
		UpdatedAt:        at,
	}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (channel_id) DO UPDATE").
		Set("captcha_on = EXCLUDED.captcha_on").
		Set("owner_id = EXCLUDED.owner_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func listColumn(kind channels.ListKind) (string, error) {
	switch kind {
	case channels.ListAddresses:
		return "banned_addresses", nil
	case channels.ListIdentities:
		return "banned_identities", nil
	default:
		return "", fmt.Errorf("unknown list kind %d", kind)
	}
}

func (r *channelRepository) ReplaceList(ctx context.Context, channelID, ownerID snowflake.ID, kind channels.ListKind, values []string, at time.Time) error {
	column, err := listColumn(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO channel_configs (channel_id, owner_id, captcha_on, %[1]s, updated_at)
VALUES ($1, $2, false, $3, $4)
ON CONFLICT (channel_id) DO UPDATE
SET %[1]s = EXCLUDED.%[1]s, owner_id = EXCLUDED.owner_id, updated_at = EXCLUDED.updated_at`, column)
	return r.exec(ctx, "replace_"+column, query, int64(channelID), int64(ownerID), nonNil(values), at)
}

func (r *channelRepository) AppendList(ctx context.Context, channelID, ownerID snowflake.ID, kind channels.ListKind, values []string, at time.Time) error {
	column, err := listColumn(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO channel_configs (channel_id, owner_id, captcha_on, %[1]s, updated_at)
VALUES ($1, $2, false, $3, $4)
ON CONFLICT (channel_id) DO UPDATE
SET %[1]s = array_cat(COALESCE(channel_configs.%[1]s, '{}'), EXCLUDED.%[1]s),
    owner_id = EXCLUDED.owner_id, updated_at = EXCLUDED.updated_at`, column)
	return r.exec(ctx, "append_"+column, query, int64(channelID), int64(ownerID), nonNil(values), at)
}

func (r *channelRepository) exec(ctx context.Context, operation, query string, args ...any) error {
	ql := logger.NewQueryLogger(operation, query, args...)
	tag, err := r.pool.Exec(ctx, query, args...)
	ql.Log(err, tag.RowsAffected())
	return err
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func channelFromModel(m *models.Channel) channels.Channel {
	return channels.Channel{
		ID:              snowflake.ID(m.ChannelID),
		OwnerID:         snowflake.ID(m.OwnerID),
		Title:           m.Title,
		InviteChannelID: snowflake.ID(m.InviteChannelID),
		RegisteredAt:    m.RegisteredAt,
	}
}

// configFromModel re-validates stored list entries so a hand-edited row
// cannot smuggle non-canonical values into membership checks.
func configFromModel(m *models.ChannelConfig) (channels.Config, error) {
	for _, addr := range m.BannedAddresses {
		if canonical, ok := channels.CanonicalAddress(addr); !ok || canonical != addr {
			return channels.Config{}, fmt.Errorf("channel %d has malformed banned address %q", m.ChannelID, addr)
		}
	}
	for _, id := range m.BannedIdentities {
		if canonical, ok := channels.CanonicalIdentity(id, maxStoredIdentityDigits); !ok || canonical != id {
			return channels.Config{}, fmt.Errorf("channel %d has malformed banned identity %q", m.ChannelID, id)
		}
	}
	return channels.Config{
		ChannelID:        snowflake.ID(m.ChannelID),
		OwnerID:          snowflake.ID(m.OwnerID),
		CaptchaOn:        m.CaptchaOn,
		BannedAddresses:  m.BannedAddresses,
		BannedIdentities: m.BannedIdentities,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}
