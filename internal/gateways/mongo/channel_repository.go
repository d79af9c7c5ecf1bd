package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChannelDoc struct {
	ID              int64     `bson:"_id"`
	OwnerID         int64     `bson:"owner_id"`
	Title           string    `bson:"title"`
	InviteChannelID int64     `bson:"invite_channel_id"`
	RegisteredAt    time.Time `bson:"registered_at"`
}

type ChannelConfigDoc struct {
	ChannelID        int64     `bson:"_id"`
	OwnerID          int64     `bson:"owner_id"`
	CaptchaOn        bool      `bson:"captcha_on"`
	BannedAddresses  []string  `bson:"banned_addresses"`
	BannedIdentities []string  `bson:"banned_identities"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func (d ChannelDoc) ToDomain() channels.Channel {
	return channels.Channel{
		ID:              snowflake.ID(d.ID),
		OwnerID:         snowflake.ID(d.OwnerID),
		Title:           d.Title,
		InviteChannelID: snowflake.ID(d.InviteChannelID),
		RegisteredAt:    d.RegisteredAt.UTC(),
	}
}

// ToDomain rejects lists holding anything other than canonical entries so a
// hand-edited document cannot widen or silently disable a deny list.
func (d ChannelConfigDoc) ToDomain(maxDigits int) (channels.Config, error) {
	for _, addr := range d.BannedAddresses {
		if canonical, ok := channels.CanonicalAddress(addr); !ok || canonical != addr {
			return channels.Config{}, fmt.Errorf("channel %d config holds non-canonical address %q", d.ChannelID, addr)
		}
	}
	for _, id := range d.BannedIdentities {
		if canonical, ok := channels.CanonicalIdentity(id, maxDigits); !ok || canonical != id {
			return channels.Config{}, fmt.Errorf("channel %d config holds non-canonical identity %q", d.ChannelID, id)
		}
	}
	return channels.Config{
		ChannelID:        snowflake.ID(d.ChannelID),
		OwnerID:          snowflake.ID(d.OwnerID),
		CaptchaOn:        d.CaptchaOn,
		BannedAddresses:  d.BannedAddresses,
		BannedIdentities: d.BannedIdentities,
		UpdatedAt:        d.UpdatedAt.UTC(),
	}, nil
}

const maxStoredIdentityDigits = 20

type channelRepository struct {
	channels *mongo.Collection
	configs  *mongo.Collection
}

func NewChannelRepository(s *Store) channels.Repository {
	return &channelRepository{
		channels: s.db.Collection(CollChannels),
		configs:  s.db.Collection(CollChannelConfigs),
	}
}

func (r *channelRepository) UpsertChannel(ctx context.Context, ch channels.Channel) error {
	registeredAt := ch.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now().UTC()
	}
	_, err := r.channels.UpdateOne(ctx,
		bson.M{"_id": int64(ch.ID)},
		bson.M{
			"$set": bson.M{
				"owner_id":          int64(ch.OwnerID),
				"title":             ch.Title,
				"invite_channel_id": int64(ch.InviteChannelID),
			},
			"$setOnInsert": bson.M{"registered_at": registeredAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}
	return nil
}

func (r *channelRepository) DeleteChannel(ctx context.Context, channelID snowflake.ID) error {
	res, err := r.channels.DeleteOne(ctx, bson.M{"_id": int64(channelID)})
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	if res.DeletedCount == 0 {
		return channels.ErrChannelNotFound
	}
	return nil
}

func (r *channelRepository) GetChannel(ctx context.Context, channelID snowflake.ID) (channels.Channel, error) {
	var doc ChannelDoc
	err := r.channels.FindOne(ctx, bson.M{"_id": int64(channelID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return channels.Channel{}, channels.ErrChannelNotFound
	}
	if err != nil {
		return channels.Channel{}, fmt.Errorf("failed to get channel: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *channelRepository) ListChannelsByOwner(ctx context.Context, ownerID snowflake.ID) ([]channels.Channel, error) {
	cursor, err := r.channels.Find(ctx, bson.M{"owner_id": int64(ownerID)})
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	var docs []ChannelDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}
	owned := make([]channels.Channel, 0, len(docs))
	for _, doc := range docs {
		owned = append(owned, doc.ToDomain())
	}
	return owned, nil
}

func (r *channelRepository) GetConfig(ctx context.Context, channelID snowflake.ID) (channels.Config, error) {
	var doc ChannelConfigDoc
	err := r.configs.FindOne(ctx, bson.M{"_id": int64(channelID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return channels.Config{}, channels.ErrConfigNotFound
	}
	if err != nil {
		return channels.Config{}, fmt.Errorf("failed to get channel config: %w", err)
	}
	return doc.ToDomain(maxStoredIdentityDigits)
}

// updateConfig upserts one config document. Lists not touched by the update
// start empty on insert so later $push calls always extend an array.
func (r *channelRepository) updateConfig(ctx context.Context, channelID, ownerID snowflake.ID, at time.Time, set, push bson.M) error {
	fields := bson.M{"owner_id": int64(ownerID), "updated_at": at}
	for k, v := range set {
		fields[k] = v
	}

	onInsert := bson.M{}
	for _, field := range []string{"captcha_on", "banned_addresses", "banned_identities"} {
		_, inSet := fields[field]
		_, inPush := push[field]
		if inSet || inPush {
			continue
		}
		if field == "captcha_on" {
			onInsert[field] = false
		} else {
			onInsert[field] = bson.A{}
		}
	}

	update := bson.M{"$set": fields}
	if len(onInsert) > 0 {
		update["$setOnInsert"] = onInsert
	}
	if len(push) > 0 {
		update["$push"] = push
	}

	_, err := r.configs.UpdateOne(ctx, bson.M{"_id": int64(channelID)}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to update channel config: %w", err)
	}
	return nil
}

func (r *channelRepository) SetProtection(ctx context.Context, channelID, ownerID snowflake.ID, enabled bool, at time.Time) error {
	return r.updateConfig(ctx, channelID, ownerID, at, bson.M{"captcha_on": enabled}, nil)
}

func (r *channelRepository) ReplaceList(ctx context.Context, channelID, ownerID snowflake.ID, kind channels.ListKind, values []string, at time.Time) error {
	if values == nil {
		values = []string{}
	}
	return r.updateConfig(ctx, channelID, ownerID, at, bson.M{listField(kind): values}, nil)
}

func (r *channelRepository) AppendList(ctx context.Context, channelID, ownerID snowflake.ID, kind channels.ListKind, values []string, at time.Time) error {
	if len(values) == 0 {
		return r.updateConfig(ctx, channelID, ownerID, at, nil, nil)
	}
	push := bson.M{listField(kind): bson.M{"$each": values}}
	return r.updateConfig(ctx, channelID, ownerID, at, nil, push)
}

func listField(kind channels.ListKind) string {
	if kind == channels.ListIdentities {
		return "banned_identities"
	}
	return "banned_addresses"
}
