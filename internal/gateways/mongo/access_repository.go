package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/access"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AccessRequestDoc is the stored shape of an access request.
type AccessRequestDoc struct {
	ID            string    `bson:"_id"`
	ChannelID     int64     `bson:"channel_id"`
	OwnerID       int64     `bson:"owner_id"`
	RequesterID   int64     `bson:"requester_id"`
	CreatedAt     time.Time `bson:"created_at"`
	ExpiresAt     time.Time `bson:"expires_at"`
	Used          bool      `bson:"used"`
	InviteLink    string    `bson:"invite_link,omitempty"`
	ReservedBy    string    `bson:"reserved_by,omitempty"`
	ReservedUntil time.Time `bson:"reserved_until,omitempty"`
}

func (d AccessRequestDoc) ToDomain() (access.AccessRequest, error) {
	switch {
	case !access.ValidID(d.ID):
		return access.AccessRequest{}, fmt.Errorf("access request document has malformed id %q", d.ID)
	case !d.ExpiresAt.After(d.CreatedAt):
		return access.AccessRequest{}, fmt.Errorf("access request %s expires before it was created", d.ID)
	case d.Used && d.InviteLink == "":
		return access.AccessRequest{}, fmt.Errorf("access request %s is used without an invite link", d.ID)
	}
	return access.AccessRequest{
		ID:            d.ID,
		ChannelID:     snowflake.ID(d.ChannelID),
		OwnerID:       snowflake.ID(d.OwnerID),
		RequesterID:   snowflake.ID(d.RequesterID),
		CreatedAt:     d.CreatedAt.UTC(),
		ExpiresAt:     d.ExpiresAt.UTC(),
		Used:          d.Used,
		InviteLink:    d.InviteLink,
		ReservedBy:    d.ReservedBy,
		ReservedUntil: d.ReservedUntil.UTC(),
	}, nil
}

type accessRepository struct {
	coll *mongo.Collection
}

func NewAccessRepository(s *Store) access.Repository {
	return &accessRepository{coll: s.db.Collection(CollAccessRequests)}
}

func (r *accessRepository) Insert(ctx context.Context, req access.AccessRequest) error {
	doc := AccessRequestDoc{
		ID:          req.ID,
		ChannelID:   int64(req.ChannelID),
		OwnerID:     int64(req.OwnerID),
		RequesterID: int64(req.RequesterID),
		CreatedAt:   req.CreatedAt,
		ExpiresAt:   req.ExpiresAt,
		Used:        req.Used,
		InviteLink:  req.InviteLink,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert access request: %w", err)
	}
	return nil
}

func (r *accessRepository) Get(ctx context.Context, id string) (access.AccessRequest, error) {
	var doc AccessRequestDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return access.AccessRequest{}, access.ErrNotFound
	}
	if err != nil {
		return access.AccessRequest{}, fmt.Errorf("failed to get access request: %w", err)
	}
	return doc.ToDomain()
}

func (r *accessRepository) Reserve(ctx context.Context, id, holder string, now, until time.Time) error {
	filter := bson.M{
		"_id":  id,
		"used": false,
		"$or": bson.A{
			bson.M{"reserved_by": bson.M{"$exists": false}},
			bson.M{"reserved_by": holder},
			bson.M{"reserved_until": bson.M{"$lte": now}},
		},
	}
	update := bson.M{"$set": bson.M{"reserved_by": holder, "reserved_until": until}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve access request: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Used {
		return access.ErrAlreadyUsed
	}
	return access.ErrReserved
}

func (r *accessRepository) Release(ctx context.Context, id, holder string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "reserved_by": holder},
		bson.M{"$unset": bson.M{"reserved_by": "", "reserved_until": ""}},
	)
	if err != nil {
		return fmt.Errorf("failed to release access request: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return access.ErrNotHolder
}

func (r *accessRepository) MarkUsed(ctx context.Context, id, link string) error {
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "used": false},
		bson.M{
			"$set":   bson.M{"used": true, "invite_link": link},
			"$unset": bson.M{"reserved_by": "", "reserved_until": ""},
		},
	).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to finalize access request: %w", err)
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return access.ErrAlreadyUsed
}
