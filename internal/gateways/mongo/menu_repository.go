package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/menu"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AdminSessionDoc struct {
	AdminID   int64     `bson:"_id"`
	Screen    int       `bson:"screen"`
	ChannelID int64     `bson:"channel_id"`
	Mode      int       `bson:"mode"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type menuRepository struct {
	coll *mongo.Collection
}

func NewMenuRepository(s *Store) menu.Repository {
	return &menuRepository{coll: s.db.Collection(CollAdminSessions)}
}

func (r *menuRepository) Get(ctx context.Context, adminID snowflake.ID) (menu.Session, error) {
	var doc AdminSessionDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": int64(adminID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return menu.Session{}, menu.ErrSessionNotFound
	}
	if err != nil {
		return menu.Session{}, fmt.Errorf("failed to get admin session: %w", err)
	}
	return menu.Session{
		AdminID:   snowflake.ID(doc.AdminID),
		Screen:    menu.Screen(doc.Screen),
		ChannelID: snowflake.ID(doc.ChannelID),
		Mode:      channels.ListMode(doc.Mode),
		ExpiresAt: doc.ExpiresAt.UTC(),
	}, nil
}

func (r *menuRepository) Put(ctx context.Context, s menu.Session) error {
	doc := AdminSessionDoc{
		AdminID:   int64(s.AdminID),
		Screen:    int(s.Screen),
		ChannelID: int64(s.ChannelID),
		Mode:      int(s.Mode),
		ExpiresAt: s.ExpiresAt,
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.AdminID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put admin session: %w", err)
	}
	return nil
}

func (r *menuRepository) Delete(ctx context.Context, adminID snowflake.ID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": int64(adminID)}); err != nil {
		return fmt.Errorf("failed to delete admin session: %w", err)
	}
	return nil
}
