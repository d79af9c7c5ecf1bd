package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/menu"
	"github.com/gatekeep/shield/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

type adminSessionRepository struct {
	db *bun.DB
}

func NewAdminSessionRepository(db *bun.DB) menu.Repository {
	return &adminSessionRepository{db: db}
}

func (r *adminSessionRepository) Get(ctx context.Context, adminID snowflake.ID) (menu.Session, error) {
	model := new(models.AdminSession)
	err := r.db.NewSelect().Model(model).Where("admin_id = ?", int64(adminID)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return menu.Session{}, menu.ErrSessionNotFound
	}
	if err != nil {
		return menu.Session{}, err
	}
	return menu.Session{
		AdminID:   snowflake.ID(model.AdminID),
		Screen:    menu.Screen(model.Screen),
		ChannelID: snowflake.ID(model.ChannelID),
		Mode:      channels.ListMode(model.ListMode),
		ExpiresAt: model.ExpiresAt,
	}, nil
}

func (r *adminSessionRepository) Put(ctx context.Context, session menu.Session) error {
	model := &models.AdminSession{
		AdminID:   int64(session.AdminID),
		Screen:    int(session.Screen),
		ChannelID: int64(session.ChannelID),
		ListMode:  int(session.Mode),
		ExpiresAt: session.ExpiresAt,
	}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (admin_id) DO UPDATE").
		Set("screen = EXCLUDED.screen").
		Set("channel_id = EXCLUDED.channel_id").
		Set("list_mode = EXCLUDED.list_mode").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	return err
}

func (r *adminSessionRepository) Delete(ctx context.Context, adminID snowflake.ID) error {
	_, err := r.db.NewDelete().
		Model((*models.AdminSession)(nil)).
		Where("admin_id = ?", int64(adminID)).
		Exec(ctx)
	return err
}
