package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/logger"
	"github.com/gatekeep/shield/internal/gateways/database/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
)

const (
	reserveQuery = `UPDATE access_requests
SET reserved_by = $2, reserved_until = $4
WHERE id = $1 AND used = false
  AND (reserved_by IS NULL OR reserved_by = $2 OR reserved_until <= $3)
RETURNING id`

	releaseQuery = `UPDATE access_requests
SET reserved_by = NULL, reserved_until = NULL
WHERE id = $1 AND reserved_by = $2`

	markUsedQuery = `UPDATE access_requests
SET used = true, invite_link = $2, reserved_by = NULL, reserved_until = NULL
WHERE id = $1 AND used = false
RETURNING id`
)

type accessRequestRepository struct {
	db   *bun.DB
	pool *pgxpool.Pool
}

// NewAccessRequestRepository stores requests through bun and runs the
// conditional state changes as single statements on the pgx pool.
func NewAccessRequestRepository(db *bun.DB, pool *pgxpool.Pool) access.Repository {
	return &accessRequestRepository{db: db, pool: pool}
}

func (r *accessRequestRepository) Insert(ctx context.Context, req access.AccessRequest) error {
	model := accessRequestModel(req)
	_, err := r.db.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert access request: %w", err)
	}
	return nil
}

func (r *accessRequestRepository) Get(ctx context.Context, id string) (access.AccessRequest, error) {
	model := new(models.AccessRequest)
	err := r.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return access.AccessRequest{}, access.ErrNotFound
	}
	if err != nil {
		return access.AccessRequest{}, fmt.Errorf("failed to get access request: %w", err)
	}
	return accessRequestFromModel(model)
}

func (r *accessRequestRepository) Reserve(ctx context.Context, id, holder string, now, until time.Time) error {
	ql := logger.NewQueryLogger("reserve_access_request", reserveQuery, id, holder)
	var got string
	err := r.pool.QueryRow(ctx, reserveQuery, id, holder, now, until).Scan(&got)
	if err == nil {
		ql.Log(nil, 1)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		ql.Log(err, 0)
		return err
	}
	ql.Log(nil, 0)

	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Used {
		return access.ErrAlreadyUsed
	}
	return access.ErrReserved
}

func (r *accessRequestRepository) Release(ctx context.Context, id, holder string) error {
	ql := logger.NewQueryLogger("release_access_request", releaseQuery, id, holder)
	tag, err := r.pool.Exec(ctx, releaseQuery, id, holder)
	ql.Log(err, tag.RowsAffected())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return access.ErrNotHolder
}

func (r *accessRequestRepository) MarkUsed(ctx context.Context, id, link string) error {
	ql := logger.NewQueryLogger("finalize_access_request", markUsedQuery, id, link)
	var got string
	err := r.pool.QueryRow(ctx, markUsedQuery, id, link).Scan(&got)
	if err == nil {
		ql.Log(nil, 1)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		ql.Log(err, 0)
		return err
	}
	ql.Log(nil, 0)

	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return access.ErrAlreadyUsed
}

func accessRequestModel(req access.AccessRequest) *models.AccessRequest {
	return &models.AccessRequest{
		ID:            req.ID,
		ChannelID:     int64(req.ChannelID),
		OwnerID:       int64(req.OwnerID),
		RequesterID:   int64(req.RequesterID),
		CreatedAt:     req.CreatedAt,
		ExpiresAt:     req.ExpiresAt,
		Used:          req.Used,
		InviteLink:    req.InviteLink,
		ReservedBy:    req.ReservedBy,
		ReservedUntil: req.ReservedUntil,
	}
}

// accessRequestFromModel rejects rows that break the record's invariants
// instead of passing them on.
func accessRequestFromModel(m *models.AccessRequest) (access.AccessRequest, error) {
	switch {
	case !access.ValidID(m.ID):
		return access.AccessRequest{}, fmt.Errorf("access request row has malformed id %q", m.ID)
	case !m.ExpiresAt.After(m.CreatedAt):
		return access.AccessRequest{}, fmt.Errorf("access request %s expires before it was created", m.ID)
	case m.Used && m.InviteLink == "":
		return access.AccessRequest{}, fmt.Errorf("access request %s is used without an invite link", m.ID)
	}
	return access.AccessRequest{
		ID:            m.ID,
		ChannelID:     snowflake.ID(m.ChannelID),
		OwnerID:       snowflake.ID(m.OwnerID),
		RequesterID:   snowflake.ID(m.RequesterID),
		CreatedAt:     m.CreatedAt,
		ExpiresAt:     m.ExpiresAt,
		Used:          m.Used,
		InviteLink:    m.InviteLink,
		ReservedBy:    m.ReservedBy,
		ReservedUntil: m.ReservedUntil,
	}, nil
}
