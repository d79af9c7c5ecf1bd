package repositories_test

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/gateways/database/repositories"
	"github.com/gatekeep/shield/shield/database"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// newTestRepository connects to the Postgres named by SHIELD_TEST_DB_HOST.
// The remaining SHIELD_TEST_DB_* variables override the local defaults.
func newTestRepository(t *testing.T) access.Repository {
	t.Helper()
	host := os.Getenv("SHIELD_TEST_DB_HOST")
	if host == "" {
		t.Skip("SHIELD_TEST_DB_HOST not set")
	}

	cfg := database.DBConfig{
		Host:     host,
		Port:     5432,
		User:     envOr("SHIELD_TEST_DB_USER", "postgres"),
		Password: envOr("SHIELD_TEST_DB_PASSWORD", "postgres"),
		Database: envOr("SHIELD_TEST_DB_NAME", "shield_test"),
	}
	if port := os.Getenv("SHIELD_TEST_DB_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		require.NoError(t, err)
		cfg.Port = p
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.InitializeSchema(ctx))

	return repositories.NewAccessRequestRepository(db.BunDB(), db.GetPool())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func insertRequest(t *testing.T, repo access.Repository, now time.Time) string {
	t.Helper()
	id, err := access.NewID(now, 3, 1)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), access.AccessRequest{
		ID:          id,
		ChannelID:   1,
		OwnerID:     2,
		RequesterID: 3,
		CreatedAt:   now,
		ExpiresAt:   now.Add(access.DefaultTTL),
	}))
	return id
}

func TestAccessRequestRepository_ReserveAndMarkUsed(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := insertRequest(t, repo, now)
	lease := now.Add(time.Minute)

	require.NoError(t, repo.Reserve(ctx, id, "h1", now, lease))
	require.NoError(t, repo.Reserve(ctx, id, "h1", now, lease), "holder may renew its own lease")
	require.ErrorIs(t, repo.Reserve(ctx, id, "h2", now, lease), access.ErrReserved)

	later := lease.Add(time.Second)
	require.NoError(t, repo.Reserve(ctx, id, "h2", later, later.Add(time.Minute)), "expired lease is taken over")
	require.ErrorIs(t, repo.Release(ctx, id, "h1"), access.ErrNotHolder)
	require.NoError(t, repo.Release(ctx, id, "h2"))

	require.NoError(t, repo.MarkUsed(ctx, id, "https://discord.gg/abc"))
	require.ErrorIs(t, repo.MarkUsed(ctx, id, "https://discord.gg/def"), access.ErrAlreadyUsed)
	require.ErrorIs(t, repo.Reserve(ctx, id, "h3", later, later.Add(time.Minute)), access.ErrAlreadyUsed)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, got.Used)
	require.Equal(t, "https://discord.gg/abc", got.InviteLink)
	require.Empty(t, got.ReservedBy)
}

func TestAccessRequestRepository_UnknownID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	id, err := access.NewID(time.Now(), 3, 1)
	require.NoError(t, err)

	require.ErrorIs(t, repo.MarkUsed(ctx, id, "https://discord.gg/abc"), access.ErrNotFound)
	require.ErrorIs(t, repo.Release(ctx, id, "h1"), access.ErrNotFound)
}

func TestAccessRequestRepository_ConcurrentReserve(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := insertRequest(t, repo, now)

	var won, lost atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		holder := "h" + strconv.Itoa(i)
		g.Go(func() error {
			err := repo.Reserve(ctx, id, holder, now, now.Add(time.Minute))
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, access.ErrReserved):
				lost.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), won.Load())
	require.Equal(t, int32(7), lost.Load())
}
