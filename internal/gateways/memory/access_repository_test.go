package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessRepository_MarkUsedOnce(t *testing.T) {
	repo := NewAccessRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, access.AccessRequest{ID: "r1", ExpiresAt: time.Now().Add(time.Hour)}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := repo.MarkUsed(ctx, "r1", fmt.Sprintf("https://discord.gg/%d", i)); err == nil {
				wins.Add(1)
			} else {
				assert.ErrorIs(t, err, access.ErrAlreadyUsed)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	require.True(t, got.Used)
	require.NotEmpty(t, got.InviteLink)

	require.ErrorIs(t, repo.MarkUsed(ctx, "r1", "https://discord.gg/late"), access.ErrAlreadyUsed)
	after, _ := repo.Get(ctx, "r1")
	require.Equal(t, got.InviteLink, after.InviteLink)
}

func TestAccessRepository_Reserve(t *testing.T) {
	repo := NewAccessRepository()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, access.AccessRequest{ID: "r1", ExpiresAt: now.Add(time.Hour)}))

	require.NoError(t, repo.Reserve(ctx, "r1", "a", now, now.Add(10*time.Second)))
	require.ErrorIs(t, repo.Reserve(ctx, "r1", "b", now.Add(time.Second), now.Add(11*time.Second)), access.ErrReserved)
	require.ErrorIs(t, repo.Release(ctx, "r1", "b"), access.ErrNotHolder)

	// An expired lease can be taken over.
	require.NoError(t, repo.Reserve(ctx, "r1", "b", now.Add(20*time.Second), now.Add(30*time.Second)))

	require.NoError(t, repo.Release(ctx, "r1", "b"))
	require.NoError(t, repo.MarkUsed(ctx, "r1", "https://discord.gg/x"))
	require.ErrorIs(t, repo.Reserve(ctx, "r1", "c", now, now.Add(time.Second)), access.ErrAlreadyUsed)
	require.ErrorIs(t, repo.Reserve(ctx, "missing", "c", now, now.Add(time.Second)), access.ErrNotFound)
}
