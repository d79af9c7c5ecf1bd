package access_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/access/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*access.Ledger, *mock.MockRepository) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	ledger := access.NewLedger(repo, time.Hour).WithClock(func() time.Time { return fixedNow })
	return ledger, repo
}

func TestLedger_Create(t *testing.T) {
	ledger, repo := newLedger(t)

	var stored access.AccessRequest
	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req access.AccessRequest) error {
			stored = req
			return nil
		})

	req, err := ledger.Create(context.Background(), snowflake.ID(10), snowflake.ID(20), snowflake.ID(30))
	require.NoError(t, err)
	require.Equal(t, stored, req)
	require.True(t, access.ValidID(req.ID))
	require.Equal(t, fixedNow, req.CreatedAt)
	require.Equal(t, fixedNow.Add(time.Hour), req.ExpiresAt)
	require.False(t, req.Used)
	require.Empty(t, req.InviteLink)
	require.True(t, ledger.IsLive(req))
}

func TestLedger_CreateUniqueIDs(t *testing.T) {
	ledger, repo := newLedger(t)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).Times(50)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		req, err := ledger.Create(context.Background(), 1, 2, 3)
		require.NoError(t, err)
		_, dup := seen[req.ID]
		require.False(t, dup, "duplicate id %s", req.ID)
		seen[req.ID] = struct{}{}
	}
}

func TestLedger_CreateStorageError(t *testing.T) {
	ledger, repo := newLedger(t)
	boom := errors.New("connection reset")
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(boom)

	_, err := ledger.Create(context.Background(), 1, 2, 3)
	require.ErrorIs(t, err, boom)
}

func TestLedger_Lookup(t *testing.T) {
	validID := strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		id      string
		setup   func(repo *mock.MockRepository)
		wantErr error
	}{
		{
			name:    "empty id",
			id:      "",
			wantErr: access.ErrInvalidID,
		},
		{
			name:    "wrong length",
			id:      "abc123",
			wantErr: access.ErrInvalidID,
		},
		{
			name:    "uppercase hex",
			id:      strings.Repeat("AB", 32),
			wantErr: access.ErrInvalidID,
		},
		{
			name: "not found",
			id:   validID,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().Get(gomock.Any(), validID).Return(access.AccessRequest{}, access.ErrNotFound)
			},
			wantErr: access.ErrNotFound,
		},
		{
			name: "found",
			id:   validID,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().Get(gomock.Any(), validID).Return(access.AccessRequest{ID: validID}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, repo := newLedger(t)
			if tt.setup != nil {
				tt.setup(repo)
			}

			got, err := ledger.Lookup(context.Background(), tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.id, got.ID)
		})
	}
}

func TestLedger_Finalize(t *testing.T) {
	validID := strings.Repeat("0f", 32)

	t.Run("first finalize wins", func(t *testing.T) {
		ledger, repo := newLedger(t)
		gomock.InOrder(
			repo.EXPECT().MarkUsed(gomock.Any(), validID, "https://discord.gg/a").Return(nil),
			repo.EXPECT().MarkUsed(gomock.Any(), validID, "https://discord.gg/b").Return(access.ErrAlreadyUsed),
		)

		require.NoError(t, ledger.Finalize(context.Background(), validID, "https://discord.gg/a"))
		require.ErrorIs(t, ledger.Finalize(context.Background(), validID, "https://discord.gg/b"), access.ErrAlreadyUsed)
	})

	t.Run("empty link rejected", func(t *testing.T) {
		ledger, _ := newLedger(t)
		require.Error(t, ledger.Finalize(context.Background(), validID, ""))
	})

	t.Run("malformed id never reaches store", func(t *testing.T) {
		ledger, _ := newLedger(t)
		require.ErrorIs(t, ledger.Finalize(context.Background(), "nope", "https://discord.gg/a"), access.ErrInvalidID)
	})
}

func TestLedger_Reserve(t *testing.T) {
	validID := strings.Repeat("1e", 32)
	ledger, repo := newLedger(t)

	repo.EXPECT().
		Reserve(gomock.Any(), validID, "holder-1", fixedNow, fixedNow.Add(10*time.Second)).
		Return(nil)
	repo.EXPECT().Release(gomock.Any(), validID, "holder-1").Return(nil)

	require.NoError(t, ledger.Reserve(context.Background(), validID, "holder-1", 10*time.Second))
	require.NoError(t, ledger.Release(context.Background(), validID, "holder-1"))
}

func TestAccessRequest_Live(t *testing.T) {
	created := fixedNow
	tests := []struct {
		name string
		req  access.AccessRequest
		at   time.Time
		want bool
	}{
		{"fresh", access.AccessRequest{CreatedAt: created, ExpiresAt: created.Add(time.Hour)}, created.Add(time.Minute), true},
		{"at expiry", access.AccessRequest{CreatedAt: created, ExpiresAt: created.Add(time.Hour)}, created.Add(time.Hour), false},
		{"used before expiry", access.AccessRequest{Used: true, ExpiresAt: created.Add(time.Hour)}, created, false},
		{"used and expired", access.AccessRequest{Used: true, ExpiresAt: created.Add(time.Hour)}, created.Add(2 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Live(tt.at); got != tt.want {
				t.Errorf("AccessRequest.Live() = %v, want %v", got, tt.want)
			}
		})
	}
}
