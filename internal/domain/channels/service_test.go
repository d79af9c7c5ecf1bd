package channels_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/channels/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	channelID  snowflake.ID = 900
	ownerID    snowflake.ID = 100
	strangerID snowflake.ID = 200
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts channels.Options) (*channels.Service, *mock.MockRepository) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	return channels.NewService(repo, opts).WithClock(func() time.Time { return now }), repo
}

func expectOwned(repo *mock.MockRepository) {
	repo.EXPECT().
		GetChannel(gomock.Any(), channelID).
		Return(channels.Channel{ID: channelID, OwnerID: ownerID, Title: "Guild"}, nil).
		AnyTimes()
}

func TestService_SetAddressList(t *testing.T) {
	tests := []struct {
		name         string
		lines        []string
		mode         channels.ListMode
		setup        func(repo *mock.MockRepository)
		wantAccepted []string
		wantInvalid  int
		wantErr      error
	}{
		{
			name:  "overwrite keeps valid subset",
			lines: []string{"10.0.0.1", "not-an-ip", "300.1.1.1"},
			mode:  channels.ModeOverwrite,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().
					ReplaceList(gomock.Any(), channelID, ownerID, channels.ListAddresses, []string{"10.0.0.1"}, now).
					Return(nil)
			},
			wantAccepted: []string{"10.0.0.1"},
			wantInvalid:  2,
		},
		{
			name:        "all invalid writes nothing",
			lines:       []string{"nope", "1.2.3"},
			mode:        channels.ModeOverwrite,
			wantInvalid: 2,
			wantErr:     channels.ErrNoValidEntries,
		},
		{
			name:  "append sends new values only",
			lines: []string{"5.6.7.8"},
			mode:  channels.ModeAppend,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().
					AppendList(gomock.Any(), channelID, ownerID, channels.ListAddresses, []string{"5.6.7.8"}, now).
					Return(nil)
			},
			wantAccepted: []string{"5.6.7.8"},
		},
		{
			name:    "blank input is rejected",
			lines:   []string{"", "   "},
			mode:    channels.ModeAppend,
			wantErr: channels.ErrNoValidEntries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo := newService(t, channels.Options{})
			expectOwned(repo)
			if tt.setup != nil {
				tt.setup(repo)
			}

			got, err := s.SetAddressList(context.Background(), ownerID, channelID, tt.lines, tt.mode)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var verr *channels.ValidationError
				require.True(t, errors.As(err, &verr))
				require.Len(t, verr.Invalid, tt.wantInvalid)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantAccepted, got.Accepted)
			require.Len(t, got.Invalid, tt.wantInvalid)
		})
	}
}

func TestService_AppendDedupe(t *testing.T) {
	s, repo := newService(t, channels.Options{DedupeOnAppend: true})
	expectOwned(repo)

	repo.EXPECT().
		GetConfig(gomock.Any(), channelID).
		Return(channels.Config{ChannelID: channelID, BannedAddresses: []string{"1.2.3.4"}}, nil)
	repo.EXPECT().
		AppendList(gomock.Any(), channelID, ownerID, channels.ListAddresses, []string{"5.6.7.8"}, now).
		Return(nil)

	got, err := s.SetAddressList(context.Background(), ownerID, channelID, []string{"1.2.3.4", "5.6.7.8", "5.6.7.8"}, channels.ModeAppend)
	require.NoError(t, err)
	require.Len(t, got.Accepted, 3)
}

func TestService_SetIdentityList(t *testing.T) {
	s, repo := newService(t, channels.Options{IdentityMaxDigits: 20})
	expectOwned(repo)

	repo.EXPECT().
		ReplaceList(gomock.Any(), channelID, ownerID, channels.ListIdentities, []string{"123456789012345678", "42"}, now).
		Return(nil)

	got, err := s.SetIdentityList(context.Background(), ownerID, channelID,
		[]string{"123456789012345678", "0042", "abc"}, channels.ModeOverwrite)
	require.NoError(t, err)
	require.Equal(t, []string{"123456789012345678", "42"}, got.Accepted)
	require.Len(t, got.Invalid, 1)
	require.Equal(t, 3, got.Invalid[0].Line)
}

func TestService_NotOwner(t *testing.T) {
	s, repo := newService(t, channels.Options{})
	expectOwned(repo)

	_, err := s.SetAddressList(context.Background(), strangerID, channelID, []string{"1.1.1.1"}, channels.ModeOverwrite)
	require.ErrorIs(t, err, channels.ErrNotOwner)
	require.ErrorIs(t, s.SetProtection(context.Background(), strangerID, channelID, true), channels.ErrNotOwner)
	require.ErrorIs(t, s.ClearIdentityList(context.Background(), strangerID, channelID), channels.ErrNotOwner)
}

func TestService_ClearAndProtection(t *testing.T) {
	s, repo := newService(t, channels.Options{})
	expectOwned(repo)

	repo.EXPECT().ReplaceList(gomock.Any(), channelID, ownerID, channels.ListAddresses, []string{}, now).Return(nil)
	repo.EXPECT().SetProtection(gomock.Any(), channelID, ownerID, true, now).Return(nil)

	require.NoError(t, s.ClearAddressList(context.Background(), ownerID, channelID))
	require.NoError(t, s.SetProtection(context.Background(), ownerID, channelID, true))
}

func TestService_ConfigDefaultsToUnprotected(t *testing.T) {
	s, repo := newService(t, channels.Options{})
	repo.EXPECT().GetConfig(gomock.Any(), channelID).Return(channels.Config{}, channels.ErrConfigNotFound)

	cfg, err := s.Config(context.Background(), channelID)
	require.NoError(t, err)
	require.False(t, cfg.CaptchaOn)
	require.Equal(t, channelID, cfg.ChannelID)
}

func TestService_SearchOwnedChannels(t *testing.T) {
	s, repo := newService(t, channels.Options{})
	repo.EXPECT().
		ListChannelsByOwner(gomock.Any(), ownerID).
		Return([]channels.Channel{
			{ID: 1, Title: "Photography Club"},
			{ID: 2, Title: "Gophers"},
			{ID: 3, Title: "Go Study Group"},
		}, nil).
		Times(2)

	got, err := s.SearchOwnedChannels(context.Background(), ownerID, "gph", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Equal(t, snowflake.ID(2), got[0].ID)

	all, err := s.SearchOwnedChannels(context.Background(), ownerID, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Go Study Group", all[0].Title)
}
