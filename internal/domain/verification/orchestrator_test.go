package verification_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/access"
	"github.com/gatekeep/shield/internal/domain/challenge"
	"github.com/gatekeep/shield/internal/domain/channels"
	"github.com/gatekeep/shield/internal/domain/verification"
	"github.com/gatekeep/shield/internal/domain/verification/mock"
	"github.com/gatekeep/shield/internal/gateways/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	channelID   snowflake.ID = 1000
	ownerID     snowflake.ID = 2000
	requesterID snowflake.ID = 3000
	inviteLink               = "https://discord.gg/abc123"
)

type fixture struct {
	orch      *verification.Orchestrator
	ledger    *access.Ledger
	channels  *channels.Service
	messenger *mock.MockMessenger
	archiver  *mock.MockArchiver
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.ledger = access.NewLedger(memory.NewAccessRepository(), time.Hour).WithClock(clock)
	f.channels = channels.NewService(memory.NewChannelRepository(), channels.Options{IdentityMaxDigits: 20}).WithClock(clock)

	ctx := context.Background()
	require.NoError(t, f.channels.RegisterChannel(ctx, channels.Channel{ID: channelID, OwnerID: ownerID, Title: "Guild"}))
	require.NoError(t, f.channels.SetProtection(ctx, ownerID, channelID, true))

	sessions, err := challenge.NewLRUStore(100, 3*time.Hour)
	require.NoError(t, err)
	sessions.WithClock(clock)

	f.messenger = mock.NewMockMessenger(ctrl)
	f.archiver = mock.NewMockArchiver(ctrl)
	f.orch = verification.NewOrchestrator(
		f.ledger,
		f.channels,
		challenge.NewSeededIssuer(7, 11, nil),
		sessions,
		f.messenger,
		verification.Options{PublicURL: "https://shield.example/", MessengerTimeout: time.Second},
	).WithArchiver(f.archiver)
	return f
}

// begin opens a request and returns its first challenge.
func (f *fixture) begin(t *testing.T) (access.AccessRequest, verification.Outcome) {
	t.Helper()
	f.messenger.EXPECT().
		NotifyOwner(gomock.Any(), ownerID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ snowflake.ID, n verification.Notification) error {
			require.Equal(t, verification.NotifyNewRequest, n.Kind)
			require.Equal(t, requesterID, n.RequesterID)
			return nil
		})

	res, err := f.orch.Begin(context.Background(), channelID, requesterID)
	require.NoError(t, err)
	require.Equal(t, "https://shield.example/verify?requestId="+res.Request.ID, res.VerifyURL)

	out := f.orch.Challenge(context.Background(), "", res.Request.ID)
	require.Equal(t, verification.OutcomeChallenged, out.Kind)
	require.NotEmpty(t, out.SessionID)
	require.NotNil(t, out.Challenge)
	return res.Request, out
}

func (f *fixture) expectSuccess(times int) {
	f.messenger.EXPECT().
		CreateInvite(gomock.Any(), gomock.Any(), time.Hour).
		Return(inviteLink, nil).
		Times(times)
	f.messenger.EXPECT().
		NotifyOwner(gomock.Any(), ownerID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ snowflake.ID, n verification.Notification) error {
			if n.Kind != verification.NotifyVerified || n.InviteLink != inviteLink {
				return errors.New("unexpected notification")
			}
			return nil
		}).
		Times(times)
	f.archiver.EXPECT().Archive(gomock.Any(), gomock.Any()).Return(nil).Times(times)
}

func answer(c *challenge.Challenge) string {
	return " " + strconv.Itoa(c.Answer) + "\n"
}

func TestOrchestrator_VerifyScenario(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)

	f.messenger.EXPECT().
		CreateInvite(gomock.Any(), gomock.Any(), time.Hour).
		DoAndReturn(func(_ context.Context, ch channels.Channel, _ time.Duration) (string, error) {
			require.Equal(t, channelID, ch.ID)
			return inviteLink, nil
		})
	f.messenger.EXPECT().
		NotifyOwner(gomock.Any(), ownerID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ snowflake.ID, n verification.Notification) error {
			require.Equal(t, verification.NotifyVerified, n.Kind)
			require.Equal(t, "203.0.113.7", n.Address)
			require.Equal(t, inviteLink, n.InviteLink)
			require.Equal(t, requesterID, n.RequesterID)
			return nil
		})
	f.archiver.EXPECT().
		Archive(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec verification.AuditRecord) error {
			require.Equal(t, req.ID, rec.RequestID)
			return nil
		})

	out := f.orch.Submit(context.Background(), verification.Submission{
		SessionID:       ch.SessionID,
		RequestID:       req.ID,
		Answer:          answer(ch.Challenge),
		ObservedAddress: "203.0.113.7",
	})
	require.Equal(t, verification.OutcomeVerified, out.Kind)
	require.Equal(t, verification.StateVerified, out.State())
	require.Equal(t, inviteLink, out.InviteLink)

	stored, err := f.ledger.Lookup(context.Background(), req.ID)
	require.NoError(t, err)
	require.True(t, stored.Used)
	require.Equal(t, inviteLink, stored.InviteLink)

	again := f.orch.Submit(context.Background(), verification.Submission{
		SessionID: ch.SessionID,
		RequestID: req.ID,
		Answer:    answer(ch.Challenge),
	})
	require.Equal(t, verification.OutcomeAlreadyUsed, again.Kind)
}

func TestOrchestrator_IncorrectAnswerRetries(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)

	wrong := f.orch.Submit(context.Background(), verification.Submission{
		SessionID: ch.SessionID,
		RequestID: req.ID,
		Answer:    strconv.Itoa(ch.Challenge.Answer + 1),
	})
	require.Equal(t, verification.OutcomeIncorrect, wrong.Kind)
	require.Equal(t, verification.StateChallenged, wrong.State())
	require.NotNil(t, wrong.Challenge)

	f.expectSuccess(1)
	out := f.orch.Submit(context.Background(), verification.Submission{
		SessionID: ch.SessionID,
		RequestID: req.ID,
		Answer:    answer(wrong.Challenge),
	})
	require.Equal(t, verification.OutcomeVerified, out.Kind)
}

func TestOrchestrator_Expired(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)

	f.now = f.now.Add(time.Hour)
	out := f.orch.Submit(context.Background(), verification.Submission{
		SessionID:       ch.SessionID,
		RequestID:       req.ID,
		Answer:          answer(ch.Challenge),
		ObservedAddress: "10.0.0.1",
	})
	require.Equal(t, verification.OutcomeExpired, out.Kind)

	// The session is gone too, yet the request still reports as expired.
	f.now = f.now.Add(5 * time.Hour)
	out = f.orch.Submit(context.Background(), verification.Submission{
		SessionID: ch.SessionID,
		RequestID: req.ID,
		Answer:    answer(ch.Challenge),
	})
	require.Equal(t, verification.OutcomeExpired, out.Kind)

	require.Equal(t, verification.OutcomeExpired, f.orch.Challenge(context.Background(), ch.SessionID, req.ID).Kind)
}

func TestOrchestrator_Denied(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, f *fixture)
		observed string
		reported string
	}{
		{
			name: "observed address",
			setup: func(t *testing.T, f *fixture) {
				_, err := f.channels.SetAddressList(context.Background(), ownerID, channelID, []string{"198.51.100.4"}, channels.ModeOverwrite)
				require.NoError(t, err)
			},
			observed: "198.51.100.4",
		},
		{
			name: "reported address",
			setup: func(t *testing.T, f *fixture) {
				_, err := f.channels.SetAddressList(context.Background(), ownerID, channelID, []string{"198.51.100.4"}, channels.ModeAppend)
				require.NoError(t, err)
			},
			observed: "10.0.0.2",
			reported: "198.51.100.4",
		},
		{
			name: "identity banned after request creation",
			setup: func(t *testing.T, f *fixture) {
				_, err := f.channels.SetIdentityList(context.Background(), ownerID, channelID, []string{requesterID.String()}, channels.ModeOverwrite)
				require.NoError(t, err)
			},
			observed: "10.0.0.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req, ch := f.begin(t)
			tt.setup(t, f)

			out := f.orch.Submit(context.Background(), verification.Submission{
				SessionID:       ch.SessionID,
				RequestID:       req.ID,
				Answer:          answer(ch.Challenge),
				ObservedAddress: tt.observed,
				ReportedAddress: tt.reported,
			})
			require.Equal(t, verification.OutcomeDenied, out.Kind)
			require.Equal(t, verification.StateDenied, out.State())

			stored, err := f.ledger.Lookup(context.Background(), req.ID)
			require.NoError(t, err)
			require.False(t, stored.Used)
		})
	}
}

func TestOrchestrator_MintFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)

	f.messenger.EXPECT().
		CreateInvite(gomock.Any(), gomock.Any(), time.Hour).
		Return("", errors.New("discord: 500"))

	sub := verification.Submission{
		SessionID:       ch.SessionID,
		RequestID:       req.ID,
		Answer:          answer(ch.Challenge),
		ObservedAddress: "10.0.0.3",
	}
	out := f.orch.Submit(context.Background(), sub)
	require.Equal(t, verification.OutcomeInfrastructureError, out.Kind)
	require.Error(t, out.Err)

	stored, err := f.ledger.Lookup(context.Background(), req.ID)
	require.NoError(t, err)
	require.False(t, stored.Used)
	require.Empty(t, stored.ReservedBy)

	f.expectSuccess(1)
	out = f.orch.Submit(context.Background(), sub)
	require.Equal(t, verification.OutcomeVerified, out.Kind)
}

func TestOrchestrator_MintTimeout(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)

	f.messenger.EXPECT().
		CreateInvite(gomock.Any(), gomock.Any(), time.Hour).
		DoAndReturn(func(ctx context.Context, _ channels.Channel, _ time.Duration) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	out := f.orch.Submit(context.Background(), verification.Submission{
		SessionID: ch.SessionID,
		RequestID: req.ID,
		Answer:    answer(ch.Challenge),
	})
	require.Equal(t, verification.OutcomeInfrastructureError, out.Kind)
	require.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestOrchestrator_ConcurrentSubmitMintsOnce(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)

	release := make(chan struct{})
	f.messenger.EXPECT().
		CreateInvite(gomock.Any(), gomock.Any(), time.Hour).
		DoAndReturn(func(context.Context, channels.Channel, time.Duration) (string, error) {
			<-release
			return inviteLink, nil
		}).
		Times(1)
	f.messenger.EXPECT().NotifyOwner(gomock.Any(), ownerID, gomock.Any()).Return(nil).Times(1)
	f.archiver.EXPECT().Archive(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	sub := verification.Submission{
		SessionID: ch.SessionID,
		RequestID: req.ID,
		Answer:    answer(ch.Challenge),
	}

	results := make([]verification.Outcome, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.orch.Submit(context.Background(), sub)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	kinds := map[verification.OutcomeKind]int{}
	for _, r := range results {
		kinds[r.Kind]++
	}
	require.Equal(t, 1, kinds[verification.OutcomeVerified])
	require.Equal(t, 1, kinds[verification.OutcomeAlreadyUsed])
}

func TestOrchestrator_SessionMismatch(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)

	tests := []verification.Submission{
		{SessionID: "unknown", RequestID: req.ID, Answer: answer(ch.Challenge)},
		{SessionID: ch.SessionID, RequestID: strings.Repeat("a", 64), Answer: answer(ch.Challenge)},
		{SessionID: ch.SessionID, RequestID: "", Answer: answer(ch.Challenge)},
	}
	for _, sub := range tests {
		out := f.orch.Submit(context.Background(), sub)
		require.Equal(t, verification.OutcomeInvalid, out.Kind)
		require.Equal(t, verification.StateInvalid, out.State())
	}
}

func TestOrchestrator_Begin(t *testing.T) {
	t.Run("unprotected channel", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.channels.SetProtection(context.Background(), ownerID, channelID, false))

		_, err := f.orch.Begin(context.Background(), channelID, requesterID)
		require.ErrorIs(t, err, verification.ErrNotProtected)
	})

	t.Run("banned identity", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.channels.SetIdentityList(context.Background(), ownerID, channelID, []string{requesterID.String()}, channels.ModeOverwrite)
		require.NoError(t, err)

		_, err = f.orch.Begin(context.Background(), channelID, requesterID)
		require.ErrorIs(t, err, verification.ErrDenied)
	})

	t.Run("owner notification failure is swallowed", func(t *testing.T) {
		f := newFixture(t)
		f.messenger.EXPECT().NotifyOwner(gomock.Any(), ownerID, gomock.Any()).Return(errors.New("dm closed"))

		res, err := f.orch.Begin(context.Background(), channelID, requesterID)
		require.NoError(t, err)
		require.True(t, access.ValidID(res.Request.ID))
	})
}

func TestOrchestrator_ChallengeAfterProtectionOff(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)
	require.NoError(t, f.channels.SetProtection(context.Background(), ownerID, channelID, false))

	out := f.orch.Challenge(context.Background(), ch.SessionID, req.ID)
	require.Equal(t, verification.OutcomeInvalid, out.Kind)
	require.Equal(t, verification.OutcomeInvalid, f.orch.Challenge(context.Background(), "", "garbage").Kind)
}

func TestOrchestrator_CheckBan(t *testing.T) {
	f := newFixture(t)
	req, ch := f.begin(t)
	_, err := f.channels.SetAddressList(context.Background(), ownerID, channelID, []string{"192.0.2.1"}, channels.ModeOverwrite)
	require.NoError(t, err)

	banned, err := f.orch.CheckBan(context.Background(), req.ID, "192.0.2.1")
	require.NoError(t, err)
	require.True(t, banned)

	banned, err = f.orch.CheckBan(context.Background(), req.ID, "192.0.2.2")
	require.NoError(t, err)
	require.False(t, banned)

	_, err = f.orch.CheckBan(context.Background(), "nope", "192.0.2.2")
	require.ErrorIs(t, err, access.ErrInvalidID)

	got, ok := f.orch.SessionRequest(ch.SessionID)
	require.True(t, ok)
	require.Equal(t, req.ID, got)
}

func TestOutcomeKind_State(t *testing.T) {
	tests := []struct {
		kind verification.OutcomeKind
		want verification.State
	}{
		{verification.OutcomeChallenged, verification.StateChallenged},
		{verification.OutcomeIncorrect, verification.StateChallenged},
		{verification.OutcomeInfrastructureError, verification.StateChallenged},
		{verification.OutcomeVerified, verification.StateVerified},
		{verification.OutcomeDenied, verification.StateDenied},
		{verification.OutcomeExpired, verification.StateExpired},
		{verification.OutcomeAlreadyUsed, verification.StateExpired},
		{verification.OutcomeInvalid, verification.StateInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.State(); got != tt.want {
				t.Errorf("OutcomeKind.State() = %v, want %v", got, tt.want)
			}
		})
	}
}
