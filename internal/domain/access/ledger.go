package access

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Ledger owns the lifecycle of access requests: creation, lookup and the
// single-use finalization that binds an invite link to a request.
type Ledger struct {
	repository Repository
	ttl        time.Duration
	now        func() time.Time
}

func NewLedger(repository Repository, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{
		repository: repository,
		ttl:        ttl,
		now:        time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func (l *Ledger) Now() time.Time {
	return l.now()
}

func (l *Ledger) Create(ctx context.Context, channelID, ownerID, requesterID snowflake.ID) (AccessRequest, error) {
	now := l.now().UTC()

	id, err := NewID(now, requesterID, channelID)
	if err != nil {
		return AccessRequest{}, fmt.Errorf("failed to generate request id: %w", err)
	}

	req := AccessRequest{
		ID:          id,
		ChannelID:   channelID,
		OwnerID:     ownerID,
		RequesterID: requesterID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(l.ttl),
	}

	if err := l.repository.Insert(ctx, req); err != nil {
		return AccessRequest{}, fmt.Errorf("failed to store access request: %w", err)
	}
	return req, nil
}

func (l *Ledger) Lookup(ctx context.Context, id string) (AccessRequest, error) {
	if !ValidID(id) {
		return AccessRequest{}, ErrInvalidID
	}
	return l.repository.Get(ctx, id)
}

// Finalize marks the request used and records link. Only the first caller
// succeeds; everyone after gets ErrAlreadyUsed and the stored link is kept.
func (l *Ledger) Finalize(ctx context.Context, id, link string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	if link == "" {
		return fmt.Errorf("finalize %s: empty invite link", id)
	}
	return l.repository.MarkUsed(ctx, id, link)
}

// Reserve takes the short mint lease for holder.
func (l *Ledger) Reserve(ctx context.Context, id, holder string, lease time.Duration) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	now := l.now().UTC()
	return l.repository.Reserve(ctx, id, holder, now, now.Add(lease))
}

func (l *Ledger) Release(ctx context.Context, id, holder string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	return l.repository.Release(ctx, id, holder)
}

func (l *Ledger) IsLive(r AccessRequest) bool {
	return r.Live(l.now())
}
