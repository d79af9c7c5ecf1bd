package access

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

import (
	"context"
	"time"
)

// Repository is the persistence boundary for access requests. Every mutating
// method is a single conditional update on one record.
type Repository interface {
	Insert(ctx context.Context, req AccessRequest) error
	Get(ctx context.Context, id string) (AccessRequest, error)
	// Reserve sets the lease only when the record is unused and not leased by
	// someone else at now. Returns ErrAlreadyUsed, ErrReserved or ErrNotFound.
	Reserve(ctx context.Context, id, holder string, now, until time.Time) error
	// Release clears the lease if holder still owns it.
	Release(ctx context.Context, id, holder string) error
	// MarkUsed flips used to true and stores link only if used was false.
	// The loser of a race gets ErrAlreadyUsed.
	MarkUsed(ctx context.Context, id, link string) error
}
