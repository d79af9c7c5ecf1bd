package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gatekeep/shield/internal/domain/access"
)

// AccessRepository keeps access requests in a map. Every method holds the
// lock for its whole read-check-write so conditional updates stay atomic.
type AccessRepository struct {
	mu       sync.Mutex
	requests map[string]access.AccessRequest
}

func NewAccessRepository() *AccessRepository {
	return &AccessRepository{requests: make(map[string]access.AccessRequest)}
}

func (r *AccessRepository) Insert(_ context.Context, req access.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; ok {
		return fmt.Errorf("access request %s already exists", req.ID)
	}
	r.requests[req.ID] = req
	return nil
}

func (r *AccessRepository) Get(_ context.Context, id string) (access.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return access.AccessRequest{}, access.ErrNotFound
	}
	return req, nil
}

func (r *AccessRepository) Reserve(_ context.Context, id, holder string, now, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	switch {
	case !ok:
		return access.ErrNotFound
	case req.Used:
		return access.ErrAlreadyUsed
	case req.Reserved(now) && req.ReservedBy != holder:
		return access.ErrReserved
	}
	req.ReservedBy = holder
	req.ReservedUntil = until
	r.requests[id] = req
	return nil
}

func (r *AccessRepository) Release(_ context.Context, id, holder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return access.ErrNotFound
	}
	if req.ReservedBy != holder {
		return access.ErrNotHolder
	}
	req.ReservedBy = ""
	req.ReservedUntil = time.Time{}
	r.requests[id] = req
	return nil
}

func (r *AccessRepository) MarkUsed(_ context.Context, id, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return access.ErrNotFound
	}
	if req.Used {
		return access.ErrAlreadyUsed
	}
	req.Used = true
	req.InviteLink = link
	req.ReservedBy = ""
	req.ReservedUntil = time.Time{}
	r.requests[id] = req
	return nil
}
