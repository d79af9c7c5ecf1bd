package memory

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gatekeep/shield/internal/domain/menu"
)

type MenuRepository struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]menu.Session
}

func NewMenuRepository() *MenuRepository {
	return &MenuRepository{sessions: make(map[snowflake.ID]menu.Session)}
}

func (r *MenuRepository) Get(_ context.Context, adminID snowflake.ID) (menu.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[adminID]
	if !ok {
		return menu.Session{}, menu.ErrSessionNotFound
	}
	return s, nil
}

func (r *MenuRepository) Put(_ context.Context, session menu.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.AdminID] = session
	return nil
}

func (r *MenuRepository) Delete(_ context.Context, adminID snowflake.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, adminID)
	return nil
}
