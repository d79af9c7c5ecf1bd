package challenge

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	DefaultSessionCapacity = 10000
	DefaultSessionTTL      = time.Hour
)

// Session is the server-side half of an issued challenge, keyed by the
// browser's session cookie.
type Session struct {
	ID        string
	RequestID string
	Answer    int
	IssuedAt  time.Time
}

type Store interface {
	// Put replaces whatever challenge the session held before.
	Put(s Session)
	Get(id string) (Session, bool)
	Delete(id string)
}

type LRUStore struct {
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewLRUStore(capacity int, ttl time.Duration) (*LRUStore, error) {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge cache: %w", err)
	}
	return &LRUStore{cache: cache, ttl: ttl, now: time.Now}, nil
}

func (s *LRUStore) WithClock(now func() time.Time) *LRUStore {
	s.now = now
	return s
}

func (s *LRUStore) Put(session Session) {
	s.cache.Add(session.ID, session)
}

func (s *LRUStore) Get(id string) (Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return Session{}, false
	}
	session := v.(Session)
	if s.now().Sub(session.IssuedAt) >= s.ttl {
		s.cache.Remove(id)
		return Session{}, false
	}
	return session, true
}

func (s *LRUStore) Delete(id string) {
	s.cache.Remove(id)
}

func (s *LRUStore) Len() int {
	return s.cache.Len()
}

// NewSessionID returns 32 random hex characters.
func NewSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
