package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Next computes the screen an action leads to. It never touches storage.
func Next(s Session, a Action) (Session, error) {
	if a.Kind.Informational() {
		return s, nil
	}
	if a.Kind != ActionBack && a.ChannelID == 0 {
		return s, fmt.Errorf("%w: %s needs a channel", ErrInvalidAction, a.Kind)
	}

	next := s
	switch a.Kind {
	case ActionOpen, ActionProtectOn, ActionProtectOff,
		ActionClearAddresses, ActionClearIdentities, ActionShowLists:
		next.Screen = ScreenChannel
		next.ChannelID = a.ChannelID
	case ActionEditAddresses:
		next.Screen = ScreenAwaitAddresses
		next.ChannelID = a.ChannelID
		next.Mode = a.Mode
	case ActionEditIdentities:
		next.Screen = ScreenAwaitIdentities
		next.ChannelID = a.ChannelID
		next.Mode = a.Mode
	case ActionBack:
		switch s.Screen {
		case ScreenAwaitAddresses, ScreenAwaitIdentities:
			next.Screen = ScreenChannel
		default:
			next.Screen = ScreenChannels
			next.ChannelID = 0
		}
	default:
		return s, fmt.Errorf("%w: %d", ErrInvalidAction, a.Kind)
	}
	return next, nil
}

// Machine persists menu sessions with a sliding TTL.
type Machine struct {
	repository Repository
	ttl        time.Duration
	now        func() time.Time
}

func NewMachine(repository Repository, ttl time.Duration) *Machine {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Machine{repository: repository, ttl: ttl, now: time.Now}
}

func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// Start resets the admin to the channel list, as /config does.
func (m *Machine) Start(ctx context.Context, adminID snowflake.ID) (Session, error) {
	s := Session{AdminID: adminID, Screen: ScreenChannels, ExpiresAt: m.now().Add(m.ttl)}
	if err := m.repository.Put(ctx, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Current loads the live session, treating an expired one as missing.
func (m *Machine) Current(ctx context.Context, adminID snowflake.ID) (Session, error) {
	s, err := m.repository.Get(ctx, adminID)
	if err != nil {
		return Session{}, err
	}
	if !m.now().Before(s.ExpiresAt) {
		if err := m.repository.Delete(ctx, adminID); err != nil {
			slog.Warn("Failed to drop expired menu session",
				slog.String("type", "db"),
				slog.String("admin_id", adminID.String()),
				slog.Any("error", err),
			)
		}
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// Apply moves the admin's session along a. A missing session is started
// fresh since every button carries the channel it acts on.
func (m *Machine) Apply(ctx context.Context, adminID snowflake.ID, a Action) (Session, error) {
	s, err := m.Current(ctx, adminID)
	if errors.Is(err, ErrSessionNotFound) {
		s = Session{AdminID: adminID, Screen: ScreenChannels}
	} else if err != nil {
		return Session{}, err
	}

	next, err := Next(s, a)
	if err != nil {
		return Session{}, err
	}
	next.ExpiresAt = m.now().Add(m.ttl)
	if err := m.repository.Put(ctx, next); err != nil {
		return Session{}, err
	}
	return next, nil
}

// Expect checks that the admin is waiting for list input on channelID and
// moves them back to the channel screen.
func (m *Machine) Expect(ctx context.Context, adminID snowflake.ID, screen Screen, channelID snowflake.ID) (Session, error) {
	s, err := m.Current(ctx, adminID)
	if errors.Is(err, ErrSessionNotFound) {
		return Session{}, ErrStaleSession
	}
	if err != nil {
		return Session{}, err
	}
	if s.Screen != screen || s.ChannelID != channelID {
		return Session{}, ErrStaleSession
	}

	done := s
	done.Screen = ScreenChannel
	done.ExpiresAt = m.now().Add(m.ttl)
	if err := m.repository.Put(ctx, done); err != nil {
		return Session{}, err
	}
	return s, nil
}
