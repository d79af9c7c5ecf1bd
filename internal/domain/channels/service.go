package channels

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sahilm/fuzzy"
)

type Options struct {
	IdentityMaxDigits int
	DedupeOnAppend    bool
}

type Service struct {
	repository Repository
	opts       Options
	now        func() time.Time
}

func NewService(repository Repository, opts Options) *Service {
	if opts.IdentityMaxDigits <= 0 {
		opts.IdentityMaxDigits = DefaultIdentityMaxDigits
	}
	return &Service{
		repository: repository,
		opts:       opts,
		now:        time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RegisterChannel records ownership when the bot gains administrator rights.
func (s *Service) RegisterChannel(ctx context.Context, channel Channel) error {
	if channel.RegisteredAt.IsZero() {
		channel.RegisteredAt = s.now().UTC()
	}
	if err := s.repository.UpsertChannel(ctx, channel); err != nil {
		return fmt.Errorf("failed to register channel %s: %w", channel.ID, err)
	}
	return nil
}

// UnregisterChannel drops the owned-channels entry. The config is kept so the
// deny lists survive the bot being re-added.
func (s *Service) UnregisterChannel(ctx context.Context, channelID snowflake.ID) error {
	if err := s.repository.DeleteChannel(ctx, channelID); err != nil && !errors.Is(err, ErrChannelNotFound) {
		return fmt.Errorf("failed to unregister channel %s: %w", channelID, err)
	}
	return nil
}

func (s *Service) Channel(ctx context.Context, channelID snowflake.ID) (Channel, error) {
	return s.repository.GetChannel(ctx, channelID)
}

func (s *Service) OwnedChannels(ctx context.Context, ownerID snowflake.ID) ([]Channel, error) {
	owned, err := s.repository.ListChannelsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels of %s: %w", ownerID, err)
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return strings.ToLower(owned[i].Title) < strings.ToLower(owned[j].Title)
	})
	return owned, nil
}

type channelTitles []Channel

func (c channelTitles) String(i int) string { return c[i].Title }
func (c channelTitles) Len() int            { return len(c) }

// SearchOwnedChannels fuzzy matches query against the titles of the owner's
// channels, best match first. An empty query returns the first limit channels.
func (s *Service) SearchOwnedChannels(ctx context.Context, ownerID snowflake.ID, query string, limit int) ([]Channel, error) {
	owned, err := s.OwnedChannels(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if limit > 0 && len(owned) > limit {
			owned = owned[:limit]
		}
		return owned, nil
	}

	matches := fuzzy.FindFrom(query, channelTitles(owned))
	results := make([]Channel, 0, len(matches))
	for _, m := range matches {
		results = append(results, owned[m.Index])
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

// Config returns the current settings. A channel nobody configured yet is
// reported as unprotected with empty lists.
func (s *Service) Config(ctx context.Context, channelID snowflake.ID) (Config, error) {
	cfg, err := s.repository.GetConfig(ctx, channelID)
	if errors.Is(err, ErrConfigNotFound) {
		return Config{ChannelID: channelID}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config of %s: %w", channelID, err)
	}
	return cfg, nil
}

func (s *Service) authorize(ctx context.Context, actorID, channelID snowflake.ID) (Channel, error) {
	channel, err := s.repository.GetChannel(ctx, channelID)
	if err != nil {
		return Channel{}, err
	}
	if channel.OwnerID != actorID {
		return Channel{}, ErrNotOwner
	}
	return channel, nil
}

// SetProtection toggles captcha protection. Enabling records the owner.
func (s *Service) SetProtection(ctx context.Context, actorID, channelID snowflake.ID, enabled bool) error {
	channel, err := s.authorize(ctx, actorID, channelID)
	if err != nil {
		return err
	}
	return s.repository.SetProtection(ctx, channelID, channel.OwnerID, enabled, s.now().UTC())
}

func (s *Service) SetAddressList(ctx context.Context, actorID, channelID snowflake.ID, lines []string, mode ListMode) (ListResult, error) {
	return s.setList(ctx, actorID, channelID, ListAddresses, ParseAddresses(lines), mode)
}

func (s *Service) SetIdentityList(ctx context.Context, actorID, channelID snowflake.ID, lines []string, mode ListMode) (ListResult, error) {
	return s.setList(ctx, actorID, channelID, ListIdentities, ParseIdentities(lines, s.opts.IdentityMaxDigits), mode)
}

func (s *Service) setList(ctx context.Context, actorID, channelID snowflake.ID, kind ListKind, result ListResult, mode ListMode) (ListResult, error) {
	channel, err := s.authorize(ctx, actorID, channelID)
	if err != nil {
		return ListResult{}, err
	}

	if len(result.Accepted) == 0 {
		return result, &ValidationError{Kind: kind, Invalid: result.Invalid}
	}

	now := s.now().UTC()
	switch mode {
	case ModeOverwrite:
		err = s.repository.ReplaceList(ctx, channelID, channel.OwnerID, kind, result.Accepted, now)
	case ModeAppend:
		values := result.Accepted
		if s.opts.DedupeOnAppend {
			values, err = s.withoutExisting(ctx, channelID, kind, values)
			if err != nil {
				return ListResult{}, err
			}
		}
		if len(values) == 0 {
			return result, nil
		}
		err = s.repository.AppendList(ctx, channelID, channel.OwnerID, kind, values, now)
	default:
		return ListResult{}, fmt.Errorf("unknown list mode %d", mode)
	}
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to update %s of %s: %w", kind, channelID, err)
	}
	return result, nil
}

func (s *Service) withoutExisting(ctx context.Context, channelID snowflake.ID, kind ListKind, values []string) ([]string, error) {
	cfg, err := s.Config(ctx, channelID)
	if err != nil {
		return nil, err
	}
	current := cfg.BannedAddresses
	if kind == ListIdentities {
		current = cfg.BannedIdentities
	}

	seen := make(map[string]struct{}, len(current)+len(values))
	for _, v := range current {
		seen[v] = struct{}{}
	}
	fresh := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		fresh = append(fresh, v)
	}
	return fresh, nil
}

func (s *Service) ClearAddressList(ctx context.Context, actorID, channelID snowflake.ID) error {
	return s.clearList(ctx, actorID, channelID, ListAddresses)
}

func (s *Service) ClearIdentityList(ctx context.Context, actorID, channelID snowflake.ID) error {
	return s.clearList(ctx, actorID, channelID, ListIdentities)
}

func (s *Service) clearList(ctx context.Context, actorID, channelID snowflake.ID, kind ListKind) error {
	channel, err := s.authorize(ctx, actorID, channelID)
	if err != nil {
		return err
	}
	if err := s.repository.ReplaceList(ctx, channelID, channel.OwnerID, kind, []string{}, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to clear %s of %s: %w", kind, channelID, err)
	}
	return nil
}
