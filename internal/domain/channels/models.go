package channels

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Channel is an entry in the owned-channels index: a guild the bot
// administers together with the owner recorded when the bot joined it.
type Channel struct {
	ID              snowflake.ID
	OwnerID         snowflake.ID
	Title           string
	InviteChannelID snowflake.ID
	RegisteredAt    time.Time
}

// Config holds the protection settings and deny lists of one channel. Lists
// are kept in canonical form.
type Config struct {
	ChannelID        snowflake.ID
	OwnerID          snowflake.ID
	CaptchaOn        bool
	BannedAddresses  []string
	BannedIdentities []string
	UpdatedAt        time.Time
}

// BansAddress reports whether addr is on the address deny list. Matching is
// exact on the canonical dotted-quad form.
func (c Config) BansAddress(addr string) bool {
	canonical, ok := CanonicalAddress(addr)
	if !ok {
		return false
	}
	for _, banned := range c.BannedAddresses {
		if banned == canonical {
			return true
		}
	}
	return false
}

func (c Config) BansIdentity(id snowflake.ID) bool {
	canonical := id.String()
	for _, banned := range c.BannedIdentities {
		if banned == canonical {
			return true
		}
	}
	return false
}

type ListKind int

const (
	ListAddresses ListKind = iota
	ListIdentities
)

func (k ListKind) String() string {
	switch k {
	case ListAddresses:
		return "addresses"
	case ListIdentities:
		return "identities"
	default:
		return "unknown"
	}
}

type ListMode int

const (
	ModeOverwrite ListMode = iota
	ModeAppend
)

func (m ListMode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "overwrite"
}

// InvalidEntry describes one rejected input line. Line is 1-based.
type InvalidEntry struct {
	Line   int
	Value  string
	Reason string
}

// ListResult is the outcome of validating a batch of list input.
type ListResult struct {
	Accepted []string
	Invalid  []InvalidEntry
}
