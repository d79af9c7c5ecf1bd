package menu

import (
	"errors"
	"testing"

	"github.com/gatekeep/shield/internal/domain/channels"
)

func TestAction_CustomIDRoundTrip(t *testing.T) {
	for _, kind := range Kinds() {
		for _, mode := range []channels.ListMode{channels.ModeOverwrite, channels.ModeAppend} {
			a := Action{Kind: kind, ChannelID: 123456789012345678, Mode: mode}
			got, err := ParseCustomID(a.CustomID())
			if err != nil {
				t.Fatalf("ParseCustomID(%q) error = %v", a.CustomID(), err)
			}
			if got != a {
				t.Errorf("ParseCustomID(%q) = %+v, want %+v", a.CustomID(), got, a)
			}
		}
	}
}

func TestParseCustomID_Invalid(t *testing.T) {
	tests := []string{
		"",
		"/menu/",
		"/menu/explode/1/0",
		"/menu/open/abc/0",
		"/menu/open/1/7",
		"/menu/open/1",
		"/other/open/1/0",
	}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			if _, err := ParseCustomID(id); !errors.Is(err, ErrInvalidAction) {
				t.Errorf("ParseCustomID(%q) error = %v, want ErrInvalidAction", id, err)
			}
		})
	}
}

func TestKinds_HaveNames(t *testing.T) {
	for _, k := range Kinds() {
		if k.String() == "" || k.String() == "unknown" {
			t.Errorf("ActionKind(%d) has no name", k)
		}
	}
	if len(Kinds()) != int(actionKindCount) {
		t.Errorf("Kinds() = %d entries", len(Kinds()))
	}
}
