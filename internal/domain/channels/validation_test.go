package channels

import (
	"reflect"
	"testing"
)

func TestCanonicalAddress(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"10.0.0.1", "10.0.0.1", true},
		{"  192.168.1.20 ", "192.168.1.20", true},
		{"::ffff:1.2.3.4", "1.2.3.4", true},
		{"300.1.1.1", "", false},
		{"not-an-ip", "", false},
		{"2001:db8::1", "", false},
		{"10.0.0.0/8", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalAddress(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CanonicalAddress(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCanonicalIdentity(t *testing.T) {
	tests := []struct {
		in     string
		max    int
		want   string
		wantOK bool
	}{
		{"12345", 15, "12345", true},
		{"000123", 15, "123", true},
		{"0000", 15, "0", true},
		{"123456789012345", 15, "123456789012345", true},
		{"1234567890123456", 15, "", false},
		{"12a45", 15, "", false},
		{"-12", 15, "", false},
		{"1234567890123456789", 20, "1234567890123456789", true},
		{"", 15, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalIdentity(tt.in, tt.max)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CanonicalIdentity(%q, %d) = %q, %v, want %q, %v", tt.in, tt.max, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseAddresses(t *testing.T) {
	got := ParseAddresses([]string{"10.0.0.1", "not-an-ip", "", "300.1.1.1"})

	if !reflect.DeepEqual(got.Accepted, []string{"10.0.0.1"}) {
		t.Errorf("ParseAddresses() accepted = %v", got.Accepted)
	}
	wantInvalid := []InvalidEntry{
		{Line: 2, Value: "not-an-ip", Reason: "not an IPv4 address"},
		{Line: 4, Value: "300.1.1.1", Reason: "not an IPv4 address"},
	}
	if !reflect.DeepEqual(got.Invalid, wantInvalid) {
		t.Errorf("ParseAddresses() invalid = %v, want %v", got.Invalid, wantInvalid)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("1.1.1.1\r\n2.2.2.2\n")
	want := []string{"1.1.1.1", "2.2.2.2", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines() = %q, want %q", got, want)
	}
}

func TestConfig_Bans(t *testing.T) {
	cfg := Config{
		BannedAddresses:  []string{"1.2.3.4"},
		BannedIdentities: []string{"555"},
	}

	if !cfg.BansAddress("::ffff:1.2.3.4") {
		t.Error("BansAddress() should match mapped form")
	}
	if cfg.BansAddress("1.2.3.40") {
		t.Error("BansAddress() must not prefix match")
	}
	if cfg.BansAddress("garbage") {
		t.Error("BansAddress() matched an invalid address")
	}
	if !cfg.BansIdentity(555) {
		t.Error("BansIdentity() missed banned id")
	}
	if cfg.BansIdentity(5550) {
		t.Error("BansIdentity() must be exact")
	}
}
