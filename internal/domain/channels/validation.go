package channels

import (
	"net/netip"
	"strings"
)

// DefaultIdentityMaxDigits bounds identity length when no limit is configured.
const DefaultIdentityMaxDigits = 15

// SplitLines breaks modal or form input into lines, accepting \r\n endings.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// CanonicalAddress parses an IPv4 address and returns its dotted-quad form.
// IPv4-mapped IPv6 addresses are unmapped first.
func CanonicalAddress(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return "", false
	}
	return addr.String(), true
}

// CanonicalIdentity accepts 1..maxDigits ASCII digits and strips leading
// zeros, keeping a single "0" for the zero identity.
func CanonicalIdentity(s string, maxDigits int) (string, bool) {
	if maxDigits <= 0 {
		maxDigits = DefaultIdentityMaxDigits
	}
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > maxDigits {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return s, true
}

func ParseAddresses(lines []string) ListResult {
	return parseLines(lines, func(s string) (string, string) {
		canonical, ok := CanonicalAddress(s)
		if !ok {
			return "", "not an IPv4 address"
		}
		return canonical, ""
	})
}

func ParseIdentities(lines []string, maxDigits int) ListResult {
	if maxDigits <= 0 {
		maxDigits = DefaultIdentityMaxDigits
	}
	return parseLines(lines, func(s string) (string, string) {
		canonical, ok := CanonicalIdentity(s, maxDigits)
		if !ok {
			return "", "not a numeric id"
		}
		return canonical, ""
	})
}

func parseLines(lines []string, parse func(string) (string, string)) ListResult {
	var result ListResult
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		value, reason := parse(line)
		if reason != "" {
			result.Invalid = append(result.Invalid, InvalidEntry{Line: i + 1, Value: line, Reason: reason})
			continue
		}
		result.Accepted = append(result.Accepted, value)
	}
	return result
}
