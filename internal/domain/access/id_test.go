package access

import (
	"testing"
	"time"
)

func TestDeriveID(t *testing.T) {
	at := time.Unix(1700000000, 0)
	a := deriveID(at, 1, 2, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	b := deriveID(at, 1, 2, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	c := deriveID(at, 1, 2, []byte{8, 7, 6, 5, 4, 3, 2, 1})

	if a != b {
		t.Errorf("deriveID() not deterministic: %s != %s", a, b)
	}
	if a == c {
		t.Errorf("deriveID() ignored salt")
	}
	if !ValidID(a) {
		t.Errorf("ValidID(%q) = false", a)
	}
}

func TestShortID(t *testing.T) {
	id := deriveID(time.Unix(1700000000, 0), 1, 2, []byte{1})
	if got := ShortID(id); got != id[:12] {
		t.Errorf("ShortID() = %q, want %q", got, id[:12])
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID(short) = %q", got)
	}
}
