package challenge

import (
	"testing"
	"time"
)

func TestLRUStore(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store, err := NewLRUStore(2, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	store.WithClock(func() time.Time { return now })

	store.Put(Session{ID: "a", RequestID: "r1", Answer: 1, IssuedAt: now})
	store.Put(Session{ID: "a", RequestID: "r1", Answer: 2, IssuedAt: now})

	got, ok := store.Get("a")
	if !ok || got.Answer != 2 {
		t.Fatalf("Get() = %+v, %v, want replaced answer 2", got, ok)
	}

	store.Put(Session{ID: "b", IssuedAt: now})
	store.Put(Session{ID: "c", IssuedAt: now})
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want capacity 2", store.Len())
	}

	store.Delete("c")
	if _, ok := store.Get("c"); ok {
		t.Error("Get() found deleted session")
	}

	now = now.Add(time.Hour)
	if _, ok := store.Get("b"); ok {
		t.Error("Get() returned an expired session")
	}
}

func TestNewSessionID(t *testing.T) {
	a, err := NewSessionID()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewSessionID()
	if len(a) != 32 || a == b {
		t.Errorf("NewSessionID() = %q, %q", a, b)
	}
}
