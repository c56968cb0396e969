package session

import (
	"sync"
	"testing"
	"time"

	"github.com/rhuss/adminguard/pkg/auth"
)

func newTestStore(max int) (*Store, *time.Time) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := New(Config{
		IdleTimeout: 10 * time.Minute,
		MaxSessions: max,
		Now:         func() time.Time { return now },
	})
	return s, &now
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestStore(10)
	id := s.Create(&auth.Principal{Username: "admin", Authorities: []string{"ROLE_ADMIN"}})

	p, ok := s.Get(id)
	if !ok {
		t.Fatal("session not found")
	}
	if p.Username != "admin" || !p.HasAuthority("ROLE_ADMIN") {
		t.Errorf("Principal = %+v", p)
	}

	if _, ok := s.Get("unknown"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(10)
	orig := &auth.Principal{Username: "admin", Authorities: []string{"ROLE_ADMIN"}}
	id := s.Create(orig)
	orig.Authorities[0] = "ROLE_CHANGED"

	p, _ := s.Get(id)
	p.Authorities[0] = "ROLE_OTHER"

	again, _ := s.Get(id)
	if again.Authorities[0] != "ROLE_ADMIN" {
		t.Errorf("stored principal was mutated: %v", again.Authorities)
	}
}

func TestIdleExpiry(t *testing.T) {
	s, now := newTestStore(10)
	id := s.Create(&auth.Principal{Username: "admin"})

	*now = now.Add(9 * time.Minute)
	if _, ok := s.Get(id); !ok {
		t.Fatal("session should still be alive")
	}

	// Access refreshed the timer.
	*now = now.Add(9 * time.Minute)
	if _, ok := s.Get(id); !ok {
		t.Fatal("refreshed session should still be alive")
	}

	*now = now.Add(10 * time.Minute)
	if _, ok := s.Get(id); ok {
		t.Fatal("idle session should have expired")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, expired session should be removed", s.Len())
	}
}

func TestInvalidate(t *testing.T) {
	s, _ := newTestStore(10)
	id := s.Create(&auth.Principal{Username: "admin"})

	s.Invalidate(id)
	s.Invalidate("unknown")

	if _, ok := s.Get(id); ok {
		t.Error("invalidated session should not resolve")
	}
}

func TestLRUEviction(t *testing.T) {
	s, _ := newTestStore(2)
	a := s.Create(&auth.Principal{Username: "a"})
	b := s.Create(&auth.Principal{Username: "b"})

	// Touch a so b becomes the oldest.
	s.Get(a)
	c := s.Create(&auth.Principal{Username: "c"})

	if _, ok := s.Get(b); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := s.Get(a); !ok {
		t.Error("a should survive")
	}
	if _, ok := s.Get(c); !ok {
		t.Error("c should survive")
	}
}

func TestUniqueIDs(t *testing.T) {
	s, _ := newTestStore(1000)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := s.Create(&auth.Principal{Username: "admin"})
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(Config{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := s.Create(&auth.Principal{Username: "admin"})
				s.Get(id)
				s.Invalidate(id)
			}
		}()
	}
	wg.Wait()
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}
