package session

import (
	"testing"
	"time"
)

func TestCreateAndResolve(t *testing.T) {
	r := NewRegistry(DefaultTTL)

	token := r.Create("u1")
	if token == "" {
		t.Fatal("Create() returned an empty token")
	}

	userID, ok := r.Resolve(token)
	if !ok {
		t.Fatal("Resolve() failed for a freshly created token")
	}
	if userID != "u1" {
		t.Errorf("Resolve() userID = %q, want %q", userID, "u1")
	}
}

func TestTokensAreUnique(t *testing.T) {
	r := NewRegistry(DefaultTTL)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token := r.Create("u1")
		if seen[token] {
			t.Fatalf("Create() produced duplicate token %q", token)
		}
		seen[token] = true
	}
}

func TestResolveUnknownToken(t *testing.T) {
	r := NewRegistry(DefaultTTL)

	if _, ok := r.Resolve("no-such-token"); ok {
		t.Error("Resolve() accepted an unknown token")
	}
}

func TestDestroy(t *testing.T) {
	r := NewRegistry(DefaultTTL)

	token := r.Create("u1")
	r.Destroy(token)

	if _, ok := r.Resolve(token); ok {
		t.Error("Resolve() accepted a destroyed token")
	}

	// Destroying again must not panic.
	r.Destroy(token)
}

func TestDestroyAllForUser(t *testing.T) {
	r := NewRegistry(DefaultTTL)

	t1 := r.Create("u1")
	t2 := r.Create("u1")
	other := r.Create("u2")

	r.DestroyAllForUser("u1")

	if _, ok := r.Resolve(t1); ok {
		t.Error("first token for u1 survived DestroyAllForUser")
	}
	if _, ok := r.Resolve(t2); ok {
		t.Error("second token for u1 survived DestroyAllForUser")
	}
	if _, ok := r.Resolve(other); !ok {
		t.Error("token for u2 was destroyed by DestroyAllForUser(u1)")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)

	token := r.Create("u1")
	time.Sleep(20 * time.Millisecond)

	if _, ok := r.Resolve(token); ok {
		t.Error("Resolve() accepted an expired token")
	}
}

func TestFreshRegistryResolvesNothing(t *testing.T) {
	old := NewRegistry(DefaultTTL)
	token := old.Create("u1")

	// A new registry stands in for a restarted process.
	fresh := NewRegistry(DefaultTTL)
	if _, ok := fresh.Resolve(token); ok {
		t.Error("token from a previous registry resolved after restart")
	}
	if fresh.Count() != 0 {
		t.Errorf("fresh registry Count() = %d, want 0", fresh.Count())
	}
}
