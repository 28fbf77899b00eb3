package store

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

func onlyUser(id string) PresenceStrategy {
	return PresenceFunc(func(u models.User) bool { return u.ID == id })
}

func TestSimulatePresenceIsDeterministic(t *testing.T) {
	env := newTestEnv(t, Options{Presence: onlyUser("user3")})
	env.clock.Advance(10 * time.Second)

	if err := env.store.SimulatePresence(context.Background(), "user1"); err != nil {
		t.Fatal(err)
	}

	mike, _ := env.store.User("user3")
	if !mike.IsOnline {
		t.Error("user3 should have flipped online")
	}
	if !mike.LastSeen.Equal(env.clock.Now()) {
		t.Errorf("user3 lastSeen = %v", mike.LastSeen)
	}
	john, _ := env.store.User("user1")
	if !john.LastSeen.Equal(env.clock.Now()) {
		t.Error("current user's lastSeen should be refreshed")
	}
	jane, _ := env.store.User("user2")
	if jane.IsOnline {
		t.Error("user2 should be untouched")
	}
}

func TestSimulatePresenceNeverTogglesCurrentUser(t *testing.T) {
	env := newTestEnv(t, Options{Presence: PresenceFunc(func(models.User) bool { return true })})

	if err := env.store.SimulatePresence(context.Background(), "user1"); err != nil {
		t.Fatal(err)
	}
	john, _ := env.store.User("user1")
	if !john.IsOnline {
		t.Error("current user must stay online")
	}
	admin, _ := env.store.User("admin")
	if admin.IsOnline {
		t.Error("admin should have flipped offline")
	}
}

func TestPresenceLoopFollowsLogin(t *testing.T) {
	env := newTestEnv(t, Options{Presence: onlyUser("user3")})
	ctx := context.Background()

	if _, err := env.store.Authenticate(ctx, "john@company.com", "password123"); err != nil {
		t.Fatal(err)
	}
	if !env.store.PresenceRunning("user1") {
		t.Fatal("presence should start on login")
	}

	env.clock.Advance(DefaultPresenceInterval)
	if mike, _ := env.store.User("user3"); !mike.IsOnline {
		t.Fatal("first tick should flip user3 online")
	}
	env.clock.Advance(DefaultPresenceInterval)
	if mike, _ := env.store.User("user3"); mike.IsOnline {
		t.Fatal("second tick should flip user3 back offline")
	}

	if err := env.store.Logout(ctx, "user1"); err != nil {
		t.Fatal(err)
	}
	if env.store.PresenceRunning("user1") {
		t.Fatal("presence should stop on logout")
	}
	env.clock.Advance(DefaultPresenceInterval)
	if mike, _ := env.store.User("user3"); mike.IsOnline {
		t.Error("no tick should run after logout")
	}
}

func TestStaleTickAfterReloginKeepsOneLoop(t *testing.T) {
	env := newTestEnv(t, Options{Presence: onlyUser("user3")})
	ctx := context.Background()

	if _, err := env.store.Authenticate(ctx, "john@company.com", "password123"); err != nil {
		t.Fatal(err)
	}
	first := env.clock.armed()
	if len(first) != 1 {
		t.Fatalf("armed timers after login = %d, want 1", len(first))
	}
	staleTick := first[0]

	// the first login's tick is already in flight when the user logs out and back in
	if err := env.store.Logout(ctx, "user1"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.store.Authenticate(ctx, "john@company.com", "password123"); err != nil {
		t.Fatal(err)
	}
	staleTick()

	if n := len(env.clock.armed()); n != 1 {
		t.Fatalf("armed timers after stale tick = %d, want 1", n)
	}
	if mike, _ := env.store.User("user3"); mike.IsOnline {
		t.Error("stale tick should not have simulated presence")
	}

	if err := env.store.Logout(ctx, "user1"); err != nil {
		t.Fatal(err)
	}
	if n := len(env.clock.armed()); n != 0 {
		t.Fatalf("armed timers after logout = %d, want 0", n)
	}
	env.clock.Advance(DefaultPresenceInterval)
	if mike, _ := env.store.User("user3"); mike.IsOnline {
		t.Error("no tick should run after logout")
	}
}

func TestStartPresenceTwiceKeepsOneLoop(t *testing.T) {
	env := newTestEnv(t, Options{Presence: onlyUser("user3")})

	env.store.StartPresence("user2")
	env.store.StartPresence("user2")
	env.clock.Advance(DefaultPresenceInterval)

	if mike, _ := env.store.User("user3"); !mike.IsOnline {
		t.Error("a single tick should have run, leaving user3 online")
	}
}

func TestRandomPresenceBounds(t *testing.T) {
	never := RandomPresence{Probability: 0}
	always := RandomPresence{Probability: 1}
	for i := 0; i < 100; i++ {
		if never.ShouldToggle(models.User{}) {
			t.Fatal("probability 0 toggled")
		}
		if !always.ShouldToggle(models.User{}) {
			t.Fatal("probability 1 did not toggle")
		}
	}
}
