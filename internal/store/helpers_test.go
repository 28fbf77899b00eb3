package store

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/company-messenger/internal/database"
	"github.com/AnshRaj112/company-messenger/internal/models"
)

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// manualClock is both Clock and Scheduler; timers fire only on Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newManualClock() *manualClock {
	return &manualClock{now: testEpoch}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that came due, earliest first.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// armed returns the callbacks of timers that are neither stopped nor fired.
func (c *manualClock) armed() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.f)
		}
	}
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingNotifier) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) statusesOf(messageID string) []models.ChatMessageStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChatMessageStatus
	for _, e := range r.events {
		if e.Message != nil && e.Message.ID == messageID {
			out = append(out, e.Message.Status)
		}
	}
	return out
}

type testEnv struct {
	store    *Store
	kv       *database.MemoryKV
	clock    *manualClock
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	env := &testEnv{
		kv:       database.NewMemoryKV(),
		clock:    newManualClock(),
		notifier: &recordingNotifier{},
	}
	opts.Clock = env.clock
	opts.Scheduler = env.clock
	opts.Notifier = env.notifier
	if opts.Presence == nil {
		opts.Presence = PresenceFunc(func(models.User) bool { return false })
	}
	env.store = New(env.kv, opts)
	if err := env.store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(env.store.Close)
	return env
}
