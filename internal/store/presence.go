package store

import (
	"context"
	"log"
	"math/rand"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

// PresenceStrategy decides, on each presence tick, whether another user's online
// flag flips.
type PresenceStrategy interface {
	ShouldToggle(u models.User) bool
}

// PresenceFunc adapts a function to PresenceStrategy.
type PresenceFunc func(u models.User) bool

func (f PresenceFunc) ShouldToggle(u models.User) bool { return f(u) }

// RandomPresence flips each user independently with the given probability.
type RandomPresence struct {
	Probability float64
}

func (r RandomPresence) ShouldToggle(models.User) bool {
	return rand.Float64() < r.Probability
}

// SimulatePresence runs one presence tick on behalf of currentUserID: the current
// user's last-seen is refreshed and every other user is offered to the strategy.
func (s *Store) SimulatePresence(ctx context.Context, currentUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simulatePresenceLocked(ctx, currentUserID)
}

func (s *Store) simulatePresenceLocked(ctx context.Context, currentUserID string) error {
	current := s.userIndex(currentUserID)
	if current < 0 {
		return &NotFoundError{Kind: "user", ID: currentUserID}
	}
	now := models.At(s.clock.Now())
	s.users[current].LastSeen = now

	for i := range s.users {
		if i == current {
			continue
		}
		if !s.presence.ShouldToggle(s.users[i]) {
			continue
		}
		s.users[i].IsOnline = !s.users[i].IsOnline
		s.users[i].LastSeen = now
		pub := s.users[i].Public()
		s.notifier.Publish(Event{Type: EventPresence, User: &pub})
	}
	return s.saveLocked(ctx)
}

// StartPresence begins the periodic presence tick for a logged-in user. Calling it
// again for the same user is a no-op.
func (s *Store) StartPresence(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.presenceInterval <= 0 {
		return
	}
	if _, running := s.presenceLoops[userID]; running {
		return
	}
	s.schedulePresenceLocked(userID)
}

// presenceLoop is one login's tick chain. A tick only reschedules while its loop
// is still the one registered for the user.
type presenceLoop struct {
	timer Timer
}

func (s *Store) schedulePresenceLocked(userID string) {
	loop := &presenceLoop{}
	s.presenceLoops[userID] = loop
	s.armPresenceLocked(userID, loop)
}

func (s *Store) armPresenceLocked(userID string, loop *presenceLoop) {
	loop.timer = s.scheduler.AfterFunc(s.presenceInterval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.presenceLoops[userID] != loop {
			return
		}
		if err := s.simulatePresenceLocked(context.Background(), userID); err != nil {
			log.Printf("store: presence tick for %s: %v", userID, err)
		}
		s.armPresenceLocked(userID, loop)
	})
}

// StopPresence cancels the presence tick for userID.
func (s *Store) StopPresence(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPresenceLocked(userID)
}

func (s *Store) stopPresenceLocked(userID string) {
	if loop, ok := s.presenceLoops[userID]; ok {
		loop.timer.Stop()
		delete(s.presenceLoops, userID)
	}
}

// PresenceRunning reports whether a presence tick is scheduled for userID.
func (s *Store) PresenceRunning(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.presenceLoops[userID]
	return ok
}
