// Package store owns the messenger's application state: users, groups, messages
// and the settings singleton. Every mutation is written back to the durable
// key-value store before the operation returns.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/company-messenger/internal/database"
	"github.com/AnshRaj112/company-messenger/internal/models"
	"github.com/AnshRaj112/company-messenger/pkg/utils"
)

// Default timings.
const (
	DefaultDeliveredDelay   = 1 * time.Second
	DefaultReadDelay        = 3 * time.Second
	DefaultPresenceInterval = 30 * time.Second
	DefaultAutoSaveInterval = 30 * time.Second
	DefaultPresenceFlip     = 0.1
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Passwords        utils.PasswordHasher
	Clock            Clock
	Scheduler        Scheduler
	Presence         PresenceStrategy
	Notifier         Notifier
	DeliveredDelay   time.Duration
	ReadDelay        time.Duration
	PresenceInterval time.Duration
}

// Store is safe for concurrent use; operations are serialised by one mutex.
type Store struct {
	mu sync.Mutex

	kv        database.KV
	passwords utils.PasswordHasher
	clock     Clock
	scheduler Scheduler
	presence  PresenceStrategy
	notifier  Notifier

	deliveredDelay   time.Duration
	readDelay        time.Duration
	presenceInterval time.Duration

	users    []models.User
	groups   []models.Group
	messages []models.ChatMessage
	settings models.Settings

	statusTimers  map[string]*statusTimers
	presenceLoops map[string]*presenceLoop
	lastIDMillis  int64
	closed        bool
}

// New builds a Store on top of kv. Call Init before use.
func New(kv database.KV, opts Options) *Store {
	s := &Store{
		kv:               kv,
		passwords:        opts.Passwords,
		clock:            opts.Clock,
		scheduler:        opts.Scheduler,
		presence:         opts.Presence,
		notifier:         opts.Notifier,
		deliveredDelay:   opts.DeliveredDelay,
		readDelay:        opts.ReadDelay,
		presenceInterval: opts.PresenceInterval,
		statusTimers:     make(map[string]*statusTimers),
		presenceLoops:    make(map[string]*presenceLoop),
	}
	if s.passwords == nil {
		s.passwords = utils.PlainHasher{}
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.scheduler == nil {
		s.scheduler = systemScheduler{}
	}
	if s.presence == nil {
		s.presence = RandomPresence{Probability: DefaultPresenceFlip}
	}
	if s.notifier == nil {
		s.notifier = discardNotifier{}
	}
	if s.deliveredDelay == 0 {
		s.deliveredDelay = DefaultDeliveredDelay
	}
	if s.readDelay == 0 {
		s.readDelay = DefaultReadDelay
	}
	if s.presenceInterval == 0 {
		s.presenceInterval = DefaultPresenceInterval
	}
	return s
}

// Init seeds the demo dataset when the users key is absent and then loads all four
// collections. Running it against an already seeded store changes nothing.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.kv.Get(ctx, KeyUsers)
	switch {
	case errors.Is(err, database.ErrNotFound):
		seed := seedData(s.clock.Now())
		s.users, s.groups, s.messages, s.settings = seed.users, seed.groups, seed.messages, seed.settings
		if err := s.saveLocked(ctx); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
		log.Println("✅ Seeded demo dataset")
	case err != nil:
		return fmt.Errorf("read %s: %w", KeyUsers, err)
	}

	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	var (
		users    []models.User
		groups   []models.Group
		messages []models.ChatMessage
		settings models.Settings
	)
	if err := s.loadKey(ctx, KeyUsers, &users); err != nil {
		return err
	}
	if err := s.loadKey(ctx, KeyGroups, &groups); err != nil {
		return err
	}
	if err := s.loadKey(ctx, KeyMessages, &messages); err != nil {
		return err
	}
	if err := s.loadKey(ctx, KeySettings, &settings); err != nil {
		return err
	}
	s.users, s.groups, s.messages, s.settings = users, groups, messages, settings
	return nil
}

// loadKey decodes key into dest; a missing key leaves dest at its zero value.
func (s *Store) loadKey(ctx context.Context, key string, dest any) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Save writes all four collections.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	docs := []struct {
		key   string
		value any
	}{
		{KeyUsers, nonNil(s.users)},
		{KeyGroups, nonNil(s.groups)},
		{KeyMessages, nonNil(s.messages)},
		{KeySettings, s.settings},
	}
	for _, d := range docs {
		raw, err := json.Marshal(d.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.key, err)
		}
		if err := s.kv.Set(ctx, d.key, raw); err != nil {
			return fmt.Errorf("write %s: %w", d.key, err)
		}
	}
	return nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// RunAutoSave saves every interval until ctx is cancelled.
func (s *Store) RunAutoSave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Save(ctx); err != nil {
				log.Printf("store: auto-save failed: %v", err)
			}
		}
	}
}

// Close cancels pending status timers and presence ticks. The in-memory state
// stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, st := range s.statusTimers {
		st.stop()
		delete(s.statusTimers, id)
	}
	for id := range s.presenceLoops {
		s.stopPresenceLocked(id)
	}
}

// nextID returns prefix + a millisecond stamp that never repeats within this store.
func (s *Store) nextID(prefix string) string {
	ms := s.clock.Now().UnixMilli()
	if ms <= s.lastIDMillis {
		ms = s.lastIDMillis + 1
	}
	s.lastIDMillis = ms
	return prefix + strconv.FormatInt(ms, 10)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) groupIndex(id string) int {
	for i := range s.groups {
		if s.groups[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) messageIndex(id string) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) requireAdminLocked(actorID string) error {
	i := s.userIndex(actorID)
	if i < 0 || !s.users[i].IsAdmin {
		return &AuthError{Reason: NotAdministrator}
	}
	return nil
}

// User returns a copy of the user with the given id.
func (s *Store) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return models.User{}, false
	}
	return cloneUser(s.users[i]), true
}

// Users returns a copy of every user in insertion order.
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	for i, u := range s.users {
		out[i] = cloneUser(u)
	}
	return out
}

// Group returns a copy of the group with the given id.
func (s *Store) Group(id string) (models.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.groupIndex(id)
	if i < 0 {
		return models.Group{}, false
	}
	return cloneGroup(s.groups[i]), true
}

// Groups returns a copy of every group.
func (s *Store) Groups() []models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = cloneGroup(g)
	}
	return out
}

// Message returns a copy of the message with the given id.
func (s *Store) Message(id string) (models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.messageIndex(id)
	if i < 0 {
		return models.ChatMessage{}, false
	}
	return cloneMessage(s.messages[i]), true
}

// Settings returns a copy of the settings singleton.
func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSettings(s.settings)
}

func cloneUser(u models.User) models.User {
	if u.PasswordChanged != nil {
		v := *u.PasswordChanged
		u.PasswordChanged = &v
	}
	return u
}

func cloneGroup(g models.Group) models.Group {
	g.Members = append([]string(nil), g.Members...)
	return g
}

func cloneMessage(m models.ChatMessage) models.ChatMessage {
	m.Mentions = append([]string{}, m.Mentions...)
	return m
}

func cloneSettings(st models.Settings) models.Settings {
	st.AllowedIPs = append([]string(nil), st.AllowedIPs...)
	if st.DisableUntil != nil {
		v := *st.DisableUntil
		st.DisableUntil = &v
	}
	return st
}
