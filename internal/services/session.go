package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// Sessions maps opaque bearer tokens to user ids. A user holds at most one
// session: creating a new one invalidates the previous token.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Validate(ctx context.Context, token string) (string, bool, error)
	Invalidate(ctx context.Context, token string) error
	InvalidateUser(ctx context.Context, userID string) error
}

func newSessionToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// RedisSessions keeps sessions in Redis with a 7-day expiry.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

// Create invalidates any existing session for the user (so the 7-day timer
// resets) and returns a fresh token.
func (s *RedisSessions) Create(ctx context.Context, userID string) (string, error) {
	if err := s.InvalidateUser(ctx, userID); err != nil {
		return "", err
	}

	sessionToken, err := newSessionToken()
	if err != nil {
		return "", err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+sessionToken, userID, SessionDuration)
	pipe.Set(ctx, UserSessionKeyPrefix+userID, sessionToken, SessionDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sessionToken, nil
}

// Validate returns the user id bound to token.
func (s *RedisSessions) Validate(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	userID, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

func (s *RedisSessions) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sessionKey := SessionKeyPrefix + token

	// Get user ID before deleting
	userID, err := s.client.Get(ctx, sessionKey).Result()
	if err == nil && userID != "" {
		s.client.Del(ctx, UserSessionKeyPrefix+userID)
	}
	return s.client.Del(ctx, sessionKey).Err()
}

// InvalidateUser drops the user's current session, if any.
func (s *RedisSessions) InvalidateUser(ctx context.Context, userID string) error {
	userSessionKey := UserSessionKeyPrefix + userID

	sessionToken, err := s.client.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		s.client.Del(ctx, SessionKeyPrefix+sessionToken)
	}
	return s.client.Del(ctx, userSessionKey).Err()
}

// MemorySessions is the single-process Sessions used when no Redis is configured.
type MemorySessions struct {
	mu      sync.Mutex
	now     func() time.Time
	byToken map[string]memorySession
	byUser  map[string]string
}

type memorySession struct {
	userID  string
	expires time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		now:     time.Now,
		byToken: make(map[string]memorySession),
		byUser:  make(map[string]string),
	}
}

func (s *MemorySessions) Create(_ context.Context, userID string) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byUser[userID]; ok {
		delete(s.byToken, old)
	}
	s.byToken[token] = memorySession{userID: userID, expires: s.now().Add(SessionDuration)}
	s.byUser[userID] = token
	return token, nil
}

func (s *MemorySessions) Validate(_ context.Context, token string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byToken[token]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(sess.expires) {
		delete(s.byToken, token)
		delete(s.byUser, sess.userID)
		return "", false, nil
	}
	return sess.userID, true, nil
}

func (s *MemorySessions) Invalidate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byToken[token]; ok {
		delete(s.byUser, sess.userID)
		delete(s.byToken, token)
	}
	return nil
}

func (s *MemorySessions) InvalidateUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.byUser[userID]; ok {
		delete(s.byToken, token)
		delete(s.byUser, userID)
	}
	return nil
}
