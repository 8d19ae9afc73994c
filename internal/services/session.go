package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSessionDuration is 7 days
	DefaultSessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// ErrInvalidSession covers missing, expired, revoked and forged tokens.
var ErrInvalidSession = errors.New("invalid session")

// SessionStore issues and resolves login sessions.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Validate(ctx context.Context, token string) (int64, error)
	Invalidate(ctx context.Context, token string) error
}

// RedisSessionStore keeps opaque tokens in Redis. A user has at most one
// live session: logging in again revokes the previous token and restarts
// the expiry timer.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, userID int64) (string, error) {
	uid := strconv.FormatInt(userID, 10)
	userSessionKey := UserSessionKeyPrefix + uid

	if old, err := s.client.Get(ctx, userSessionKey).Result(); err == nil && old != "" {
		s.client.Del(ctx, SessionKeyPrefix+old)
	}

	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+token, uid, s.ttl)
	pipe.Set(ctx, userSessionKey, token, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessionStore) Validate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}
	uid, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidSession
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	id, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return 0, ErrInvalidSession
	}
	return id, nil
}

func (s *RedisSessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sessionKey := SessionKeyPrefix + token
	if uid, err := s.client.Get(ctx, sessionKey).Result(); err == nil && uid != "" {
		s.client.Del(ctx, UserSessionKeyPrefix+uid)
	}
	return s.client.Del(ctx, sessionKey).Err()
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
