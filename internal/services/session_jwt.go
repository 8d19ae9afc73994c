package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type sessionClaims struct {
	jwt.RegisteredClaims
}

// JWTSessionStore issues stateless HS256 session tokens. Logout revokes the
// token id in memory until the token would have expired anyway, so a
// revocation does not survive a restart.
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewJWTSessionStore(secret string, ttl time.Duration) *JWTSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	return &JWTSessionStore{secret: []byte(secret), ttl: ttl, now: time.Now, revoked: map[string]time.Time{}}
}

func (s *JWTSessionStore) Create(_ context.Context, userID int64) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (s *JWTSessionStore) Validate(_ context.Context, token string) (int64, error) {
	claims, err := s.parse(token)
	if err != nil {
		return 0, ErrInvalidSession
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return 0, ErrInvalidSession
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidSession
	}
	return id, nil
}

func (s *JWTSessionStore) Invalidate(_ context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	if claims.ExpiresAt != nil {
		s.revoked[claims.ID] = claims.ExpiresAt.Time
	}
	return nil
}

func (s *JWTSessionStore) parse(token string) (*sessionClaims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}
