// Package session holds the redis-backed login sessions. A session
// carries the authenticated identity plus the user's CRM API key and an
// optional uploaded template, all under the same TTL so everything a
// user configured disappears together.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"welcome-packet-service/internal/common/database"
)

const (
	sessionKeyPrefix  = "wps:session:"
	templateKeyPrefix = "wps:template:"
)

// Session is one authenticated login.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	APIKey    string    `json:"apiKey,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

type Store struct {
	redis *database.RedisClient
	ttl   time.Duration
}

func NewStore(redisClient *database.RedisClient, ttl time.Duration) *Store {
	return &Store{redis: redisClient, ttl: ttl}
}

// Create issues a fresh session for an authenticated user.
func (s *Store) Create(ctx context.Context, username, name, email string) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session for id, or nil when missing or expired.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.redis.Get(ctx, sessionKeyPrefix+id)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, nil
	}
	return &sess, nil
}

// Save persists the session and slides its expiry forward.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	sess.ExpiresAt = time.Now().Add(s.ttl)

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+sess.ID, raw, s.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	// Keep an uploaded template alive as long as the session itself.
	_ = s.redis.Expire(ctx, templateKeyPrefix+sess.ID, s.ttl)
	return nil
}

// Delete removes the session and any uploaded template with it.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, sessionKeyPrefix+id, templateKeyPrefix+id)
}

// SetTemplate stores an uploaded template scoped to the session.
func (s *Store) SetTemplate(ctx context.Context, sessionID string, data []byte) error {
	if err := s.redis.Set(ctx, templateKeyPrefix+sessionID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to store template: %w", err)
	}
	return nil
}

// Template returns the uploaded template, or nil when none was uploaded.
func (s *Store) Template(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.redis.GetBytes(ctx, templateKeyPrefix+sessionID)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return data, nil
}

// ClearTemplate reverts the session to the on-disk default template.
func (s *Store) ClearTemplate(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, templateKeyPrefix+sessionID)
}
