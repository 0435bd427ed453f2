package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"certgate/internal/util"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Session is one live login, stored in Redis under session:<id> with a TTL.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the server-side session registry. Keeping sessions in Redis (not
// just in signed tokens) is what allows logout to revoke a token and login to
// enumerate live sessions for the single-session rule.
type Store interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	ActiveSessionForUser(ctx context.Context, userID string) (*Session, error)
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Create registers a new session with the given TTL.
func (s *redisStore) Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error) {
	sess := &Session{
		ID:        util.NewULID(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

// Get returns the session with the given id, or (nil, nil) if it is not live.
func (s *redisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session. Deleting a session that no longer exists is not
// an error, which keeps logout idempotent.
func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ActiveSessionForUser scans all live sessions and returns the first one
// belonging to the given user, or (nil, nil) when the user has none. Sessions
// that disappear or fail to decode mid-scan are skipped.
func (s *redisStore) ActiveSessionForUser(ctx context.Context, userID string) (*Session, error) {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if sess.UserID == userID {
			return &sess, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return nil, nil
}
