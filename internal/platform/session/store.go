package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskdiary/internal/common"

	"github.com/redis/go-redis/v9"
)

// Store is the server-side session registry: session id -> user id. A token
// whose sid is no longer registered is dead, regardless of its exp claim,
// which is what makes logout immediate.
type Store interface {
	Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (s *redisStore) Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKey(sessionID), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redisStore.Put: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("redisStore.Get: %w", err)
	}
	return userID, nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redisStore.Delete: %w", err)
	}
	return nil
}
