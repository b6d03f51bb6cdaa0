package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Flash is a one-shot user notice. Flashes are queued against a session (or
// a pre-login flash cookie) and drained into the next rendered view.
type Flash struct {
	Message  string `json:"message"`
	Severity string `json:"severity"` // "success" | "error"
}

type FlashStore interface {
	Push(ctx context.Context, key string, flash Flash) error
	Drain(ctx context.Context, key string) ([]Flash, error)
}

// Pending flashes do not outlive this window; a notice nobody fetched is
// not worth keeping.
const flashTTL = time.Hour

type redisFlashStore struct {
	rdb *redis.Client
}

func NewRedisFlashStore(rdb *redis.Client) FlashStore {
	return &redisFlashStore{rdb: rdb}
}

func flashKey(key string) string {
	return "flash:" + key
}

func (s *redisFlashStore) Push(ctx context.Context, key string, flash Flash) error {
	payload, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("redisFlashStore.Push marshal: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, flashKey(key), payload)
	pipe.Expire(ctx, flashKey(key), flashTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisFlashStore.Push: %w", err)
	}
	return nil
}

// Drain returns all queued flashes and clears them, so each notice is
// delivered at most once.
func (s *redisFlashStore) Drain(ctx context.Context, key string) ([]Flash, error) {
	pipe := s.rdb.TxPipeline()
	items := pipe.LRange(ctx, flashKey(key), 0, -1)
	pipe.Del(ctx, flashKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redisFlashStore.Drain: %w", err)
	}

	var flashes []Flash
	for _, raw := range items.Val() {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue // skip malformed leftovers
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
