package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kdacanay/wrc-leads/internal/csvimport"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "import:session:"

// RedisStore keeps import sessions in Redis so any API instance can resume a
// wizard. Expiry is left to Redis.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) Save(ctx context.Context, session *csvimport.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode import session: %w", err)
	}
	return s.Client.Set(ctx, keyPrefix+session.ID, data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*csvimport.Session, error) {
	data, err := s.Client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, csvimport.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session csvimport.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode import session %s: %w", id, err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.Client.Del(ctx, keyPrefix+id).Err()
}
