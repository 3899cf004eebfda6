package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rtb-ict/devicehub/internal/model"
)

const (
	redisSessionPrefix = "devicehub:session:"
	redisPendingPrefix = "devicehub:pending:"
)

// RedisStore is a Store backend for multi-replica deployments where session
// state must be shared. Expiry rides on Redis TTLs, so DeleteExpired is a
// no-op.
type RedisStore struct {
	client *redis.Client
	sealer *Sealer
}

func NewRedisStore(client *redis.Client, sealer *Sealer) *RedisStore {
	return &RedisStore{client: client, sealer: sealer}
}

// redisSession is the marshaled record; the token is sealed before encoding.
type redisSession struct {
	Token []byte      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *RedisStore) Put(ctx context.Context, key string, sess Session, expiresAt time.Time) error {
	if !sess.Valid() {
		return fmt.Errorf("put session: token and user are both required")
	}
	sealed, err := s.sealer.Seal([]byte(sess.Token))
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	data, err := json.Marshal(redisSession{Token: sealed, User: sess.User})
	if err != nil {
		return fmt.Errorf("put session: marshal: %w", err)
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("put session: already expired")
	}
	if err := s.client.Set(ctx, redisSessionPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Session, error) {
	data, err := s.client.Get(ctx, redisSessionPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var rec redisSession
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("get session: unmarshal: %w", err)
	}
	token, err := s.sealer.Open(rec.Token)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &Session{Token: string(token), User: rec.User}, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisSessionPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (s *RedisStore) PutPending(ctx context.Context, key string, flow PendingFlow, expiresAt time.Time) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("put pending flow: marshal: %w", err)
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("put pending flow: already expired")
	}
	if err := s.client.Set(ctx, redisPendingPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("put pending flow: %w", err)
	}
	return nil
}

func (s *RedisStore) GetPending(ctx context.Context, key string) (*PendingFlow, error) {
	data, err := s.client.Get(ctx, redisPendingPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending flow: %w", err)
	}
	var flow PendingFlow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("get pending flow: unmarshal: %w", err)
	}
	return &flow, nil
}

func (s *RedisStore) DeletePending(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisPendingPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete pending flow: %w", err)
	}
	return nil
}
