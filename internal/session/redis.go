package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pi-senac-4/studybuddy-web/internal/form"
	"github.com/pi-senac-4/studybuddy-web/internal/models"
)

// RedisStore keeps page state in Redis under page:<id>.
type RedisStore struct {
	rdb         *redis.Client
	ttl         time.Duration
	inflightTTL time.Duration
}

// NewRedisStore keeps pages for ttl and holds gates for at most inflightTTL.
// Zero values select the defaults.
func NewRedisStore(rdb *redis.Client, ttl, inflightTTL time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if inflightTTL <= 0 {
		inflightTTL = DefaultInFlightTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, inflightTTL: inflightTTL}
}

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (models.State, error) {
	val, err := s.rdb.Get(ctx, "page:"+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewState(), nil
	}
	if err != nil {
		return models.State{}, fmt.Errorf("redis get page: %w", err)
	}
	var st models.State
	if err := json.Unmarshal(val, &st); err != nil {
		return models.State{}, fmt.Errorf("decode page state: %w", err)
	}
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, st models.State) error {
	b, err := json.Marshal(st.Redacted())
	if err != nil {
		return fmt.Errorf("encode page state: %w", err)
	}
	return s.rdb.Set(ctx, "page:"+id, b, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, "page:"+id, "inflight:"+id).Err()
}

func (s *RedisStore) Gate(id string) form.Gate {
	return &redisGate{rdb: s.rdb, key: "inflight:" + id, ttl: s.inflightTTL}
}

func (s *RedisStore) InFlight(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, "inflight:"+id).Result()
	return n > 0, err
}

type redisGate struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func (g *redisGate) Enter(ctx context.Context) (bool, error) {
	return g.rdb.SetNX(ctx, g.key, time.Now().Unix(), g.ttl).Result()
}

func (g *redisGate) Leave(ctx context.Context) error {
	return g.rdb.Del(ctx, g.key).Err()
}
