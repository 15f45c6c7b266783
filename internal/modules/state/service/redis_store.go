package service

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const stateKey = "paper_bot:state"

// RedisStore держит снапшот в Redis: переживает рестарт процесса и его
// видно снаружи (дашборды, отладка).
type RedisStore struct {
	rdb *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Save(ctx context.Context, blob []byte) error {
	return s.rdb.Set(ctx, stateKey, blob, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, bool, error) {
	blob, err := s.rdb.Get(ctx, stateKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
