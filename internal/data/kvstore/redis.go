package kvstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

const defaultRedisPrefix = "onboarding:kv:"

type redisStore struct {
	rdb    redis.UniversalClient
	prefix string
	log    *logger.Logger
}

func NewRedisStore(rdb redis.UniversalClient, prefix string, baseLog *logger.Logger) Store {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisStore{rdb: rdb, prefix: prefix, log: baseLog.With("repo", "RedisKVStore")}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *redisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}
