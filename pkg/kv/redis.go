package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Ayuoyi/AsiliConnect/pkg/config"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "asili"

// RedisStore backs the key-value contract with redis. The tolerant read
// semantics are identical to the file driver: any backend failure reads as
// the empty sequence.
type RedisStore struct {
	raw  *redis.Client
	logg logSink
}

// NewRedisStore bootstraps a redis-backed store and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, logg logSink) (*RedisStore, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{raw: raw, logg: logg}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (s *RedisStore) Read(ctx context.Context, key string) []byte {
	raw, err := s.raw.Get(ctx, s.buildKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "key", key), "redis read failed, treating as empty", err)
		}
		return nil
	}
	return raw
}

func (s *RedisStore) Write(ctx context.Context, key string, payload []byte) {
	if err := s.raw.Set(ctx, s.buildKey(key), payload, 0).Err(); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "key", key), "redis write failed", err)
	}
}

func (s *RedisStore) Remove(ctx context.Context, key string) {
	if err := s.raw.Del(ctx, s.buildKey(key)).Err(); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "key", key), "redis delete failed", err)
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.raw.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.raw.Close()
}

func (s *RedisStore) buildKey(parts ...string) string {
	return strings.Join(append([]string{keyNamespace}, parts...), ":")
}
