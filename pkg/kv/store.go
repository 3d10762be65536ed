// Package kv persists serialized sequences keyed by name. It is the only
// writer of session-local state and shields callers from every storage
// failure mode: a missing key, a corrupt payload, or an unreachable backend
// all read back as the empty sequence. Writes across concurrent processes
// are last-write-wins per key; no cross-writer coordination is attempted.
package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Ayuoyi/AsiliConnect/pkg/config"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

// Store is the raw byte-level surface. Read returns nil when the key is
// absent or unreadable; Write and Remove are side-effect only.
type Store interface {
	Read(ctx context.Context, key string) []byte
	Write(ctx context.Context, key string, payload []byte)
	Remove(ctx context.Context, key string)
	Ping(ctx context.Context) error
	Close() error
}

// New selects a driver from config: the file driver by default, redis when
// configured.
func New(ctx context.Context, storeCfg config.StoreConfig, redisCfg config.RedisConfig, logg *logger.Logger) (Store, error) {
	if storeCfg.IsRedis() {
		return NewRedisStore(ctx, redisCfg, logg)
	}
	return NewFileStore(storeCfg.Dir, logg)
}

// ReadList decodes the stored sequence under key. Absent keys and malformed
// payloads both yield the empty slice; corruption self-heals on the next
// write.
func ReadList[T any](ctx context.Context, s Store, key string) []T {
	raw := s.Read(ctx, key)
	if len(raw) == 0 {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// WriteList serializes and persists the sequence under key. A nil slice is
// stored as the empty sequence.
func WriteList[T any](ctx context.Context, s Store, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	s.Write(ctx, key, raw)
}

// Key builds a namespaced store key from a kind and a session scope.
func Key(kind, sessionID string) string {
	return fmt.Sprintf("%s:%s", kind, sessionID)
}
