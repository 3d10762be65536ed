package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type logSink interface {
	Warn(ctx context.Context, msg string)
	Error(ctx context.Context, msg string, err error)
	WithField(ctx context.Context, key string, value any) context.Context
}

// FileStore keeps one JSON document per key under a directory. Writes go
// through a temp file and rename so readers never observe a torn payload
// from this process.
type FileStore struct {
	dir  string
	logg logSink
	mu   sync.Mutex
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string, logg logSink) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{dir: dir, logg: logg}, nil
}

func (s *FileStore) Read(ctx context.Context, key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.warn(ctx, key, "store read failed, treating as empty")
		}
		return nil
	}
	return raw
}

func (s *FileStore) Write(ctx context.Context, key string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		s.error(ctx, key, "store write failed", err)
		return
	}
	if err := os.Rename(tmp, target); err != nil {
		s.error(ctx, key, "store rename failed", err)
	}
}

func (s *FileStore) Remove(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.error(ctx, key, "store remove failed", err)
	}
}

func (s *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("store directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store path %q is not a directory", s.dir)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

var keySanitizer = strings.NewReplacer(":", "__", "/", "__", "\\", "__", "..", "__")

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, keySanitizer.Replace(key)+".json")
}

func (s *FileStore) warn(ctx context.Context, key, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "key", key), msg)
}

func (s *FileStore) error(ctx context.Context, key, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithField(ctx, "key", key), msg, err)
}
