package rediskv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaiso/syncron/internal/watermark"
)

// WatermarkStore — watermark.Store в Redis.
type WatermarkStore struct {
	client redis.Cmdable
	opts   options
}

// NewWatermarkStore создаёт WatermarkStore.
func NewWatermarkStore(client redis.Cmdable, opts ...Option) *WatermarkStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &WatermarkStore{client: client, opts: o}
}

// Get возвращает watermark job.
func (s *WatermarkStore) Get(ctx context.Context, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, watermark.ErrEmptyKey
	}

	raw, err := s.client.Get(ctx, s.opts.watermarkKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get watermark %q: %w", name, err)
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse watermark %q: %w", name, err)
	}
	return value, true, nil
}

// Set записывает watermark без TTL.
func (s *WatermarkStore) Set(ctx context.Context, name string, value int64) error {
	if name == "" {
		return watermark.ErrEmptyKey
	}

	if err := s.client.Set(ctx, s.opts.watermarkKey(name), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set watermark %q: %w", name, err)
	}
	return nil
}

// Delete удаляет watermark.
func (s *WatermarkStore) Delete(ctx context.Context, name string) error {
	n, err := s.client.Del(ctx, s.opts.watermarkKey(name)).Result()
	if err != nil {
		return fmt.Errorf("redis delete watermark %q: %w", name, err)
	}
	if n == 0 {
		return watermark.ErrNotFound
	}
	return nil
}

// List сканирует ключи watermark'ов. Redis не хранит время записи,
// поэтому UpdatedAt остаётся нулевым.
func (s *WatermarkStore) List(ctx context.Context) ([]watermark.Entry, error) {
	prefix := s.opts.watermarkKey("")

	var entries []watermark.Entry
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		name := strings.TrimPrefix(iter.Val(), prefix)
		value, ok, err := s.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			// ключ удалили между SCAN и GET
			continue
		}
		entries = append(entries, watermark.Entry{Name: name, Value: value, UpdatedAt: time.Time{}})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan watermarks: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

var _ watermark.Admin = (*WatermarkStore)(nil)
