package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const defaultTTL = 7 * 24 * time.Hour

// RedisStore stores sessions as JSON documents with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
	sfg    singleflight.Group
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *log.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	// Concurrent loads of one session share a single round trip; each caller decodes its own copy.
	v, err, _ := r.sfg.Do(id, func() (interface{}, error) {
		data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("redis get failed: %w", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	var s domain.Session
	if err := json.Unmarshal(v.([]byte), &s); err != nil {
		r.logger.Printf("session store: decode id=%s err=%v", id, err)
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	s.ID = id
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *domain.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session store: missing session id")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
