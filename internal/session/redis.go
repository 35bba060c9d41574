package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisOpTimeout = time.Second

// RedisStore keeps the token in Redis so several processes can share one
// session. Changes are published on a channel; every store subscribed to the
// same key sees SetToken and Clear from its peers.
type RedisStore struct {
	client *redis.Client
	key    string
	mem    *MemoryStore
	logger *zap.Logger

	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// NewRedisStore loads the current token for key and starts listening for
// change events published by other stores on the same key.
func NewRedisStore(client *redis.Client, key string, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RedisStore{
		client: client,
		key:    key,
		mem:    NewMemoryStore(),
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	token, err := client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get token: %w", err)
	}
	if err == nil && token != "" {
		s.mem.set(token, true)
	}

	s.pubsub = client.Subscribe(context.Background(), s.channel())
	s.wg.Add(1)
	go s.listen()
	return s, nil
}

func (s *RedisStore) Token() (string, bool) {
	return s.mem.Token()
}

func (s *RedisStore) SetToken(token string) error {
	s.mem.set(token, true)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		s.logger.Warn("persisting token failed", zap.Error(err))
		return fmt.Errorf("redis set token: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel(), token).Err(); err != nil {
		s.logger.Warn("publishing token change failed", zap.Error(err))
	}
	return nil
}

func (s *RedisStore) Clear() error {
	s.mem.set("", false)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.logger.Warn("removing persisted token failed", zap.Error(err))
		return fmt.Errorf("redis del token: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel(), "").Err(); err != nil {
		s.logger.Warn("publishing token change failed", zap.Error(err))
	}
	return nil
}

func (s *RedisStore) Subscribe(fn func(token string, ok bool)) func() {
	return s.mem.Subscribe(fn)
}

// Close stops the change listener.
func (s *RedisStore) Close() error {
	err := s.pubsub.Close()
	s.wg.Wait()
	return err
}

func (s *RedisStore) listen() {
	defer s.wg.Done()
	for msg := range s.pubsub.Channel() {
		// Our own publishes come back too; mem.set deduplicates them.
		if msg.Payload == "" {
			s.mem.set("", false)
		} else {
			s.mem.set(msg.Payload, true)
		}
	}
}

func (s *RedisStore) channel() string {
	return s.key + ":changes"
}
