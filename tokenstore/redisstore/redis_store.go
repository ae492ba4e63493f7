package redisstore

import (
	"context"

	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ tokenstore.Repo = (*RedisStore)(nil)

// RedisStore keeps each slot under <prefix><slot>, letting several clients
// share one session.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(slot tokenstore.Slot) string {
	return s.prefix + string(slot)
}

func (s *RedisStore) Get(ctx context.Context, slot tokenstore.Slot) (string, error) {
	value, err := s.client.Get(ctx, s.key(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "[RedisStore.Get] %s", slot)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, slot tokenstore.Slot, value string) error {
	if err := s.client.Set(ctx, s.key(slot), value, 0).Err(); err != nil {
		return errors.Wrapf(err, "[RedisStore.Set] %s", slot)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, slots ...tokenstore.Slot) error {
	targets := tokenstore.Targets(slots)
	keys := make([]string, 0, len(targets))
	for _, slot := range targets {
		keys = append(keys, s.key(slot))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Clear]")
	}
	return nil
}
