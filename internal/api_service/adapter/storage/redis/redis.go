package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Storage struct {
	rdb *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		rdb: client,
	}
}

func InitStorage(ctx context.Context, options *redis.Options) (*Storage, error) {
	const op = "storage.redis.InitStorage"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	storage := NewStorage(redisClient)

	return storage, nil
}

// Client exposes the connection for the event limiter store.
func (s *Storage) Client() *redis.Client {
	return s.rdb
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}

func (s *Storage) GetSnapshot(ctx context.Context, key string) (*entities.Snapshot, error) {
	const op = "storage.redis.GetSnapshot"

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Wrapf(entities.ErrNotFound, "%s: %s", op, key)
		}
		return nil, errors.Wrap(err, op)
	}

	var snap entities.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, errors.Wrap(err, op)
	}
	if snap.Rates == nil {
		return nil, errors.Wrapf(entities.ErrNotFound, "%s: %s: empty payload", op, key)
	}
	return &snap, nil
}

func (s *Storage) SetSnapshot(ctx context.Context, key string, snap *entities.Snapshot, ttl time.Duration) error {
	const op = "storage.redis.SetSnapshot"

	raw, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

// TTL returns how long key has left to live.
func (s *Storage) TTL(ctx context.Context, key string) (time.Duration, error) {
	const op = "storage.redis.TTL"

	d, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, op)
	}
	return d, nil
}
