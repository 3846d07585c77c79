package service

import (
	"context"
	"time"

	"github.com/langowen/satsconv/internal/entities"
)

const (
	KeyRates     = "rates:btc"
	KeyLastRates = "rates:btc:last"
)

type RedisStorage interface {
	GetSnapshot(ctx context.Context, key string) (*entities.Snapshot, error)
	SetSnapshot(ctx context.Context, key string, snap *entities.Snapshot, ttl time.Duration) error
}
