package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := InitStorage(context.Background(), &redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStorage(t)

	_, err := s.GetSnapshot(ctx, "rates:btc")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := &entities.Snapshot{
		Rates:     entities.NewRates(map[entities.Currency]float64{entities.USD: 64000}, at),
		Provider:  "coingecko",
		FetchedAt: at,
	}
	require.NoError(t, s.SetSnapshot(ctx, "rates:btc", snap, time.Minute))

	got, err := s.GetSnapshot(ctx, "rates:btc")
	require.NoError(t, err)
	assert.Equal(t, "coingecko", got.Provider)
	assert.Equal(t, snap.Rates.Values, got.Rates.Values)
	assert.True(t, at.Equal(got.FetchedAt))

	ttl, err := s.TTL(ctx, "rates:btc")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
}

func TestSnapshotExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newStorage(t)

	snap := &entities.Snapshot{Rates: entities.NewRates(map[entities.Currency]float64{entities.USD: 1}, time.Now())}
	require.NoError(t, s.SetSnapshot(ctx, "rates:btc", snap, 60*time.Second))

	mr.FastForward(61 * time.Second)

	_, err := s.GetSnapshot(ctx, "rates:btc")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestCorruptPayload(t *testing.T) {
	ctx := context.Background()
	s, mr := newStorage(t)

	require.NoError(t, mr.Set("rates:btc", "{broken"))
	_, err := s.GetSnapshot(ctx, "rates:btc")
	assert.Error(t, err)

	require.NoError(t, mr.Set("rates:btc", "{}"))
	_, err = s.GetSnapshot(ctx, "rates:btc")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestInitStorageUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := InitStorage(ctx, &redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	assert.Error(t, err)
}
