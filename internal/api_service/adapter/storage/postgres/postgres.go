package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/langowen/satsconv/deploy/config"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		db: pool,
	}
}

func DSN(cfg config.Storage) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
		cfg.Schema,
	)
}

func InitStorage(ctx context.Context, dsn string, timeout time.Duration) (*Storage, error) {
	const op = "storage.postgres.InitStorage"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	if err := Migrate(dsn); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	storageBD := NewStorage(pool)

	slog.Info("PostgresSQL storage initialized successfully")
	return storageBD, nil
}

func (s *Storage) Close() {
	s.db.Close()
}

// SaveSnapshot archives every fiat price of snap in one transaction.
func (s *Storage) SaveSnapshot(ctx context.Context, snap *entities.Snapshot) (err error) {
	const op = "storage.postgres.SaveSnapshot"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	batch := &pgx.Batch{}
	for _, c := range entities.FiatCurrencies {
		amount, ok := snap.Rates.Rate(c)
		if !ok {
			continue
		}
		batch.Queue(`
			INSERT INTO rate_snapshots (provider, currency, amount, timestamp, fetched_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (provider, currency, timestamp)
			DO UPDATE SET amount = EXCLUDED.amount, fetched_at = EXCLUDED.fetched_at
		`, snap.Provider, string(c), amount, snap.Rates.UpdatedAt, snap.FetchedAt)
	}

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, op)
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) SaveEvent(ctx context.Context, ev *entities.Event) error {
	const op = "storage.postgres.SaveEvent"

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return errors.Wrap(err, op)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO events (id, type, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, ev.ID, string(ev.Type), payload, ev.CreatedAt)
	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// CountEvents returns how many events of type t were recorded since.
func (s *Storage) CountEvents(ctx context.Context, t entities.EventType, since time.Time) (int64, error) {
	const op = "storage.postgres.CountEvents"

	var n int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM events WHERE type = $1 AND created_at >= $2`, string(t), since).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, op)
	}
	return n, nil
}
