// Package local is the client's persistent key-value store: settings, the last
// rate snapshot and offline responses, all as JSON strings in SQLite.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/langowen/satsconv/internal/offline"
	"github.com/pkg/errors"
)

const (
	KeySettings         = "settings"
	KeyRates            = "rates"
	KeyLastFetch        = "rates_fetched_at"
	KeySelectedCurrency = "selected_currency"
	KeyLanguage         = "language"
)

type Storage struct {
	db *sql.DB
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func InitStorage(ctx context.Context, path string) (*Storage, error) {
	const op = "storage.local.InitStorage"

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "%s: %s", op, pragma)
		}
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS responses (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			stored_at INTEGER NOT NULL
		);`,
	}
	for _, ddl := range tables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, op)
		}
	}

	return NewStorage(db), nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	const op = "storage.local.Get"

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errors.Wrapf(entities.ErrNotFound, "%s: %s", op, key)
		}
		return "", errors.Wrap(err, op)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	const op = "storage.local.Set"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

func (s *Storage) GetJSON(ctx context.Context, key string, dst interface{}) error {
	const op = "storage.local.GetJSON"

	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return errors.Wrapf(err, "%s: %s", op, key)
	}
	return nil
}

func (s *Storage) SetJSON(ctx context.Context, key string, v interface{}) error {
	const op = "storage.local.SetJSON"

	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, op)
	}
	return s.Set(ctx, key, string(b))
}

func (s *Storage) LoadRates(ctx context.Context) (*entities.Rates, time.Time, error) {
	const op = "storage.local.LoadRates"

	var rates entities.Rates
	if err := s.GetJSON(ctx, KeyRates, &rates); err != nil {
		return nil, time.Time{}, err
	}

	var fetchedAt time.Time
	if err := s.GetJSON(ctx, KeyLastFetch, &fetchedAt); err != nil && !errors.Is(err, entities.ErrNotFound) {
		return nil, time.Time{}, errors.Wrap(err, op)
	}

	return entities.NewRates(rates.Values, rates.UpdatedAt), fetchedAt, nil
}

func (s *Storage) SaveRates(ctx context.Context, rates *entities.Rates, fetchedAt time.Time) error {
	const op = "storage.local.SaveRates"

	if err := s.SetJSON(ctx, KeyRates, rates); err != nil {
		return errors.Wrap(err, op)
	}
	if err := s.SetJSON(ctx, KeyLastFetch, fetchedAt); err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

func (s *Storage) LoadSettings(ctx context.Context) (entities.Settings, error) {
	var settings entities.Settings
	err := s.GetJSON(ctx, KeySettings, &settings)
	return settings, err
}

func (s *Storage) SaveSettings(ctx context.Context, settings entities.Settings) error {
	return s.SetJSON(ctx, KeySettings, settings)
}

func (s *Storage) SelectedCurrency(ctx context.Context) (entities.Currency, error) {
	var c entities.Currency
	if err := s.GetJSON(ctx, KeySelectedCurrency, &c); err != nil {
		return "", err
	}
	return entities.ParseCurrency(string(c))
}

func (s *Storage) SetSelectedCurrency(ctx context.Context, c entities.Currency) error {
	return s.SetJSON(ctx, KeySelectedCurrency, c)
}

func (s *Storage) Language(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyLanguage)
}

func (s *Storage) SetLanguage(ctx context.Context, lang string) error {
	return s.Set(ctx, KeyLanguage, lang)
}

func (s *Storage) GetResponse(ctx context.Context, key string) (*offline.Entry, error) {
	const op = "storage.local.GetResponse"

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM responses WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(entities.ErrNotFound, "%s: %s", op, key)
		}
		return nil, errors.Wrap(err, op)
	}

	var e offline.Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return &e, nil
}

func (s *Storage) PutResponse(ctx context.Context, key string, e *offline.Entry) error {
	const op = "storage.local.PutResponse"

	b, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, op)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO responses (key, value, stored_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at
	`, key, string(b), e.StoredAt.UnixMilli())
	if err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}
