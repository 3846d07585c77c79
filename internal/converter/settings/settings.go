// Package settings holds the user's preferences in memory and writes every
// change through to persistent storage.
package settings

import (
	"context"
	"log/slog"
	"sync"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
)

type Storage interface {
	LoadSettings(ctx context.Context) (entities.Settings, error)
	SaveSettings(ctx context.Context, s entities.Settings) error
}

type Store struct {
	storage Storage

	mu      sync.RWMutex
	current entities.Settings
}

// Load reads the persisted record. A missing or unusable record is replaced
// with defaults without surfacing an error.
func Load(ctx context.Context, storage Storage) *Store {
	const op = "settings.Load"

	s := &Store{storage: storage, current: entities.DefaultSettings()}

	loaded, err := storage.LoadSettings(ctx)
	switch {
	case errors.Is(err, entities.ErrNotFound):
	case err != nil:
		slog.Warn("failed to read settings, using defaults", "op", op, "error", err.Error())
	case !loaded.Valid():
		slog.Warn("stored settings are invalid, using defaults", "op", op)
	default:
		s.current = loaded
	}

	return s
}

func (s *Store) Get() entities.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// ToggleCurrency removes c from the display list when present and appends it
// otherwise. The list never shrinks below two or grows beyond six entries.
func (s *Store) ToggleCurrency(ctx context.Context, c entities.Currency) (bool, error) {
	if !c.Valid() {
		return false, errors.Wrapf(entities.ErrUnknownCurrency, "%q", c)
	}

	return s.update(ctx, func(st *entities.Settings) bool {
		for i, have := range st.Currencies {
			if have != c {
				continue
			}
			if len(st.Currencies) <= entities.MinDisplayCurrencies {
				return false
			}
			st.Currencies = append(st.Currencies[:i], st.Currencies[i+1:]...)
			return true
		}

		if len(st.Currencies) >= entities.MaxDisplayCurrencies {
			return false
		}
		st.Currencies = append(st.Currencies, c)
		return true
	})
}

// MoveCurrency moves c to index, clamped to the list bounds.
func (s *Store) MoveCurrency(ctx context.Context, c entities.Currency, index int) (bool, error) {
	return s.update(ctx, func(st *entities.Settings) bool {
		from := -1
		for i, have := range st.Currencies {
			if have == c {
				from = i
				break
			}
		}
		if from < 0 {
			return false
		}

		if index < 0 {
			index = 0
		}
		if index >= len(st.Currencies) {
			index = len(st.Currencies) - 1
		}
		if index == from {
			return false
		}

		list := append(st.Currencies[:from:from], st.Currencies[from+1:]...)
		list = append(list[:index], append([]entities.Currency{c}, list[index:]...)...)
		st.Currencies = list
		return true
	})
}

func (s *Store) SetDecimalSeparator(ctx context.Context, sep string) (bool, error) {
	if sep != "." && sep != "," {
		return false, errors.Errorf("settings: decimal separator must be '.' or ',', got %q", sep)
	}
	return s.update(ctx, func(st *entities.Settings) bool {
		if st.DecimalSeparator == sep {
			return false
		}
		st.DecimalSeparator = sep
		return true
	})
}

func (s *Store) SetTheme(ctx context.Context, theme entities.Theme) (bool, error) {
	if !theme.Valid() {
		return false, errors.Errorf("settings: unknown theme %q", theme)
	}
	return s.update(ctx, func(st *entities.Settings) bool {
		if st.Theme == theme {
			return false
		}
		st.Theme = theme
		return true
	})
}

func (s *Store) SetThousandsOnCopy(ctx context.Context, on bool) (bool, error) {
	return s.update(ctx, func(st *entities.Settings) bool {
		if st.ThousandsOnCopy == on {
			return false
		}
		st.ThousandsOnCopy = on
		return true
	})
}

func (s *Store) SetAutoRefresh(ctx context.Context, on bool) (bool, error) {
	return s.update(ctx, func(st *entities.Settings) bool {
		if st.AutoRefresh == on {
			return false
		}
		st.AutoRefresh = on
		return true
	})
}

func (s *Store) SetCompactMode(ctx context.Context, on bool) (bool, error) {
	return s.update(ctx, func(st *entities.Settings) bool {
		if st.CompactMode == on {
			return false
		}
		st.CompactMode = on
		return true
	})
}

// Reset restores the defaults.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.update(ctx, func(st *entities.Settings) bool {
		*st = entities.DefaultSettings()
		return true
	})
	return err
}

func (s *Store) update(ctx context.Context, fn func(st *entities.Settings) bool) (bool, error) {
	const op = "settings.Store.update"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	if !fn(&next) {
		return false, nil
	}

	if err := s.storage.SaveSettings(ctx, next); err != nil {
		return false, errors.Wrap(err, op)
	}
	s.current = next

	return true, nil
}
