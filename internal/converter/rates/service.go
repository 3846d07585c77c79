// Package rates owns the client-side rate snapshot: a TTL cache in front of
// the proxy, persisted through Storage, with one fetch in flight at a time.
package rates

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/langowen/satsconv/internal/clock"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL          = 60 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

type Source string

const (
	SourceFresh Source = "fresh"
	SourceCache Source = "cache"
	SourceStale Source = "stale"
)

type Result struct {
	Rates     *entities.Rates
	Source    Source
	FetchedAt time.Time
	// Err is the fetch error behind a stale result.
	Err error
}

type Service struct {
	fetcher Fetcher
	storage Storage
	clock   clock.Clock
	ttl     time.Duration
	timeout time.Duration

	mu        sync.RWMutex
	current   *entities.Rates
	fetchedAt time.Time

	group singleflight.Group
}

func NewService(fetcher Fetcher, storage Storage, clk clock.Clock, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Service{
		fetcher: fetcher,
		storage: storage,
		clock:   clk,
		ttl:     ttl,
		timeout: DefaultFetchTimeout,
	}
}

// WithFetchTimeout bounds a shared fetch independently of its callers.
func (s *Service) WithFetchTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Load warms the in-memory snapshot from storage.
func (s *Service) Load(ctx context.Context) error {
	const op = "rates.Service.Load"

	r, at, err := s.storage.LoadRates(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, op)
	}

	s.mu.Lock()
	s.current, s.fetchedAt = r, at
	s.mu.Unlock()

	return nil
}

// Get returns the cached snapshot while it is younger than the TTL and fetches
// otherwise. Fetch failures fall back to the last snapshot; ErrNoRates is only
// returned when there has never been one.
func (s *Service) Get(ctx context.Context) (Result, error) {
	if r, at, ok := s.snapshot(); ok && s.clock.Now().Sub(at) < s.ttl {
		return Result{Rates: r, Source: SourceCache, FetchedAt: at}, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches regardless of the TTL.
func (s *Service) Refresh(ctx context.Context) (Result, error) {
	const op = "rates.Service.Refresh"

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("rates", func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(fetchCtx, s.timeout)
		defer cancel()
		return s.fetch(ctx)
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(Result), nil
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	slog.Warn("rates refresh failed, using cached rates", "op", op, "error", err.Error())

	r, at, ok := s.snapshot()
	if !ok {
		return Result{}, errors.Wrapf(entities.ErrNoRates, "%s: %v", op, err)
	}
	return Result{Rates: r, Source: SourceStale, FetchedAt: at, Err: err}, nil
}

// Current returns the in-memory snapshot without touching the network.
func (s *Service) Current() (*entities.Rates, bool) {
	r, _, ok := s.snapshot()
	return r, ok
}

func (s *Service) snapshot() (*entities.Rates, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.fetchedAt, s.current != nil
}

func (s *Service) fetch(ctx context.Context) (Result, error) {
	const op = "rates.Service.fetch"

	r, err := s.fetcher.FetchRates(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, op)
	}
	if !r.HasFiat() {
		return Result{}, errors.Wrap(entities.ErrNoRates, op)
	}

	now := s.clock.Now()

	s.mu.Lock()
	s.current, s.fetchedAt = r, now
	s.mu.Unlock()

	if err := s.storage.SaveRates(ctx, r, now); err != nil {
		slog.Warn("failed to persist rates", "op", op, "error", err.Error())
	}

	return Result{Rates: r, Source: SourceFresh, FetchedAt: now}, nil
}
