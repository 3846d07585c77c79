package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

type RatesResult struct {
	Snapshot *entities.Snapshot
	Cached   bool
	Stale    bool
	Age      time.Duration
}

type Options struct {
	TTL          time.Duration
	StaleTTL     time.Duration
	FetchTimeout time.Duration
	Fiat         []entities.Currency
	Limiter      *rate.Limiter
	Now          func() time.Time
}

type Option func(o *Options)

func WithTTL(ttl, staleTTL time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
		o.StaleTTL = staleTTL
	}
}

// WithFetchTimeout bounds one shared walk over the provider chain. It does not
// depend on the caller that started the walk.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.FetchTimeout = d
	}
}

func WithFiat(fiat []entities.Currency) Option {
	return func(o *Options) {
		o.Fiat = fiat
	}
}

// WithLimiter throttles calls to the upstream providers.
func WithLimiter(l *rate.Limiter) Option {
	return func(o *Options) {
		o.Limiter = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

type Service struct {
	providers []Provider
	redis     RedisStorage
	storage   Storage
	opts      Options
	group     singleflight.Group
}

// NewService wires the provider chain. storage may be nil, archiving is then skipped.
func NewService(providers []Provider, redis RedisStorage, storage Storage, opts ...Option) (*Service, error) {
	if len(providers) == 0 {
		return nil, errors.New("service.NewService: no rate providers")
	}
	if redis == nil {
		return nil, errors.New("service.NewService: nil redis storage")
	}

	o := Options{
		TTL:          60 * time.Second,
		StaleTTL:     24 * time.Hour,
		FetchTimeout: 30 * time.Second,
		Fiat:         entities.FiatCurrencies,
		Limiter:      rate.NewLimiter(rate.Inf, 0),
		Now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Service{
		providers: providers,
		redis:     redis,
		storage:   storage,
		opts:      o,
	}, nil
}

func (s *Service) GetRates(ctx context.Context) (*RatesResult, error) {
	const op = "service.GetRates"

	snap, err := s.redis.GetSnapshot(ctx, KeyRates)
	switch {
	case err == nil:
		cacheTotal.WithLabelValues("hit").Inc()
		return s.result(snap, true, false), nil
	case !errors.Is(err, entities.ErrNotFound):
		slog.Warn("Failed to read rates cache", "error", err.Error())
	}
	cacheTotal.WithLabelValues("miss").Inc()

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), op)
	case res = <-s.sharedFetch(ctx):
	}

	if res.Err == nil {
		return s.result(res.Val.(*entities.Snapshot), false, false), nil
	}

	slog.Warn("All rate providers failed", "error", res.Err.Error())

	last, err := s.redis.GetSnapshot(ctx, KeyLastRates)
	if err != nil {
		if !errors.Is(err, entities.ErrNotFound) {
			slog.Warn("Failed to read last known rates", "error", err.Error())
		}
		cacheTotal.WithLabelValues("unavailable").Inc()
		return nil, errors.Wrap(entities.ErrProvidersUnavailable, op)
	}

	cacheTotal.WithLabelValues("stale").Inc()
	return s.result(last, true, true), nil
}

// Refresh runs the provider chain regardless of the cached entry.
func (s *Service) Refresh(ctx context.Context) (*entities.Snapshot, error) {
	const op = "service.Refresh"

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), op)
	case res := <-s.sharedFetch(ctx):
		if res.Err != nil {
			return nil, errors.Wrap(res.Err, op)
		}
		return res.Val.(*entities.Snapshot), nil
	}
}

// sharedFetch joins the walk in flight or starts one. The walk keeps the
// caller's values but not its cancellation, so a caller that gives up does not
// fail the others waiting on it.
func (s *Service) sharedFetch(ctx context.Context) <-chan singleflight.Result {
	fetchCtx := context.WithoutCancel(ctx)
	return s.group.DoChan(KeyRates, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(fetchCtx, s.opts.FetchTimeout)
		defer cancel()
		return s.fetch(ctx)
	})
}

func (s *Service) result(snap *entities.Snapshot, cached, stale bool) *RatesResult {
	age := s.opts.Now().Sub(snap.FetchedAt)
	if age < 0 {
		age = 0
	}
	return &RatesResult{
		Snapshot: snap,
		Cached:   cached,
		Stale:    stale,
		Age:      age,
	}
}

// fetch walks the providers in order and returns the first usable snapshot.
func (s *Service) fetch(ctx context.Context) (*entities.Snapshot, error) {
	const op = "service.fetch"

	var lastErr error
	for _, p := range s.providers {
		if err := s.opts.Limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, op)
		}

		rates, err := p.FetchRates(ctx, s.opts.Fiat)
		if err == nil && !rates.HasFiat() {
			err = errors.Wrapf(entities.ErrNoRates, "%s: %s", op, p.Name())
		}
		if err != nil {
			upstreamTotal.WithLabelValues(p.Name(), "error").Inc()
			slog.Warn("Rate provider failed", "provider", p.Name(), "error", err.Error())
			lastErr = err
			continue
		}
		upstreamTotal.WithLabelValues(p.Name(), "ok").Inc()

		snap := &entities.Snapshot{
			Rates:     rates,
			Provider:  p.Name(),
			FetchedAt: s.opts.Now(),
		}
		s.store(ctx, snap)

		return snap, nil
	}

	return nil, errors.Wrapf(entities.ErrProvidersUnavailable, "%s: %v", op, lastErr)
}

// store writes both cache keys and archives the snapshot. Failures are logged only.
func (s *Service) store(ctx context.Context, snap *entities.Snapshot) {
	if err := s.redis.SetSnapshot(ctx, KeyRates, snap, s.opts.TTL); err != nil {
		slog.Warn("Failed to cache rates", "error", err.Error())
	}
	if err := s.redis.SetSnapshot(ctx, KeyLastRates, snap, s.opts.StaleTTL); err != nil {
		slog.Warn("Failed to keep last known rates", "error", err.Error())
	}

	if s.storage == nil {
		return
	}
	if err := s.storage.SaveSnapshot(ctx, snap); err != nil {
		slog.Warn("Failed to archive rates", "provider", snap.Provider, "error", err.Error())
	}
}
