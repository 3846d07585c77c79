// Package warmer keeps the rates cache populated between client requests.
package warmer

import (
	"context"
	"log/slog"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
)

type Refresher interface {
	Refresh(ctx context.Context) (*entities.Snapshot, error)
}

type Warmer struct {
	service  Refresher
	interval time.Duration
	timeout  time.Duration
}

func NewWarmer(service Refresher, interval, timeout time.Duration) *Warmer {
	return &Warmer{
		service:  service,
		interval: interval,
		timeout:  timeout,
	}
}

// StartWarmer refreshes once immediately and then on every tick until ctx ends.
func (w *Warmer) StartWarmer(ctx context.Context) error {
	const op = "warmer.StartWarmer"

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), op)
		}
	}
}

func (w *Warmer) refresh(ctx context.Context) {
	const op = "warmer.refresh"

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	snap, err := w.service.Refresh(ctx)
	if err != nil {
		slog.Error("Failed to warm rates cache", "op", op, "error", err.Error())
		return
	}
	slog.Debug("Rates cache warmed", "provider", snap.Provider)
}
