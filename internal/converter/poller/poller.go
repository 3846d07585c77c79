// Package poller refreshes rates on a fixed interval while the user is active.
package poller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

type Task func(ctx context.Context) error

type Activity interface {
	Active() bool
}

type Poller struct {
	interval time.Duration
	activity Activity
	task     Task

	runs    atomic.Int64
	skipped atomic.Int64
}

func New(interval time.Duration, activity Activity, task Task) *Poller {
	return &Poller{
		interval: interval,
		activity: activity,
		task:     task,
	}
}

// Start ticks until ctx is cancelled. Ticks with no recent activity are
// skipped; task errors are logged and polling continues.
func (p *Poller) Start(ctx context.Context) error {
	const op = "poller.Start"

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick(ctx)
		case <-ctx.Done():
			slog.Debug("polling stopped", "op", op)
			return ctx.Err()
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	const op = "poller.tick"

	if p.activity != nil && !p.activity.Active() {
		p.skipped.Add(1)
		return
	}

	p.runs.Add(1)
	if err := p.task(ctx); err != nil {
		slog.Warn("poll task failed", "op", op, "error", err.Error())
	}
}

func (p *Poller) Runs() int64 {
	return p.runs.Load()
}

func (p *Poller) Skipped() int64 {
	return p.skipped.Load()
}
