package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
	"github.com/ulule/limiter/v3"
)

const (
	MaxPayloadKeys  = 16
	MaxPayloadValue = 256
)

type EventStorage interface {
	SaveEvent(ctx context.Context, ev *entities.Event) error
}

// EventService records allow-listed events under a per-type rate limit.
type EventService struct {
	storage EventStorage
	limiter *limiter.Limiter
	now     func() time.Time
}

// NewEventService builds the recorder. A nil storage only logs accepted events.
func NewEventService(storage EventStorage, lim *limiter.Limiter) *EventService {
	return &EventService{
		storage: storage,
		limiter: lim,
		now:     time.Now,
	}
}

func (s *EventService) Record(ctx context.Context, t entities.EventType, payload map[string]string) (*entities.Event, error) {
	const op = "service.Record"

	if !t.Allowed() {
		eventsTotal.WithLabelValues("unknown", "rejected").Inc()
		return nil, errors.Wrapf(entities.ErrEventNotAllowed, "%s: %q", op, t)
	}

	lctx, err := s.limiter.Get(ctx, string(t))
	if err != nil {
		slog.Warn("Event limiter unavailable", "type", t, "error", err.Error())
	} else if lctx.Reached {
		eventsTotal.WithLabelValues(string(t), "limited").Inc()
		return nil, errors.Wrapf(entities.ErrRateLimited, "%s: %s", op, t)
	}

	ev := entities.NewEvent(t, trimPayload(payload), s.now().UTC())

	if s.storage == nil {
		slog.Info("Event recorded", "type", ev.Type, "id", ev.ID, "payload", ev.Payload)
	} else if err := s.storage.SaveEvent(ctx, ev); err != nil {
		eventsTotal.WithLabelValues(string(t), "error").Inc()
		return nil, errors.Wrap(err, op)
	}

	eventsTotal.WithLabelValues(string(t), "accepted").Inc()
	return ev, nil
}

// trimPayload keeps the first MaxPayloadKeys keys in sorted order and cuts long values.
func trimPayload(payload map[string]string) map[string]string {
	if len(payload) == 0 {
		return nil
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > MaxPayloadKeys {
		keys = keys[:MaxPayloadKeys]
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v := []rune(payload[k])
		if len(v) > MaxPayloadValue {
			v = v[:MaxPayloadValue]
		}
		out[k] = string(v)
	}
	return out
}
