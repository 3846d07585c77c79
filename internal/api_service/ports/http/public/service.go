package public

import (
	"context"

	"github.com/langowen/satsconv/internal/api_service/service"
	"github.com/langowen/satsconv/internal/entities"
)

type RatesService interface {
	GetRates(ctx context.Context) (*service.RatesResult, error)
}

type EventService interface {
	Record(ctx context.Context, t entities.EventType, payload map[string]string) (*entities.Event, error)
}
