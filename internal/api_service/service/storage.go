package service

import (
	"context"

	"github.com/langowen/satsconv/internal/entities"
)

type Storage interface {
	SaveSnapshot(ctx context.Context, snap *entities.Snapshot) error
	SaveEvent(ctx context.Context, ev *entities.Event) error
}
