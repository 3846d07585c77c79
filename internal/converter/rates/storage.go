package rates

import (
	"context"
	"time"

	"github.com/langowen/satsconv/internal/entities"
)

type Fetcher interface {
	FetchRates(ctx context.Context) (*entities.Rates, error)
}

// Storage persists the last good snapshot and when it was fetched.
type Storage interface {
	LoadRates(ctx context.Context) (rates *entities.Rates, fetchedAt time.Time, err error)
	SaveRates(ctx context.Context, rates *entities.Rates, fetchedAt time.Time) error
}
