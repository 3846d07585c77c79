package service

import (
	"context"

	"github.com/langowen/satsconv/internal/entities"
)

// Provider is one upstream price source.
type Provider interface {
	Name() string
	FetchRates(ctx context.Context, fiat []entities.Currency) (*entities.Rates, error)
}
