// Package convert turns an amount in one currency into every display currency
// using a single rate snapshot. Amounts always pass through BTC.
package convert

import (
	"math"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
)

func ToBTC(amount float64, from entities.Currency, rates *entities.Rates) (float64, error) {
	const op = "convert.ToBTC"

	if err := checkAmount(amount); err != nil {
		return 0, errors.Wrap(err, op)
	}

	switch from {
	case entities.BTC:
		return amount, nil
	case entities.SATS:
		return amount / entities.SatsPerBTC, nil
	}

	rate, ok := rates.Rate(from)
	if !ok {
		return 0, errors.Wrapf(entities.ErrNoRates, "%s: %s", op, from)
	}
	return amount / rate, nil
}

func FromBTC(btc float64, to entities.Currency, rates *entities.Rates) (float64, error) {
	const op = "convert.FromBTC"

	switch to {
	case entities.BTC:
		return btc, nil
	case entities.SATS:
		return btc * entities.SatsPerBTC, nil
	}

	rate, ok := rates.Rate(to)
	if !ok {
		return 0, errors.Wrapf(entities.ErrNoRates, "%s: %s", op, to)
	}
	return btc * rate, nil
}

// Convert returns amount of from expressed in every target currency. Targets
// without a rate in the snapshot are left out of the result.
func Convert(amount float64, from entities.Currency, targets []entities.Currency, rates *entities.Rates) (map[entities.Currency]float64, error) {
	const op = "convert.Convert"

	btc, err := ToBTC(amount, from, rates)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	out := make(map[entities.Currency]float64, len(targets))
	for _, to := range targets {
		if to == from {
			out[to] = amount
			continue
		}
		v, err := FromBTC(btc, to, rates)
		if err != nil {
			continue
		}
		out[to] = v
	}
	return out, nil
}

func checkAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return entities.ErrInvalidAmount
	}
	return nil
}
