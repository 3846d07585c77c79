package entities

import (
	"math"
	"time"
)

// Rates is one rate snapshot: amount of each currency per 1 BTC.
type Rates struct {
	Values    map[Currency]float64 `json:"values"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NewRates builds a snapshot from fiat prices. btc and sats are always set
// from the fixed ratio; unknown codes and non-positive prices are dropped.
func NewRates(fiat map[Currency]float64, date time.Time) *Rates {
	values := make(map[Currency]float64, len(fiat)+2)
	for c, v := range fiat {
		if !c.IsFiat() || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values[c] = v
	}
	values[BTC] = 1
	values[SATS] = SatsPerBTC

	return &Rates{
		Values:    values,
		UpdatedAt: date,
	}
}

func (r *Rates) Rate(c Currency) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Values[c]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// HasFiat reports whether at least one fiat price is present.
func (r *Rates) HasFiat() bool {
	if r == nil {
		return false
	}
	for _, c := range FiatCurrencies {
		if _, ok := r.Rate(c); ok {
			return true
		}
	}
	return false
}

func (r *Rates) Age(now time.Time) time.Duration {
	if r == nil || r.UpdatedAt.IsZero() {
		return math.MaxInt64
	}
	return now.Sub(r.UpdatedAt)
}

// Snapshot is a rate set together with where and when it was fetched.
type Snapshot struct {
	Rates     *Rates    `json:"rates"`
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetched_at"`
}
