package convert

import (
	"math"
	"testing"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() *entities.Rates {
	return entities.NewRates(map[entities.Currency]float64{
		entities.USD: 50000,
		entities.EUR: 46123.45,
		entities.JPY: 7481234,
		entities.BRL: 251000.5,
	}, time.Unix(1700000000, 0))
}

func TestOneBTC(t *testing.T) {
	rates := entities.NewRates(map[entities.Currency]float64{entities.USD: 50000}, time.Now())

	got, err := Convert(1, entities.BTC, []entities.Currency{entities.USD, entities.SATS}, rates)
	require.NoError(t, err)

	assert.Equal(t, 50000.0, got[entities.USD])
	assert.Equal(t, 100000000.0, got[entities.SATS])
}

func TestSatsAreExactInverse(t *testing.T) {
	rates := snapshot()

	btc, err := ToBTC(100_000_000, entities.SATS, rates)
	require.NoError(t, err)
	assert.Equal(t, 1.0, btc)

	sats, err := FromBTC(1, entities.SATS, rates)
	require.NoError(t, err)
	assert.Equal(t, 100000000.0, sats)

	sats, err = FromBTC(0.00000001, entities.SATS, rates)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sats, 1e-9)
}

func TestRoundTrip(t *testing.T) {
	rates := snapshot()
	amounts := []float64{0.01, 1, 12.5, 999.99, 123456.789, 1e9}

	for _, c := range []entities.Currency{entities.USD, entities.EUR, entities.JPY, entities.BRL, entities.SATS, entities.BTC} {
		for _, a := range amounts {
			btc, err := ToBTC(a, c, rates)
			require.NoError(t, err)
			back, err := FromBTC(btc, c, rates)
			require.NoError(t, err)

			assert.InEpsilon(t, a, back, 1e-12, "%v %s", a, c)
		}
	}
}

func TestConvertFromFiat(t *testing.T) {
	rates := snapshot()

	got, err := Convert(25000, entities.USD, []entities.Currency{entities.BTC, entities.SATS, entities.USD, entities.EUR}, rates)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, got[entities.BTC], 1e-15)
	assert.InDelta(t, 50_000_000, got[entities.SATS], 1e-6)
	assert.Equal(t, 25000.0, got[entities.USD])
	assert.InDelta(t, 23061.725, got[entities.EUR], 1e-9)
}

func TestConvertSkipsMissingRate(t *testing.T) {
	rates := snapshot()

	got, err := Convert(1, entities.BTC, []entities.Currency{entities.GBP, entities.USD}, rates)
	require.NoError(t, err)

	_, ok := got[entities.GBP]
	assert.False(t, ok)
	assert.Equal(t, 50000.0, got[entities.USD])
}

func TestConvertErrors(t *testing.T) {
	rates := snapshot()

	_, err := Convert(-1, entities.BTC, nil, rates)
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	_, err = Convert(math.NaN(), entities.BTC, nil, rates)
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	_, err = Convert(1, entities.GBP, nil, rates)
	assert.ErrorIs(t, err, entities.ErrNoRates)

	_, err = ToBTC(1, entities.USD, nil)
	assert.ErrorIs(t, err, entities.ErrNoRates)
}
