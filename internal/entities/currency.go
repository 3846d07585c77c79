package entities

import (
	"strings"

	"github.com/pkg/errors"
)

// Currency is a lower-case currency code.
type Currency string

const (
	BTC  Currency = "btc"
	SATS Currency = "sats"

	USD Currency = "usd"
	EUR Currency = "eur"
	GBP Currency = "gbp"
	JPY Currency = "jpy"
	CAD Currency = "cad"
	AUD Currency = "aud"
	CHF Currency = "chf"
	CNY Currency = "cny"
	INR Currency = "inr"
	BRL Currency = "brl"
)

const SatsPerBTC = 100_000_000

// FiatCurrencies is the fixed set of fiat codes requested from the price API.
var FiatCurrencies = []Currency{USD, EUR, GBP, JPY, CAD, AUD, CHF, CNY, INR, BRL}

var aliases = map[string]Currency{
	"sat":      SATS,
	"satoshi":  SATS,
	"satoshis": SATS,
	"bitcoin":  BTC,
	"xbt":      BTC,
}

func AllCurrencies() []Currency {
	out := make([]Currency, 0, len(FiatCurrencies)+2)
	out = append(out, BTC, SATS)
	return append(out, FiatCurrencies...)
}

func (c Currency) IsFiat() bool {
	for _, f := range FiatCurrencies {
		if f == c {
			return true
		}
	}
	return false
}

func (c Currency) Valid() bool {
	return c == BTC || c == SATS || c.IsFiat()
}

func (c Currency) String() string {
	return string(c)
}

// Symbol is the short label used in the currency grid.
func (c Currency) Symbol() string {
	switch c {
	case BTC:
		return "₿"
	case SATS:
		return "sats"
	case USD, CAD, AUD:
		return "$"
	case EUR:
		return "€"
	case GBP:
		return "£"
	case JPY, CNY:
		return "¥"
	case INR:
		return "₹"
	case BRL:
		return "R$"
	case CHF:
		return "CHF"
	}
	return strings.ToUpper(string(c))
}

func ParseCurrency(s string) (Currency, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	if a, ok := aliases[code]; ok {
		return a, nil
	}

	c := Currency(code)
	if !c.Valid() {
		return "", errors.Wrapf(ErrUnknownCurrency, "%q", s)
	}
	return c, nil
}
