// Package format renders converted amounts for display and for the clipboard.
package format

import (
	"strings"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	BTCPlaces  = 8
	FiatPlaces = 2

	displayGroup = " "
)

type Options struct {
	DecimalSeparator string
	ThousandsOnCopy  bool
}

func FromSettings(s entities.Settings) Options {
	return Options{
		DecimalSeparator: s.DecimalSeparator,
		ThousandsOnCopy:  s.ThousandsOnCopy,
	}
}

func (o Options) radix() string {
	if o.DecimalSeparator == "," {
		return ","
	}
	return "."
}

// copyGroup is the thousands separator used on copy; it is always the
// character not used as radix.
func (o Options) copyGroup() string {
	if o.radix() == "," {
		return "."
	}
	return ","
}

// Display formats value for the currency grid. Grouping is a fixed space and
// does not depend on the decimal separator.
func Display(value float64, c entities.Currency, opts Options) string {
	intPart, frac, neg := digits(value, c)
	return assemble(group(intPart, displayGroup), frac, neg, opts.radix())
}

// Copy formats value for the clipboard: no grouping unless ThousandsOnCopy.
func Copy(value float64, c entities.Currency, opts Options) string {
	intPart, frac, neg := digits(value, c)
	if opts.ThousandsOnCopy {
		intPart = group(intPart, opts.copyGroup())
	}
	return assemble(intPart, frac, neg, opts.radix())
}

// ParseAmount reads user input written with the given decimal separator.
// Spaces and the opposite separator are treated as grouping and ignored.
func ParseAmount(text, sep string) (float64, error) {
	const op = "format.ParseAmount"

	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'', '_':
			return -1
		}
		return r
	}, strings.TrimSpace(text))

	if sep == "," {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	if s == "" || strings.HasPrefix(s, "-") {
		return 0, errors.Wrapf(entities.ErrInvalidAmount, "%s: %q", op, text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(entities.ErrInvalidAmount, "%s: %q", op, text)
	}

	v, _ := d.Float64()
	return v, nil
}

func places(c entities.Currency) int32 {
	switch c {
	case entities.BTC:
		return BTCPlaces
	case entities.SATS:
		return 0
	}
	return FiatPlaces
}

func digits(value float64, c entities.Currency) (intPart, frac string, neg bool) {
	d := decimal.NewFromFloat(value)
	p := places(c)
	s := d.StringFixed(p)

	if strings.HasPrefix(s, "-") {
		s = s[1:]
		neg = true
	}

	intPart, frac, _ = strings.Cut(s, ".")
	if c == entities.BTC {
		frac = strings.TrimRight(frac, "0")
	}

	if neg && strings.Trim(intPart+frac, "0") == "" {
		neg = false
	}
	return intPart, frac, neg
}

func group(intPart, sep string) string {
	if len(intPart) <= 3 {
		return intPart
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String()
}

func assemble(intPart, frac string, neg bool, radix string) string {
	s := intPart
	if frac != "" {
		s += radix + frac
	}
	if neg {
		s = "-" + s
	}
	return s
}
