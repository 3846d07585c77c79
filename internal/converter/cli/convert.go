package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/langowen/satsconv/internal/convert"
	"github.com/langowen/satsconv/internal/converter/rates"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/langowen/satsconv/internal/format"
	"github.com/langowen/satsconv/internal/i18n"
	"github.com/pkg/errors"
)

func (c *CLI) convert(ctx context.Context, args []string) error {
	if err := c.needArgs(args, 1, "convert <amount> [currency]"); err != nil {
		return err
	}

	from := c.app.SelectedCurrency(ctx)
	if len(args) > 1 {
		cur, err := c.parseCurrency(args[1])
		if err != nil {
			return err
		}
		from = cur
	}

	if err := c.render(ctx, args[0], from); err != nil {
		return err
	}

	if err := c.app.Local.SetSelectedCurrency(ctx, from); err != nil {
		c.println(c.errOut, err.Error())
	}
	return nil
}

// render converts text from the given currency and prints the grid.
func (c *CLI) render(ctx context.Context, text string, from entities.Currency) error {
	st := c.app.Settings.Get()

	amount, err := format.ParseAmount(text, st.DecimalSeparator)
	if err != nil {
		c.println(c.errOut, c.t(i18n.KeyInvalidAmount, text))
		return err
	}

	snap, err := c.getRates(ctx)
	if err != nil {
		return err
	}

	values, err := convert.Convert(amount, from, st.Currencies, snap)
	if err != nil {
		return err
	}

	c.println(c.out, grid(st, values, from))
	c.app.Proxy.Track(entities.EventConversion, map[string]string{
		"from":    string(from),
		"targets": strconv.Itoa(len(values)),
	})
	return nil
}

// grid lays out one row per display currency; compact mode uses a single line.
func grid(st entities.Settings, values map[entities.Currency]float64, from entities.Currency) string {
	opts := format.FromSettings(st)

	cells := make([]string, len(st.Currencies))
	width := 0
	for i, cur := range st.Currencies {
		v, ok := values[cur]
		if !ok {
			cells[i] = "-"
		} else {
			cells[i] = format.Display(v, cur, opts)
		}
		if len(cells[i]) > width {
			width = len(cells[i])
		}
	}

	var b strings.Builder
	for i, cur := range st.Currencies {
		if st.CompactMode {
			if i > 0 {
				b.WriteString(" | ")
			}
			fmt.Fprintf(&b, "%s %s", upper(cur), cells[i])
			continue
		}

		mark := " "
		if cur == from {
			mark = ">"
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %-4s %*s", mark, upper(cur), width, cells[i])
	}
	return b.String()
}

func (c *CLI) rates(ctx context.Context, args []string) error {
	var (
		res ratesView
		err error
	)
	if len(args) > 0 && args[0] == "refresh" {
		res, err = c.refresh(ctx)
	} else {
		res, err = c.current(ctx)
	}
	if err != nil {
		return err
	}

	st := c.app.Settings.Get()
	opts := format.FromSettings(st)
	for _, cur := range st.Currencies {
		v, ok := res.rates.Rate(cur)
		if !ok {
			continue
		}
		c.println(c.out, fmt.Sprintf("1 BTC = %s %s", format.Display(v, cur, opts), upper(cur)))
	}
	c.println(c.errOut, c.t(i18n.KeyRatesUpdated, stamp(res.rates.UpdatedAt), res.source))
	return nil
}

type ratesView struct {
	rates  *entities.Rates
	source string
}

func (c *CLI) current(ctx context.Context) (ratesView, error) {
	res, err := c.app.Rates.Get(ctx)
	if err != nil {
		c.println(c.errOut, c.t(i18n.KeyRatesNone))
		return ratesView{}, err
	}
	return ratesView{rates: res.Rates, source: string(res.Source)}, nil
}

func (c *CLI) refresh(ctx context.Context) (ratesView, error) {
	res, err := c.app.Rates.Refresh(ctx)
	if err != nil {
		c.println(c.errOut, c.t(i18n.KeyRatesNone))
		c.app.Proxy.Track(entities.EventRatesRefreshFailed, nil)
		return ratesView{}, err
	}
	if res.Source == rates.SourceStale {
		c.println(c.errOut, c.t(i18n.KeyRatesStale, stamp(res.FetchedAt), reason(res.Err)))
		c.app.Proxy.Track(entities.EventRatesRefreshFailed, nil)
	}
	return ratesView{rates: res.Rates, source: string(res.Source)}, nil
}

func (c *CLI) copy(ctx context.Context, args []string) error {
	if err := c.needArgs(args, 1, "copy <amount> [currency] [target]"); err != nil {
		return err
	}

	st := c.app.Settings.Get()
	from := c.app.SelectedCurrency(ctx)
	if len(args) > 1 {
		cur, err := c.parseCurrency(args[1])
		if err != nil {
			return err
		}
		from = cur
	}

	target := entities.Currency("")
	if len(args) > 2 {
		cur, err := c.parseCurrency(args[2])
		if err != nil {
			return err
		}
		target = cur
	} else {
		for _, cur := range st.Currencies {
			if cur != from {
				target = cur
				break
			}
		}
	}

	amount, err := format.ParseAmount(args[0], st.DecimalSeparator)
	if err != nil {
		c.println(c.errOut, c.t(i18n.KeyInvalidAmount, args[0]))
		return err
	}

	snap, err := c.getRates(ctx)
	if err != nil {
		return err
	}

	btc, err := convert.ToBTC(amount, from, snap)
	if err != nil {
		return err
	}
	value, err := convert.FromBTC(btc, target, snap)
	if err != nil {
		return errors.Wrapf(err, "copy %s", target)
	}

	text := format.Copy(value, target, format.FromSettings(st))
	c.println(c.out, text)
	c.println(c.errOut, c.t(i18n.KeyCopyDone, text))
	c.app.Proxy.Track(entities.EventCopy, map[string]string{"currency": string(target)})
	return nil
}
