// Package cli is the terminal front end of the converter.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	converterApp "github.com/langowen/satsconv/internal/converter/app"
	"github.com/langowen/satsconv/internal/converter/rates"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/langowen/satsconv/internal/i18n"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

var ErrUsage = errors.New("usage")

const usage = `usage: converter [flags] <command> [args]

commands:
  convert <amount> [currency]          convert into every display currency
  watch [currency]                     read amounts line by line, refresh in background
  rates [refresh]                      show the price of 1 BTC
  currencies [all|add|remove|move] ... list or edit display currencies
  settings [show|set <key> <value>|reset]
  copy <amount> [currency] [target]    print a clipboard-ready value
  install                              store the app shell for offline use
  donate <sats> [comment]              pay a Lightning donation
  lang [code]                          show or set the language
`

// Flags override configuration from the command line.
type Flags struct {
	ProxyURL string
	DBPath   string
	Lang     string
	Verbose  bool
	NoEvents bool
}

func ParseFlags(args []string, errOut io.Writer) (Flags, []string, error) {
	var f Flags

	fs := pflag.NewFlagSet("converter", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprint(errOut, usage, "\nflags:\n", fs.FlagUsages())
	}
	fs.StringVar(&f.ProxyURL, "proxy", "", "backend base URL")
	fs.StringVar(&f.DBPath, "db", "", "local database file")
	fs.StringVar(&f.Lang, "lang", "", "language for this run")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "debug logging on stderr")
	fs.BoolVar(&f.NoEvents, "no-events", false, "do not send usage events")
	fs.SetInterspersed(false)

	if err := fs.Parse(args); err != nil {
		return f, nil, errors.Wrap(ErrUsage, err.Error())
	}
	return f, fs.Args(), nil
}

type CLI struct {
	app    *converterApp.App
	out    io.Writer
	errOut io.Writer

	mu   sync.Mutex
	lang string

	donateTimeout time.Duration
	donatePoll    time.Duration
}

func New(app *converterApp.App, out, errOut io.Writer) *CLI {
	return &CLI{
		app:           app,
		out:           out,
		errOut:        errOut,
		donateTimeout: 10 * time.Minute,
		donatePoll:    2 * time.Second,
	}
}

// WithLanguage forces the message language for this run only.
func (c *CLI) WithLanguage(lang string) *CLI {
	if lang != "" {
		c.lang = c.app.Catalog.Match(lang)
	}
	return c
}

func (c *CLI) Run(ctx context.Context, args []string, in io.Reader) error {
	if len(args) == 0 {
		fmt.Fprint(c.errOut, usage)
		return ErrUsage
	}
	if c.lang == "" {
		c.lang = c.app.Language(ctx)
	}

	cmd, rest := args[0], args[1:]
	c.app.Proxy.Track(entities.EventAppOpen, map[string]string{"command": cmd, "lang": c.lang})

	switch cmd {
	case "convert":
		return c.convert(ctx, rest)
	case "watch":
		return c.watch(ctx, rest, in)
	case "rates":
		return c.rates(ctx, rest)
	case "currencies":
		return c.currencies(ctx, rest)
	case "settings":
		return c.settings(ctx, rest)
	case "copy":
		return c.copy(ctx, rest)
	case "install":
		return c.install(ctx)
	case "donate":
		return c.donate(ctx, rest)
	case "lang":
		return c.language(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	default:
		fmt.Fprint(c.errOut, usage)
		return errors.Wrapf(ErrUsage, "unknown command %q", cmd)
	}
}

func (c *CLI) t(key string, args ...interface{}) string {
	return c.app.Catalog.T(c.lang, key, args...)
}

func (c *CLI) println(w io.Writer, s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(w, s)
}

// getRates loads rates and reports stale or missing data on errOut.
func (c *CLI) getRates(ctx context.Context) (*entities.Rates, error) {
	res, err := c.app.Rates.Get(ctx)
	if err != nil {
		c.println(c.errOut, c.t(i18n.KeyRatesNone))
		c.app.Proxy.Track(entities.EventRatesRefreshFailed, nil)
		return nil, err
	}
	if res.Source == rates.SourceStale {
		c.println(c.errOut, c.t(i18n.KeyRatesStale, stamp(res.FetchedAt), reason(res.Err)))
		c.app.Proxy.Track(entities.EventRatesRefreshFailed, nil)
	}
	return res.Rates, nil
}

func (c *CLI) parseCurrency(s string) (entities.Currency, error) {
	cur, err := entities.ParseCurrency(s)
	if err != nil {
		c.println(c.errOut, c.t(i18n.KeyUnknownCurrency, s))
		return "", err
	}
	return cur, nil
}

// needArgs reports a usage error when fewer than n arguments are given.
func (c *CLI) needArgs(args []string, n int, form string) error {
	if len(args) < n {
		c.println(c.errOut, "usage: converter "+form)
		return errors.Wrap(ErrUsage, form)
	}
	return nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func upper(c entities.Currency) string {
	return strings.ToUpper(string(c))
}

func reason(err error) string {
	if err == nil {
		return "-"
	}
	return errors.Cause(err).Error()
}
