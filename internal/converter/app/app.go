// Package converterApp builds the client: every store, service and transport
// is created once here and shared by the commands.
package converterApp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/langowen/satsconv/deploy/config"
	"github.com/langowen/satsconv/internal/clock"
	"github.com/langowen/satsconv/internal/converter/adapter/api_client/proxy"
	"github.com/langowen/satsconv/internal/converter/adapter/storage/local"
	"github.com/langowen/satsconv/internal/converter/donation"
	"github.com/langowen/satsconv/internal/converter/poller"
	"github.com/langowen/satsconv/internal/converter/rates"
	"github.com/langowen/satsconv/internal/converter/settings"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/langowen/satsconv/internal/i18n"
	"github.com/langowen/satsconv/internal/offline"
	"github.com/pkg/errors"
)

type App struct {
	Cfg      *config.Config
	Clock    clock.Clock
	Local    *local.Storage
	Settings *settings.Store
	Rates    *rates.Service
	Offline  *offline.Cache
	Proxy    *proxy.Client
	Activity *poller.ActivityTracker
	Catalog  *i18n.Catalog
	Donation *donation.Client
}

// New opens the local store and wires the services. Close releases them.
func New(ctx context.Context, cfg *config.Config, clk clock.Clock) (*App, error) {
	const op = "converterApp.New"

	if clk == nil {
		clk = clock.Real()
	}

	store, err := local.InitStorage(ctx, cfg.Client.DBPath)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	cache := offline.NewCache(store, nil,
		offline.WithClock(clk),
		offline.WithNetworkTimeout(cfg.Client.OfflineTimeout),
	)
	client := proxy.NewClient(cfg.Client.ProxyURL, cache, cfg.Fetcher.Timeout, cfg.Client.SendEvents)

	ratesService := rates.NewService(client, store, clk, cfg.Cache.TTL).
		WithFetchTimeout(cfg.Fetcher.Timeout + cfg.Client.OfflineTimeout)
	if err := ratesService.Load(ctx); err != nil {
		slog.Warn("Failed to load saved rates", "error", err.Error())
	}

	return &App{
		Cfg:      cfg,
		Clock:    clk,
		Local:    store,
		Settings: settings.Load(ctx, store),
		Rates:    ratesService,
		Offline:  cache,
		Proxy:    client,
		Activity: poller.NewActivityTracker(clk, cfg.Client.ActivityWindow),
		Catalog:  i18n.New(),
		Donation: donation.NewClient(cfg.Fetcher.Timeout),
	}, nil
}

// InitLogger keeps stdout for command output.
func InitLogger(w io.Writer, verbose bool) {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

// Language returns the stored language, or the best match for the
// environment locale when none was chosen yet.
func (a *App) Language(ctx context.Context) string {
	lang, err := a.Local.Language(ctx)
	if err == nil && lang != "" {
		return a.Catalog.Match(lang)
	}
	if !errors.Is(err, entities.ErrNotFound) && err != nil {
		slog.Warn("Failed to read language", "error", err.Error())
	}
	return a.Catalog.Match(envLocale())
}

func (a *App) SetLanguage(ctx context.Context, lang string) (string, error) {
	matched := a.Catalog.Match(lang)
	if err := a.Local.SetLanguage(ctx, matched); err != nil {
		return "", errors.Wrap(err, "converterApp.SetLanguage")
	}
	return matched, nil
}

// SelectedCurrency is the input currency used when a command names none.
func (a *App) SelectedCurrency(ctx context.Context) entities.Currency {
	c, err := a.Local.SelectedCurrency(ctx)
	if err != nil {
		return entities.BTC
	}
	return c
}

func (a *App) Close() error {
	a.Proxy.Flush()
	a.Offline.Wait()
	return a.Local.Close()
}

// envLocale reads the POSIX locale, e.g. de_DE.UTF-8 becomes de-DE.
func envLocale() string {
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(k)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		v, _, _ = strings.Cut(v, "@")
		return strings.ReplaceAll(v, "_", "-")
	}
	return i18n.Default
}
