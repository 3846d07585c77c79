package apiApp

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/langowen/satsconv/deploy/config"
	"github.com/langowen/satsconv/internal/api_service/adapter/api_client/coin_desk"
	"github.com/langowen/satsconv/internal/api_service/adapter/api_client/coingecko"
	"github.com/langowen/satsconv/internal/api_service/adapter/storage/postgres"
	"github.com/langowen/satsconv/internal/api_service/adapter/storage/redis"
	"github.com/langowen/satsconv/internal/api_service/ports/http/public"
	"github.com/langowen/satsconv/internal/api_service/service"
	"github.com/langowen/satsconv/internal/api_service/warmer"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
	redisPack "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"golang.org/x/time/rate"
)

type ApiApp struct {
	cfg *config.Config
}

func NewApiApp(cfg *config.Config) *ApiApp {
	return &ApiApp{cfg: cfg}
}

func (a *ApiApp) Start(ctx context.Context) <-chan struct{} {
	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("port", a.cfg.HTTPServer.Port, "db_enabled", a.cfg.Storage.Enabled).Info("starting server")

	rdStorage := a.initRedis(ctx)
	slog.Info("Redis client initialized")

	var storage *postgres.Storage
	if a.cfg.Storage.Enabled {
		storage = a.initDatabase(ctx)
		slog.Info("Storage initialized")
	}

	ratesService, eventService := a.initService(rdStorage, storage)
	slog.Info("Service initialized")

	if a.cfg.Cache.WarmInterval > 0 {
		go a.startWarmer(ctx, ratesService)
		slog.Info("Cache warmer started", "interval", a.cfg.Cache.WarmInterval)
	}

	serverDone := a.StartServer(ctx, ratesService, eventService, a.initIPLimiter(rdStorage))
	slog.Info("server started")

	done := make(chan struct{})
	go func() {
		<-serverDone
		if storage != nil {
			storage.Close()
		}
		if err := rdStorage.Close(); err != nil {
			slog.Error("Failed to close Redis", "error", err.Error())
		}
		close(done)
	}()

	return done
}

func (a *ApiApp) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *ApiApp) initDatabase(ctx context.Context) *postgres.Storage {
	pgStorage, err := postgres.InitStorage(ctx, postgres.DSN(a.cfg.Storage), a.cfg.Storage.Timeout)
	if err != nil {
		log.Fatalln("Failed to initialize PostgresSQL storage", "error", err)
	}

	return pgStorage
}

func (a *ApiApp) initRedis(ctx context.Context) *redis.Storage {
	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	rdStorage, err := redis.InitStorage(ctx, options)
	if err != nil {
		log.Fatalln("Failed to initialize Redis storage", "error", err)
	}

	return rdStorage
}

func (a *ApiApp) providers() []service.Provider {
	f := a.cfg.Fetcher

	providers := []service.Provider{coingecko.NewClient(f.URL, "", f.Timeout)}
	if f.ProAPIKey != "" {
		providers = append(providers, coingecko.NewClient(f.ProURL, f.ProAPIKey, f.Timeout))
	}
	providers = append(providers, coin_desk.NewHTTPClient(f.SecondaryURL, f.Timeout))

	return providers
}

func (a *ApiApp) fiat() []entities.Currency {
	var fiat []entities.Currency
	for _, code := range a.cfg.Split("ValueRate") {
		c, err := entities.ParseCurrency(code)
		if err != nil || !c.IsFiat() {
			slog.Warn("Skipping configured currency", "currency", code)
			continue
		}
		fiat = append(fiat, c)
	}
	if len(fiat) == 0 {
		return entities.FiatCurrencies
	}
	return fiat
}

func (a *ApiApp) newLimiter(rdStorage *redis.Storage, formatted, prefix string) *limiter.Limiter {
	limit, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		log.Fatalln("Invalid rate limit", "rate", formatted, "error", err)
	}

	store, err := sredis.NewStoreWithOptions(rdStorage.Client(), limiter.StoreOptions{
		Prefix:   prefix,
		MaxRetry: 3,
	})
	if err != nil {
		log.Fatalln("Failed to initialize limiter store", "error", err)
	}

	return limiter.New(store, limit)
}

func (a *ApiApp) initIPLimiter(rdStorage *redis.Storage) *limiter.Limiter {
	return a.newLimiter(rdStorage, a.cfg.Events.IPRate, "satsconv:limit:ip")
}

func (a *ApiApp) initService(rdStorage *redis.Storage, pgStorage *postgres.Storage) (*service.Service, *service.EventService) {
	var (
		archive service.Storage
		events  service.EventStorage
	)
	if pgStorage != nil {
		archive = pgStorage
		events = pgStorage
	}

	providers := a.providers()
	ratesService, err := service.NewService(providers, rdStorage, archive,
		service.WithTTL(a.cfg.Cache.TTL, a.cfg.Cache.StaleTTL),
		service.WithFetchTimeout(a.cfg.Fetcher.Timeout*time.Duration(len(providers))),
		service.WithFiat(a.fiat()),
		service.WithLimiter(rate.NewLimiter(rate.Limit(a.cfg.Fetcher.RPS), a.cfg.Fetcher.Burst)),
	)
	if err != nil {
		log.Fatalln("Failed to initialize service rate", "error", err)
	}

	eventService := service.NewEventService(events, a.newLimiter(rdStorage, a.cfg.Events.Rate, "satsconv:limit:event"))

	return ratesService, eventService
}

func (a *ApiApp) startWarmer(ctx context.Context, ratesService *service.Service) {
	w := warmer.NewWarmer(ratesService, a.cfg.Cache.WarmInterval, a.cfg.Fetcher.Timeout*time.Duration(len(a.providers())))
	if err := w.StartWarmer(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Cache warmer stopped", "error", err.Error())
	}
}

func (a *ApiApp) StartServer(ctx context.Context, rates *service.Service, events *service.EventService, ipLim *limiter.Limiter) <-chan struct{} {
	serverDone := public.StartServer(ctx, rates, events, ipLim, a.cfg)

	return serverDone
}
