package public

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/langowen/satsconv/deploy/config"
	mwLogger "github.com/langowen/satsconv/internal/api_service/ports/http/public/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
)

type Server struct {
	Server *http.Server
	cfg    *config.Config
	rates  RatesService
	events EventService
	ipLim  *limiter.Limiter
}

// NewServer builds the router. ipLim may be nil to skip per-address limiting.
func NewServer(cfg *config.Config, rates RatesService, events EventService, ipLim *limiter.Limiter) *Server {
	s := &Server{
		cfg:    cfg,
		rates:  rates,
		events: events,
		ipLim:  ipLim,
	}

	s.Server = &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      s.routes(),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", s.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rates", s.GetRates)

		r.Group(func(r chi.Router) {
			if s.ipLim != nil {
				r.Use(stdlib.NewMiddleware(s.ipLim).Handler)
			}
			r.Post("/events", s.PostEvent)
		})
	})

	r.Get("/manifest.webmanifest", s.GetManifest)
	r.Get("/precache.json", s.GetPrecache)
	r.Get("/", s.GetIndex)
	r.Get("/index.html", s.GetIndex)
	r.Handle("/static/*", s.staticHandler())

	return r
}

func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

func StartServer(ctx context.Context, rates RatesService, events EventService, ipLim *limiter.Limiter, cfg *config.Config) <-chan struct{} {
	server := NewServer(cfg, rates, events, ipLim)

	doneChan := make(chan struct{})

	go func() {
		if err := server.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err.Error())
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err.Error())
		}

		close(doneChan)
	}()

	return doneChan
}
