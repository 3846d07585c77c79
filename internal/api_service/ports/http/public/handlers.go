package public

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
)

const maxEventBody = 4 << 10

type RatesResponse struct {
	Rates           map[entities.Currency]float64 `json:"rates"`
	UpdatedAt       time.Time                     `json:"updated_at"`
	Provider        string                        `json:"provider"`
	Cached          bool                          `json:"cached"`
	Stale           bool                          `json:"stale,omitempty"`
	CacheAgeSeconds int64                         `json:"cache_age_seconds"`
}

type EventRequest struct {
	Type    entities.EventType `json:"type"`
	Payload map[string]string  `json:"payload"`
}

type EventResponse struct {
	ID string `json:"id"`
}

func (s *Server) GetRates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := s.rates.GetRates(ctx)
	if err != nil {
		slog.Error("Failed to get rates", "error", err.Error())
		if errors.Is(err, entities.ErrProvidersUnavailable) {
			w.Header().Set("Retry-After", "30")
			RespondWithError(w, http.StatusServiceUnavailable, "rates temporarily unavailable")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	maxAge := 0
	if !res.Stale {
		maxAge = int(math.Max(0, (s.cfg.Cache.TTL - res.Age).Seconds()))
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))

	RespondWithJSON(w, http.StatusOK, RatesResponse{
		Rates:           res.Snapshot.Rates.Values,
		UpdatedAt:       res.Snapshot.Rates.UpdatedAt,
		Provider:        res.Snapshot.Provider,
		Cached:          res.Cached,
		Stale:           res.Stale,
		CacheAgeSeconds: int64(res.Age.Seconds()),
	})
}

func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err := dec.Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "invalid event body", err.Error())
		return
	}

	ev, err := s.events.Record(ctx, req.Type, req.Payload)
	switch {
	case errors.Is(err, entities.ErrEventNotAllowed):
		RespondWithError(w, http.StatusBadRequest, "event type not allowed")
		return
	case errors.Is(err, entities.ErrRateLimited):
		RespondWithError(w, http.StatusTooManyRequests, "too many events")
		return
	case err != nil:
		slog.Error("Failed to record event", "type", req.Type, "error", err.Error())
		RespondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	RespondWithJSON(w, http.StatusAccepted, EventResponse{ID: ev.ID.String()})
}

func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err.Error())
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	errorText := message
	if len(details) > 0 {
		errorText += "\nDetails: " + details[0]
	}

	if _, err := w.Write([]byte(errorText)); err != nil {
		slog.Error("Failed to write error response", "error", err.Error())
	}
}
