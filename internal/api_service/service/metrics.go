package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satsconv_rates_cache_total",
		Help: "Rate lookups by cache outcome.",
	}, []string{"result"})

	upstreamTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satsconv_upstream_requests_total",
		Help: "Upstream provider requests by provider and status.",
	}, []string{"provider", "status"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satsconv_events_total",
		Help: "Analytics events by type and result.",
	}, []string{"type", "result"})
)
