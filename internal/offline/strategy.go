package offline

import (
	"net/http"
	"strings"
)

type Strategy int

const (
	CacheFirst Strategy = iota
	NetworkFirst
	StaleWhileRevalidate
)

func (s Strategy) String() string {
	return [...]string{"cache-first", "network-first", "stale-while-revalidate"}[s]
}

// Route picks a strategy for a request.
type Route func(r *http.Request) Strategy

// DefaultRoute sends API calls network-first, keeps the shell documents fresh
// in the background and serves everything else from the cache.
func DefaultRoute(r *http.Request) Strategy {
	p := r.URL.Path
	switch {
	case strings.HasPrefix(p, "/api/"):
		return NetworkFirst
	case p == "/", p == "/index.html", p == "/manifest.webmanifest", p == "/precache.json":
		return StaleWhileRevalidate
	}
	return CacheFirst
}
