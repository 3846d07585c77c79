// Package offline implements the offline caching layer: an http.RoundTripper
// that applies cache-first, network-first or stale-while-revalidate per request
// on top of a persistent response store.
package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/langowen/satsconv/internal/clock"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
)

const (
	HeaderCache = "X-Offline-Cache"

	cacheHit         = "hit"
	cacheRevalidated = "stale"
)

type Cache struct {
	store   ResponseStore
	next    http.RoundTripper
	route   Route
	clock   clock.Clock
	timeout time.Duration

	wg sync.WaitGroup
}

type Option func(c *Cache)

func WithRoute(r Route) Option {
	return func(c *Cache) { c.route = r }
}

func WithClock(clk clock.Clock) Option {
	return func(c *Cache) { c.clock = clk }
}

// WithNetworkTimeout bounds network attempts made by NetworkFirst and
// background revalidation.
func WithNetworkTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

func NewCache(store ResponseStore, next http.RoundTripper, opts ...Option) *Cache {
	if next == nil {
		next = http.DefaultTransport
	}
	c := &Cache{
		store:   store,
		next:    next,
		route:   DefaultRoute,
		clock:   clock.Real(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.next.RoundTrip(req)
	}

	switch c.route(req) {
	case NetworkFirst:
		return c.networkFirst(req)
	case StaleWhileRevalidate:
		return c.staleWhileRevalidate(req)
	default:
		return c.cacheFirst(req)
	}
}

// Wait blocks until background revalidations have finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Precache fetches and stores every path under baseURL. It stops at the
// first failure so a partial shell is never reported as installed.
func (c *Cache) Precache(ctx context.Context, baseURL string, paths []string) error {
	const op = "offline.Cache.Precache"

	for _, p := range paths {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+p, nil)
		if err != nil {
			return errors.Wrap(err, op)
		}

		e, err := c.fetch(req)
		if err != nil {
			return errors.Wrapf(err, "%s: %s", op, p)
		}
		if !ok(e.Status) {
			return errors.Errorf("%s: %s: bad status %d", op, p, e.Status)
		}
		if err := c.put(req, e); err != nil {
			return errors.Wrap(err, op)
		}
	}

	slog.Debug("shell precached", "count", len(paths))
	return nil
}

func (c *Cache) cacheFirst(req *http.Request) (*http.Response, error) {
	if e, found := c.lookup(req); found {
		return c.respond(req, e, cacheHit), nil
	}
	return c.fetchAndStore(req)
}

func (c *Cache) networkFirst(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), c.timeout)
	defer cancel()

	e, err := c.fetch(req.WithContext(ctx))
	if err == nil && e.Status < http.StatusInternalServerError {
		if ok(e.Status) {
			if perr := c.put(req, e); perr != nil {
				slog.Warn("failed to store response", "url", req.URL.String(), "error", perr.Error())
			}
		}
		return c.respond(req, e, ""), nil
	}

	if cached, found := c.lookup(req); found {
		slog.Debug("network failed, serving cached response", "url", req.URL.String(), "error", err.Error())
		return c.respond(req, cached, cacheHit), nil
	}
	if err != nil {
		return nil, err
	}
	return c.respond(req, e, ""), nil
}

func (c *Cache) staleWhileRevalidate(req *http.Request) (*http.Response, error) {
	e, found := c.lookup(req)
	if !found {
		return c.fetchAndStore(req)
	}

	bg := req.Clone(context.WithoutCancel(req.Context()))
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(bg.Context(), c.timeout)
		defer cancel()

		if _, err := c.fetchAndStore(bg.WithContext(ctx)); err != nil {
			slog.Debug("background revalidation failed", "url", bg.URL.String(), "error", err.Error())
		}
	}()

	return c.respond(req, e, cacheRevalidated), nil
}

func (c *Cache) fetchAndStore(req *http.Request) (*http.Response, error) {
	e, err := c.fetch(req)
	if err != nil {
		return nil, err
	}
	if ok(e.Status) {
		if err := c.put(req, e); err != nil {
			slog.Warn("failed to store response", "url", req.URL.String(), "error", err.Error())
		}
	}
	return c.respond(req, e, ""), nil
}

// fetch reads the whole body so the response outlives the request context.
func (c *Cache) fetch(req *http.Request) (*Entry, error) {
	const op = "offline.Cache.fetch"

	resp, err := c.next.RoundTrip(req)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return &Entry{
		URL:      req.URL.String(),
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: c.clock.Now(),
	}, nil
}

func (c *Cache) lookup(req *http.Request) (*Entry, bool) {
	e, err := c.store.GetResponse(req.Context(), key(req))
	if err != nil {
		if !errors.Is(err, entities.ErrNotFound) {
			slog.Warn("response cache read failed", "url", req.URL.String(), "error", err.Error())
		}
		return nil, false
	}
	return e, true
}

func (c *Cache) put(req *http.Request, e *Entry) error {
	return c.store.PutResponse(req.Context(), key(req), e)
}

func key(req *http.Request) string {
	u := *req.URL
	u.Fragment = ""
	return u.String()
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

func (c *Cache) respond(req *http.Request, e *Entry, cacheState string) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if cacheState != "" {
		header.Set(HeaderCache, cacheState)
		header.Set("Age", strconv.Itoa(int(c.clock.Now().Sub(e.StoredAt).Seconds())))
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
