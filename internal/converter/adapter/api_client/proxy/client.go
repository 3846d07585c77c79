// Package proxy talks to the satsconv backend: rates, events and the
// installable shell.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/langowen/satsconv/internal/offline"
	"github.com/pkg/errors"
)

const (
	pathRates    = "/api/rates"
	pathEvents   = "/api/events"
	pathManifest = "/manifest.webmanifest"
	pathPrecache = "/precache.json"
)

// ErrOfflineCopy reports a response replayed from the offline cache.
var ErrOfflineCopy = errors.New("response served from offline cache")

type Client struct {
	client     *http.Client
	baseURL    string
	sendEvents bool

	wg sync.WaitGroup
}

// NewClient sends every request through transport, normally an *offline.Cache.
func NewClient(baseURL string, transport http.RoundTripper, timeout time.Duration, sendEvents bool) *Client {
	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		sendEvents: sendEvents,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type ratesResponse struct {
	Rates     map[entities.Currency]float64 `json:"rates"`
	UpdatedAt time.Time                     `json:"updated_at"`
	Provider  string                        `json:"provider"`
	Stale     bool                          `json:"stale"`
}

// FetchRates returns ErrOfflineCopy when the network was unreachable so the
// caller keeps its own last snapshot instead of treating old data as fresh.
func (c *Client) FetchRates(ctx context.Context) (*entities.Rates, error) {
	const op = "proxy.FetchRates"

	var body ratesResponse
	resp, err := c.getJSON(ctx, pathRates, &body)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if resp.Header.Get(offline.HeaderCache) != "" {
		return nil, errors.Wrap(ErrOfflineCopy, op)
	}
	if body.Stale {
		slog.Debug("proxy served stale rates", "provider", body.Provider, "updated_at", body.UpdatedAt)
	}

	rates := entities.NewRates(body.Rates, body.UpdatedAt)
	if !rates.HasFiat() {
		return nil, errors.Wrap(entities.ErrNoRates, op)
	}
	return rates, nil
}

type eventRequest struct {
	Type    entities.EventType `json:"type"`
	Payload map[string]string  `json:"payload,omitempty"`
}

func (c *Client) SendEvent(ctx context.Context, t entities.EventType, payload map[string]string) error {
	const op = "proxy.SendEvent"

	raw, err := json.Marshal(eventRequest{Type: t, Payload: payload})
	if err != nil {
		return errors.Wrap(err, op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathEvents, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, op)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return errors.Wrap(entities.ErrRateLimited, op)
	case http.StatusBadRequest:
		return errors.Wrap(entities.ErrEventNotAllowed, op)
	default:
		return errors.Errorf("%s: bad status: %s", op, resp.Status)
	}
}

// Track sends an event in the background. Failures are logged at debug level only.
func (c *Client) Track(t entities.EventType, payload map[string]string) {
	if !c.sendEvents {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		timeout := c.client.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := c.SendEvent(ctx, t, payload); err != nil {
			slog.Debug("event not delivered", "type", t, "error", err.Error())
		}
	}()
}

// Flush waits for events still in flight.
func (c *Client) Flush() {
	c.wg.Wait()
}

type Manifest struct {
	Name       string `json:"name"`
	ShortName  string `json:"short_name"`
	StartURL   string `json:"start_url"`
	Display    string `json:"display"`
	ThemeColor string `json:"theme_color"`
}

func (c *Client) Manifest(ctx context.Context) (*Manifest, error) {
	const op = "proxy.Manifest"

	var m Manifest
	if _, err := c.getJSON(ctx, pathManifest, &m); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return &m, nil
}

// PrecacheList returns the shell paths to store on install.
func (c *Client) PrecacheList(ctx context.Context) ([]string, error) {
	const op = "proxy.PrecacheList"

	var paths []string
	if _, err := c.getJSON(ctx, pathPrecache, &paths); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return paths, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst interface{}) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("bad status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return nil, err
	}
	return resp, nil
}
