// Package coingecko fetches BTC prices from the CoinGecko simple/price API.
// The same client serves the free and the paid (Pro) endpoints.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
)

const (
	NameFree = "coingecko"
	NamePro  = "coingecko-pro"

	assetID      = "bitcoin"
	headerAPIKey = "x-cg-pro-api-key"
)

type Client struct {
	client *http.Client
	url    string
	apiKey string
	now    func() time.Time
}

func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{Timeout: timeout},
		url:    apiURL,
		apiKey: apiKey,
		now:    time.Now,
	}
}

func (c *Client) Name() string {
	if c.apiKey != "" {
		return NamePro
	}
	return NameFree
}

// response is keyed by asset id and then by currency code.
type response map[string]map[string]float64

func (c *Client) FetchRates(ctx context.Context, fiat []entities.Currency) (*entities.Rates, error) {
	const op = "coingecko.FetchRates"

	apiURL, err := c.getURL(fiat)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s: bad status: %s", op, resp.Status)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, op)
	}

	prices, ok := body[assetID]
	if !ok {
		return nil, errors.Wrapf(entities.ErrNoRates, "%s: no %s in response", op, assetID)
	}

	updated := c.now()
	values := make(map[entities.Currency]float64, len(prices))
	for code, v := range prices {
		if code == "last_updated_at" {
			if v > 0 {
				updated = time.Unix(int64(v), 0).UTC()
			}
			continue
		}
		values[entities.Currency(code)] = v
	}

	rates := entities.NewRates(values, updated)
	if !rates.HasFiat() {
		return nil, errors.Wrap(entities.ErrNoRates, op)
	}
	return rates, nil
}

func (c *Client) getURL(fiat []entities.Currency) (string, error) {
	if len(fiat) == 0 {
		return "", fmt.Errorf("empty currency list")
	}

	vs := make([]string, len(fiat))
	for i, f := range fiat {
		vs[i] = string(f)
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("ids", assetID)
	q.Set("vs_currencies", strings.Join(vs, ","))
	q.Set("include_last_updated_at", "true")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
