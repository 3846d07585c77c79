package coin_desk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/pkg/errors"
)

const Name = "cryptocompare"

// HTTPClient talks to the CryptoCompare single-symbol price endpoint, which
// answers with a flat {"USD": 64000.1, ...} object.
type HTTPClient struct {
	client *http.Client
	url    string
	now    func() time.Time
}

func NewHTTPClient(apiURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		url:    apiURL,
		now:    time.Now,
	}
}

func (c *HTTPClient) Name() string {
	return Name
}

func (c *HTTPClient) FetchRates(ctx context.Context, fiat []entities.Currency) (*entities.Rates, error) {
	const op = "coin_desk.FetchRates"

	apiURL, err := c.getURL(fiat)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	result, err := c.ApiClient(ctx, apiURL)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	values := make(map[entities.Currency]float64, len(result))
	for code, v := range result {
		values[entities.Currency(strings.ToLower(code))] = v
	}

	rates := entities.NewRates(values, c.now())
	if !rates.HasFiat() {
		return nil, errors.Wrap(entities.ErrNoRates, op)
	}
	return rates, nil
}

func (c *HTTPClient) ApiClient(ctx context.Context, url string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api_client get error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body error: %w", err)
	}

	// Errors come back as 200 with {"Response":"Error","Message":...}.
	var apiErr struct {
		Response string `json:"Response"`
		Message  string `json:"Message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Response == "Error" {
		return nil, fmt.Errorf("api error: %s", apiErr.Message)
	}

	var result map[string]float64
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}
	return result, nil
}

func (c *HTTPClient) getURL(fiat []entities.Currency) (string, error) {
	const op = "coin_desk.getURL"

	if len(fiat) == 0 {
		return "", fmt.Errorf("%s: empty currency list", op)
	}

	tsyms := make([]string, len(fiat))
	for i, f := range fiat {
		tsyms[i] = strings.ToUpper(string(f))
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return "", errors.Wrap(err, op)
	}

	q := u.Query()
	q.Set("fsym", "BTC")
	q.Set("tsyms", strings.Join(tsyms, ","))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
