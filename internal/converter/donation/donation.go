// Package donation requests Lightning invoices from an LNURL-pay endpoint
// (LUD-06, LUD-16) and watches them settle through LUD-21 verify URLs.
package donation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidAddress   = errors.New("invalid lightning address")
	ErrAmountOutOfRange = errors.New("amount outside sendable range")
	ErrNoVerify         = errors.New("invoice cannot be verified")
)

const msatPerSat = 1000

type Client struct {
	client *http.Client
	scheme string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{Timeout: timeout},
		scheme: "https",
	}
}

// WithScheme replaces https for endpoints reached over plain http, such as
// onion services or a local regtest node.
func (c *Client) WithScheme(scheme string) *Client {
	c.scheme = scheme
	return c
}

type Invoice struct {
	PR        string
	VerifyURL string
	AmountSat int64
}

type payParams struct {
	Callback       string `json:"callback"`
	MinSendable    int64  `json:"minSendable"`
	MaxSendable    int64  `json:"maxSendable"`
	Metadata       string `json:"metadata"`
	Tag            string `json:"tag"`
	CommentAllowed int    `json:"commentAllowed"`
}

type invoiceResponse struct {
	PR     string `json:"pr"`
	Verify string `json:"verify"`
}

type verifyResponse struct {
	Settled  bool   `json:"settled"`
	Preimage string `json:"preimage"`
}

// status is the LUD-06 error envelope shared by every endpoint.
type status struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ResolveAddress turns user@domain into its LNURL-pay endpoint.
func (c *Client) ResolveAddress(address string) (string, error) {
	user, domain, found := strings.Cut(strings.TrimSpace(address), "@")
	if !found || user == "" || domain == "" || strings.ContainsAny(user, "/?#") {
		return "", errors.Wrapf(ErrInvalidAddress, "%q", address)
	}

	u := url.URL{
		Scheme: c.scheme,
		Host:   strings.ToLower(domain),
		Path:   "/.well-known/lnurlp/" + strings.ToLower(user),
	}
	return u.String(), nil
}

func (c *Client) Invoice(ctx context.Context, address string, sats int64, comment string) (*Invoice, error) {
	const op = "donation.Invoice"

	endpoint, err := c.ResolveAddress(address)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	var params payParams
	if err := c.getJSON(ctx, endpoint, &params); err != nil {
		return nil, errors.Wrap(err, op)
	}
	if params.Tag != "payRequest" || params.Callback == "" {
		return nil, errors.Errorf("%s: unexpected response tag %q", op, params.Tag)
	}

	msat := sats * msatPerSat
	if sats <= 0 || msat < params.MinSendable || msat > params.MaxSendable {
		return nil, errors.Wrapf(ErrAmountOutOfRange, "%s: %d sat not in [%d, %d] msat",
			op, sats, params.MinSendable, params.MaxSendable)
	}

	callback, err := url.Parse(params.Callback)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	q := callback.Query()
	q.Set("amount", strconv.FormatInt(msat, 10))
	if comment != "" && params.CommentAllowed > 0 {
		if r := []rune(comment); len(r) > params.CommentAllowed {
			comment = string(r[:params.CommentAllowed])
		}
		q.Set("comment", comment)
	}
	callback.RawQuery = q.Encode()

	var inv invoiceResponse
	if err := c.getJSON(ctx, callback.String(), &inv); err != nil {
		return nil, errors.Wrap(err, op)
	}
	if inv.PR == "" {
		return nil, errors.Errorf("%s: empty payment request", op)
	}

	return &Invoice{
		PR:        inv.PR,
		VerifyURL: inv.Verify,
		AmountSat: sats,
	}, nil
}

// WaitPaid polls the verify URL every interval until the invoice settles or ctx ends.
func (c *Client) WaitPaid(ctx context.Context, inv *Invoice, interval time.Duration) error {
	const op = "donation.WaitPaid"

	if inv == nil || inv.VerifyURL == "" {
		return errors.Wrap(ErrNoVerify, op)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var v verifyResponse
		if err := c.getJSON(ctx, inv.VerifyURL, &v); err != nil {
			if ctx.Err() != nil {
				return errors.Wrap(ctx.Err(), op)
			}
			return errors.Wrap(err, op)
		}
		if v.Settled {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), op)
		case <-ticker.C:
		}
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return errors.Errorf("bad response: %s", resp.Status)
	}

	var st status
	if err := json.Unmarshal(raw, &st); err == nil && strings.EqualFold(st.Status, "ERROR") {
		return errors.Errorf("remote error: %s", st.Reason)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("bad status: %s", resp.Status)
	}

	return json.Unmarshal(raw, dst)
}
