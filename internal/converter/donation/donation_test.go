package donation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lnurlServer struct {
	srv      *httptest.Server
	polls    atomic.Int32
	settleAt int32
	amount   atomic.Value
	comment  atomic.Value
}

func newLNURLServer(t *testing.T) *lnurlServer {
	s := &lnurlServer{settleAt: 2}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/lnurlp/alice", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag":"payRequest","callback":"%s/cb","minSendable":1000,"maxSendable":100000000,"metadata":"[]","commentAllowed":5}`, s.srv.URL)
	})
	mux.HandleFunc("/.well-known/lnurlp/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ERROR","reason":"unknown user"}`))
	})
	mux.HandleFunc("/cb", func(w http.ResponseWriter, r *http.Request) {
		s.amount.Store(r.URL.Query().Get("amount"))
		s.comment.Store(r.URL.Query().Get("comment"))
		fmt.Fprintf(w, `{"pr":"lnbc10u1test","routes":[],"verify":"%s/verify/1"}`, s.srv.URL)
	})
	mux.HandleFunc("/verify/1", func(w http.ResponseWriter, r *http.Request) {
		n := s.polls.Add(1)
		fmt.Fprintf(w, `{"status":"OK","settled":%t,"pr":"lnbc10u1test"}`, n >= s.settleAt)
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *lnurlServer) address(user string) string {
	return user + "@" + strings.TrimPrefix(s.srv.URL, "http://")
}

func testClient() *Client {
	return NewClient(time.Second).WithScheme("http")
}

func TestResolveAddress(t *testing.T) {
	c := NewClient(time.Second)

	u, err := c.ResolveAddress("Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/.well-known/lnurlp/alice", u)

	for _, bad := range []string{"", "alice", "@example.com", "alice@", "a/b@example.com"} {
		_, err := c.ResolveAddress(bad)
		assert.ErrorIs(t, err, ErrInvalidAddress, bad)
	}
}

func TestInvoice(t *testing.T) {
	s := newLNURLServer(t)

	inv, err := testClient().Invoice(context.Background(), s.address("alice"), 1000, "thanks for the app")

	require.NoError(t, err)
	assert.Equal(t, "lnbc10u1test", inv.PR)
	assert.Equal(t, s.srv.URL+"/verify/1", inv.VerifyURL)
	assert.Equal(t, "1000000", s.amount.Load())
	assert.Equal(t, "thank", s.comment.Load())
}

func TestInvoiceAmountOutOfRange(t *testing.T) {
	s := newLNURLServer(t)
	c := testClient()

	_, err := c.Invoice(context.Background(), s.address("alice"), 0, "")
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = c.Invoice(context.Background(), s.address("alice"), 200_000, "")
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestInvoiceRemoteError(t *testing.T) {
	s := newLNURLServer(t)

	_, err := testClient().Invoice(context.Background(), s.address("broken"), 1000, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown user")
}

func TestWaitPaid(t *testing.T) {
	s := newLNURLServer(t)
	c := testClient()
	ctx := context.Background()

	inv, err := c.Invoice(ctx, s.address("alice"), 1000, "")
	require.NoError(t, err)

	require.NoError(t, c.WaitPaid(ctx, inv, 10*time.Millisecond))
	assert.Equal(t, int32(2), s.polls.Load())
}

func TestWaitPaidTimeout(t *testing.T) {
	s := newLNURLServer(t)
	s.settleAt = 1 << 30
	c := testClient()

	inv := &Invoice{PR: "lnbc", VerifyURL: s.srv.URL + "/verify/1"}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.WaitPaid(ctx, inv, 10*time.Millisecond)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitPaidWithoutVerify(t *testing.T) {
	err := testClient().WaitPaid(context.Background(), &Invoice{PR: "lnbc"}, time.Millisecond)

	assert.ErrorIs(t, err, ErrNoVerify)
}
