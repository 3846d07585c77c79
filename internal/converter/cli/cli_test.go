package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/langowen/satsconv/deploy/config"
	converterApp "github.com/langowen/satsconv/internal/converter/app"
	"github.com/langowen/satsconv/internal/converter/donation"
	"github.com/langowen/satsconv/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type backend struct {
	srv       *httptest.Server
	down      atomic.Bool
	rateCalls atomic.Int32
	paid      atomic.Bool

	mu     sync.Mutex
	events []string
}

func newBackend(t *testing.T) *backend {
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/rates", func(w http.ResponseWriter, r *http.Request) {
		b.rateCalls.Add(1)
		if b.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"rates":{"btc":1,"sats":100000000,"usd":50000,"eur":46000.5},"updated_at":"2024-05-01T12:00:00Z","provider":"coingecko","cached":false,"cache_age_seconds":0}`)
	})
	mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.events = append(b.events, string(body))
		b.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/manifest.webmanifest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name":"Sats Converter","short_name":"Sats","start_url":"/","display":"standalone"}`)
	})
	mux.HandleFunc("/precache.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `["/","/manifest.webmanifest","/static/app.css"]`)
	})
	mux.HandleFunc("/static/app.css", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "body{}")
	})
	mux.HandleFunc("/.well-known/lnurlp/tips", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag":"payRequest","callback":"%s/lnurl/cb","minSendable":1000,"maxSendable":1000000000,"metadata":"[]"}`, b.srv.URL)
	})
	mux.HandleFunc("/lnurl/cb", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"pr":"lnbc210n1donation","verify":"%s/lnurl/verify"}`, b.srv.URL)
	})
	mux.HandleFunc("/lnurl/verify", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"OK","settled":%t}`, b.paid.Load())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "<html></html>")
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		start := strings.Index(e, `"type":"`) + len(`"type":"`)
		end := strings.Index(e[start:], `"`)
		out = append(out, e[start:start+end])
	}
	return out
}

type CLITestSuite struct {
	suite.Suite
	backend *backend
	app     *converterApp.App
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func (s *CLITestSuite) SetupTest() {
	s.backend = newBackend(s.T())

	cfg := &config.Config{
		Fetcher: config.Fetcher{Timeout: 2 * time.Second},
		Cache:   config.Cache{TTL: time.Minute},
		Client: config.Client{
			ProxyURL:       s.backend.srv.URL,
			DBPath:         filepath.Join(s.T().TempDir(), "client.db"),
			PollInterval:   time.Hour,
			ActivityWindow: 5 * time.Minute,
			Debounce:       5 * time.Millisecond,
			OfflineTimeout: time.Second,
			DonateAddress:  "tips@" + strings.TrimPrefix(s.backend.srv.URL, "http://"),
			SendEvents:     true,
		},
	}

	app, err := converterApp.New(context.Background(), cfg, nil)
	s.Require().NoError(err)
	app.Donation = donation.NewClient(cfg.Fetcher.Timeout).WithScheme("http")
	s.app = app

	s.out = &bytes.Buffer{}
	s.errOut = &bytes.Buffer{}
}

func (s *CLITestSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *CLITestSuite) run(args ...string) error {
	return s.runWithInput("", args...)
}

func (s *CLITestSuite) runWithInput(input string, args ...string) error {
	s.out.Reset()
	s.errOut.Reset()
	c := New(s.app, s.out, s.errOut).WithLanguage("en")
	c.donatePoll = 5 * time.Millisecond
	c.donateTimeout = 200 * time.Millisecond
	return c.Run(context.Background(), args, strings.NewReader(input))
}

func (s *CLITestSuite) TestConvertGrid() {
	s.Require().NoError(s.run("convert", "1"))

	lines := strings.Split(s.out.String(), "\n")
	s.Contains(lines[0], "BTC")
	s.True(strings.HasPrefix(lines[0], ">"))
	s.Contains(s.out.String(), "100 000 000")
	s.Contains(s.out.String(), "50 000.00")
	s.Contains(s.out.String(), "46 000.50")
}

func (s *CLITestSuite) TestConvertFromFiatRemembersCurrency() {
	s.Require().NoError(s.run("convert", "25000", "usd"))
	s.Contains(s.out.String(), "0.5")
	s.Contains(s.out.String(), "50 000 000")

	s.Equal(entities.USD, s.app.SelectedCurrency(context.Background()))

	s.Require().NoError(s.run("convert", "50000"))
	s.Contains(s.out.String(), "100 000 000")
}

func (s *CLITestSuite) TestConvertUsesCachedRates() {
	s.Require().NoError(s.run("convert", "1"))
	s.Require().NoError(s.run("convert", "2"))

	s.Equal(int32(1), s.backend.rateCalls.Load())
}

func (s *CLITestSuite) TestConvertStaleRates() {
	s.Require().NoError(s.run("convert", "1"))

	s.backend.down.Store(true)
	s.Require().NoError(s.run("rates", "refresh"))
	s.Contains(s.out.String(), "1 BTC = 50 000.00 USD")
	s.Contains(s.errOut.String(), "stale")
}

func (s *CLITestSuite) TestConvertWithoutRates() {
	s.backend.down.Store(true)

	err := s.run("convert", "1")

	s.ErrorIs(err, entities.ErrNoRates)
	s.Contains(s.errOut.String(), "No exchange rates available")
}

func (s *CLITestSuite) TestConvertInvalidInput() {
	s.ErrorIs(s.run("convert", "abc"), entities.ErrInvalidAmount)
	s.Contains(s.errOut.String(), "Invalid amount: abc")

	s.ErrorIs(s.run("convert", "1", "doge"), entities.ErrUnknownCurrency)
	s.Contains(s.errOut.String(), "Unknown currency: doge")

	s.ErrorIs(s.run("convert"), ErrUsage)
	s.ErrorIs(s.run("frobnicate"), ErrUsage)
}

func (s *CLITestSuite) TestCompactAndSeparator() {
	s.Require().NoError(s.run("settings", "set", "compact", "true"))
	s.Require().NoError(s.run("settings", "set", "separator", ","))

	s.Require().NoError(s.run("convert", "1,5"))

	s.Equal("BTC 1,5 | SATS 150 000 000 | USD 75 000,00 | EUR 69 000,75\n", s.out.String())
}

func (s *CLITestSuite) TestCopy() {
	s.Require().NoError(s.run("copy", "1", "btc", "usd"))
	s.Equal("50000.00\n", s.out.String())
	s.Contains(s.errOut.String(), "Copied: 50000.00")

	s.Require().NoError(s.run("settings", "set", "thousands", "true"))
	s.Require().NoError(s.run("copy", "1", "btc", "usd"))
	s.Equal("50,000.00\n", s.out.String())

	s.Require().NoError(s.run("copy", "1", "btc"))
	s.Equal("100,000,000\n", s.out.String())
}

func (s *CLITestSuite) TestCurrencies() {
	s.Require().NoError(s.run("currencies", "add", "jpy"))
	s.Contains(s.out.String(), "JPY added")

	s.Require().NoError(s.run("currencies", "move", "jpy", "1"))
	s.Equal(entities.JPY, s.app.Settings.Get().Currencies[0])

	s.Require().NoError(s.run("currencies", "remove", "sats"))
	s.NotContains(s.app.Settings.Get().Currencies, entities.SATS)

	s.Require().NoError(s.run("currencies"))
	s.True(strings.HasPrefix(s.out.String(), "1. JPY"))

	s.Require().NoError(s.run("currencies", "add", "gbp"))
	s.Require().NoError(s.run("currencies", "add", "cad"))
	s.Require().NoError(s.run("currencies", "add", "aud"))
	s.Require().NoError(s.run("currencies", "add", "chf"))
	s.Contains(s.errOut.String(), "Keep between 2 and 6 currencies")
	s.Len(s.app.Settings.Get().Currencies, entities.MaxDisplayCurrencies)
}

func (s *CLITestSuite) TestCurrenciesAll() {
	s.Require().NoError(s.run("currencies", "all"))

	lines := strings.Split(strings.TrimSuffix(s.out.String(), "\n"), "\n")
	s.Len(lines, len(entities.AllCurrencies()))
	s.True(strings.HasPrefix(lines[0], "* BTC"))
	s.True(strings.HasPrefix(lines[1], "* SATS"))
	s.Contains(lines, "  GBP "+entities.GBP.Symbol())
}

func (s *CLITestSuite) TestSettings() {
	s.Require().NoError(s.run("settings", "set", "theme", "dark"))
	s.Contains(s.out.String(), "Settings saved")

	s.Require().NoError(s.run("settings", "set", "theme", "dark"))
	s.Contains(s.out.String(), "Nothing changed")

	s.Error(s.run("settings", "set", "theme", "neon"))
	s.Error(s.run("settings", "set", "compact", "maybe"))
	s.ErrorIs(s.run("settings", "set", "volume", "11"), ErrUsage)

	s.Require().NoError(s.run("settings"))
	s.Contains(s.out.String(), "theme:")
	s.Contains(s.out.String(), "dark")

	s.Require().NoError(s.run("settings", "reset"))
	s.Equal(entities.DefaultSettings(), s.app.Settings.Get())
}

func (s *CLITestSuite) TestLanguage() {
	s.Require().NoError(s.run("lang", "de-AT"))
	s.Equal("Sprache auf de gesetzt\n", s.out.String())

	s.Equal("de", s.app.Language(context.Background()))

	c := New(s.app, s.out, s.errOut)
	s.out.Reset()
	s.Require().NoError(c.Run(context.Background(), []string{"currencies", "add", "jpy"}, nil))
	s.Contains(s.out.String(), "JPY hinzugefügt")
}

func (s *CLITestSuite) TestInstall() {
	s.Require().NoError(s.run("install"))
	s.Contains(s.out.String(), "Sats Converter installed for offline use (3 files)")

	e, err := s.app.Local.GetResponse(context.Background(), s.backend.srv.URL+"/static/app.css")
	s.Require().NoError(err)
	s.Equal("body{}", string(e.Body))
}

func (s *CLITestSuite) TestDonate() {
	s.backend.paid.Store(true)

	s.Require().NoError(s.run("donate", "21", "great", "app"))

	s.Contains(s.out.String(), "lnbc210n1donation")
	s.Contains(s.out.String(), "Thank you! Payment received.")
}

func (s *CLITestSuite) TestDonateNotPaid() {
	s.Require().NoError(s.run("donate", "21"))

	s.Contains(s.out.String(), "lnbc210n1donation")
	s.Contains(s.errOut.String(), "Donation unavailable")
}

func (s *CLITestSuite) TestDonateDisabled() {
	s.app.Cfg.Client.DonateAddress = ""

	s.Require().NoError(s.run("donate", "21"))

	s.Contains(s.errOut.String(), "No donation address configured")
}

func (s *CLITestSuite) TestWatchRendersLastAmount() {
	s.Require().NoError(s.runWithInput("1\n2\n3\n\nignored\n", "watch"))

	s.Contains(s.out.String(), "300 000 000")
	s.NotContains(s.out.String(), "ignored")
	s.Contains(s.errOut.String(), "Enter an amount in BTC")
}

func (s *CLITestSuite) TestEventsAreTracked() {
	s.Require().NoError(s.run("convert", "1"))
	s.Require().NoError(s.run("copy", "1"))
	s.app.Proxy.Flush()

	types := s.backend.eventTypes()
	s.Contains(types, string(entities.EventAppOpen))
	s.Contains(types, string(entities.EventConversion))
	s.Contains(types, string(entities.EventCopy))
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func TestParseFlags(t *testing.T) {
	f, args, err := ParseFlags([]string{"--proxy", "http://x", "-v", "--lang=fr", "convert", "1", "--db"}, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "http://x", f.ProxyURL)
	assert.True(t, f.Verbose)
	assert.Equal(t, "fr", f.Lang)
	assert.Equal(t, []string{"convert", "1", "--db"}, args)

	_, _, err = ParseFlags([]string{"--bogus"}, io.Discard)
	assert.ErrorIs(t, err, ErrUsage)
}
