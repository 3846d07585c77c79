package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.HTTPServer.Port)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "50-M", cfg.Events.Rate)
	assert.Equal(t, 60*time.Second, cfg.Client.PollInterval)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("FETCHER_VALUE_RATE", "usd, eur")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"usd", "eur"}, cfg.Split("ValueRate"))
}

func TestSplit(t *testing.T) {
	cfg := &Config{Fetcher: Fetcher{ValueRate: "usd,,jpy ,"}}

	assert.Equal(t, []string{"usd", "jpy"}, cfg.Split("ValueRate"))
	assert.Nil(t, cfg.Split("Timeout"))
	assert.Nil(t, cfg.Split("Missing"))

	cfg.Fetcher.ValueRate = ""
	assert.Nil(t, cfg.Split("ValueRate"))
}
