package config

import (
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Storage    Storage
	Redis      Redis
	HTTPServer HTTPServer
	Fetcher    Fetcher
	Cache      Cache
	Events     Events
	Client     Client
}

type Storage struct {
	Timeout  time.Duration `env:"BD_TIMEOUT" env-default:"10s"`
	Host     string        `env:"BD_HOST" env-default:"localhost"`
	Port     int           `env:"BD_PORT" env-default:"5432"`
	User     string        `env:"BD_USER" env-default:"postgres"`
	Password string        `env:"BD_PASSWORD" env-default:""`
	DBName   string        `env:"BD_DBNAME" env-default:"satsconv"`
	SSLMode  string        `env:"BD_SSL_MODE" env-default:"disable"`
	Schema   string        `env:"BD_SCHEMA" env-default:"public"`
	Enabled  bool          `env:"BD_ENABLED" env-default:"false"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type HTTPServer struct {
	Port        string        `env:"HTTP_PORT" env-default:"8082"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"30s"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Fetcher struct {
	URL          string        `env:"FETCHER_URL" env-default:"https://api.coingecko.com/api/v3/simple/price"`
	ProURL       string        `env:"FETCHER_PRO_URL" env-default:"https://pro-api.coingecko.com/api/v3/simple/price"`
	ProAPIKey    string        `env:"FETCHER_PRO_API_KEY" env-default:""`
	SecondaryURL string        `env:"FETCHER_SECONDARY_URL" env-default:"https://min-api.cryptocompare.com/data/price"`
	ValueRate    string        `env:"FETCHER_VALUE_RATE" env-default:"usd,eur,gbp,jpy,cad,aud,chf,cny,inr,brl"`
	Timeout      time.Duration `env:"FETCHER_TIMEOUT" env-default:"10s"`
	RPS          float64       `env:"FETCHER_RPS" env-default:"0.5"`
	Burst        int           `env:"FETCHER_BURST" env-default:"3"`
}

type Cache struct {
	TTL          time.Duration `env:"CACHE_TTL" env-default:"60s"`
	// StaleTTL bounds how long the last good payload is kept for failover.
	StaleTTL     time.Duration `env:"CACHE_STALE_TTL" env-default:"24h"`
	// WarmInterval refreshes the cache in the background; zero disables it.
	WarmInterval time.Duration `env:"CACHE_WARM_INTERVAL" env-default:"0s"`
}

type Events struct {
	Rate   string `env:"EVENTS_RATE" env-default:"50-M"`
	// IPRate caps event posts per client address.
	IPRate string `env:"EVENTS_IP_RATE" env-default:"120-M"`
}

type Client struct {
	ProxyURL       string        `env:"CLIENT_PROXY_URL" env-default:"http://localhost:8082"`
	DBPath         string        `env:"CLIENT_DB_PATH" env-default:"satsconv.db"`
	PollInterval   time.Duration `env:"CLIENT_POLL_INTERVAL" env-default:"60s"`
	ActivityWindow time.Duration `env:"CLIENT_ACTIVITY_WINDOW" env-default:"5m"`
	Debounce       time.Duration `env:"CLIENT_DEBOUNCE" env-default:"300ms"`
	OfflineTimeout time.Duration `env:"CLIENT_OFFLINE_TIMEOUT" env-default:"5s"`
	DonateAddress  string        `env:"CLIENT_DONATE_ADDRESS" env-default:""`
	SendEvents     bool          `env:"CLIENT_SEND_EVENTS" env-default:"true"`
}

func NewConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("Error reading env")
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Split(fieldName string) []string {
	v := reflect.ValueOf(&c.Fetcher).Elem()
	f := v.FieldByName(fieldName)
	if !f.IsValid() || f.Kind() != reflect.String {
		return nil
	}
	str := f.String()
	if str == "" {
		return nil
	}

	parts := strings.Split(str, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
