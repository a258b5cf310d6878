package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Files    FilesConfig
	Sources  SourcesConfig
	Fetch    FetchConfig
	Schedule ScheduleConfig
	Notify   NotifyConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Vote     VoteConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// StoreConfig - vote store connection. The URI scheme selects the backend.
type StoreConfig struct {
	URI      string
	Database string
}

type FilesConfig struct {
	Snapshot string
	Registry string
	Bulletin string
}

type SourcesConfig struct {
	ForecastURL      string
	MarineURL        string
	BulletinIndexURL string
	Timezone         string
}

type FetchConfig struct {
	Timeout         time.Duration
	IndexTimeout    time.Duration
	MaxAttempts     int
	BackoffMin      time.Duration
	BackoffMax      time.Duration
	DownloadRetries int
	DownloadBackoff time.Duration
	UserAgent       string
}

type ScheduleConfig struct {
	Ingest      string
	Aggregate   string
	Concurrency int
}

type NotifyConfig struct {
	URL     string
	Timeout time.Duration
}

type CacheConfig struct {
	RecheckAttempts int
	RecheckInterval time.Duration
	PollInterval    time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type IdentityConfig struct {
	GoogleClientID string
}

type VoteConfig struct {
	Window time.Duration
}

type LogConfig struct {
	Level string
}

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

func Load() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),
		},
		Store: StoreConfig{
			URI:      v.GetString("STORE_URI"),
			Database: v.GetString("STORE_DATABASE"),
		},
		Files: FilesConfig{
			Snapshot: v.GetString("SNAPSHOT_FILE"),
			Registry: v.GetString("REGISTRY_FILE"),
			Bulletin: v.GetString("BULLETIN_FILE"),
		},
		Sources: SourcesConfig{
			ForecastURL:      v.GetString("FORECAST_URL"),
			MarineURL:        v.GetString("MARINE_URL"),
			BulletinIndexURL: v.GetString("BULLETIN_INDEX_URL"),
			Timezone:         v.GetString("LOCAL_TIMEZONE"),
		},
		Fetch: FetchConfig{
			Timeout:         v.GetDuration("FETCH_TIMEOUT"),
			IndexTimeout:    v.GetDuration("INDEX_TIMEOUT"),
			MaxAttempts:     v.GetInt("FETCH_MAX_ATTEMPTS"),
			BackoffMin:      v.GetDuration("FETCH_BACKOFF_MIN"),
			BackoffMax:      v.GetDuration("FETCH_BACKOFF_MAX"),
			DownloadRetries: v.GetInt("DOWNLOAD_ATTEMPTS"),
			DownloadBackoff: v.GetDuration("DOWNLOAD_BACKOFF"),
			UserAgent:       v.GetString("FETCH_USER_AGENT"),
		},
		Schedule: ScheduleConfig{
			Ingest:      v.GetString("INGEST_SCHEDULE"),
			Aggregate:   v.GetString("AGGREGATE_SCHEDULE"),
			Concurrency: v.GetInt("INGEST_CONCURRENCY"),
		},
		Notify: NotifyConfig{
			URL:     v.GetString("NOTIFY_URL"),
			Timeout: v.GetDuration("NOTIFY_TIMEOUT"),
		},
		Cache: CacheConfig{
			RecheckAttempts: v.GetInt("CACHE_RECHECK_ATTEMPTS"),
			RecheckInterval: v.GetDuration("CACHE_RECHECK_INTERVAL"),
			PollInterval:    v.GetDuration("CACHE_POLL_INTERVAL"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Identity: IdentityConfig{
			GoogleClientID: v.GetString("GOOGLE_CLIENT_ID"),
		},
		Vote: VoteConfig{
			Window: v.GetDuration("VOTE_WINDOW"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "")
	v.SetDefault("API_PORT", 8000)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("STORE_URI", "mongodb://localhost:27017")
	v.SetDefault("STORE_DATABASE", "praio")

	v.SetDefault("SNAPSHOT_FILE", "pontos.json")
	v.SetDefault("REGISTRY_FILE", "pontos_estaticos.json")
	v.SetDefault("BULLETIN_FILE", "niteroi_historico.pdf")

	v.SetDefault("FORECAST_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("MARINE_URL", "https://marine-api.open-meteo.com/v1/marine")
	v.SetDefault("BULLETIN_INDEX_URL", "https://www.inea.rj.gov.br/niteroi/")
	v.SetDefault("LOCAL_TIMEZONE", "America/Sao_Paulo")

	v.SetDefault("FETCH_TIMEOUT", 10*time.Second)
	v.SetDefault("INDEX_TIMEOUT", 30*time.Second)
	v.SetDefault("FETCH_MAX_ATTEMPTS", 5)
	v.SetDefault("FETCH_BACKOFF_MIN", time.Second)
	v.SetDefault("FETCH_BACKOFF_MAX", 30*time.Second)
	v.SetDefault("DOWNLOAD_ATTEMPTS", 5)
	v.SetDefault("DOWNLOAD_BACKOFF", 2*time.Second)
	v.SetDefault("FETCH_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	v.SetDefault("INGEST_SCHEDULE", "0 * * * *")
	v.SetDefault("AGGREGATE_SCHEDULE", "0 * * * *")
	v.SetDefault("INGEST_CONCURRENCY", 1)

	v.SetDefault("NOTIFY_URL", "http://localhost:8000/notify-refresh")
	v.SetDefault("NOTIFY_TIMEOUT", 30*time.Second)

	v.SetDefault("CACHE_RECHECK_ATTEMPTS", 6)
	v.SetDefault("CACHE_RECHECK_INTERVAL", 60*time.Second)
	v.SetDefault("CACHE_POLL_INTERVAL", 5*time.Minute)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("VOTE_WINDOW", 30*24*time.Hour)
}

func (c *Config) validate() error {
	if c.Files.Snapshot == "" {
		return fmt.Errorf("SNAPSHOT_FILE is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid API_PORT: %d", c.Server.Port)
	}
	if c.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("invalid FETCH_MAX_ATTEMPTS: %d", c.Fetch.MaxAttempts)
	}
	if c.Schedule.Concurrency < 1 {
		c.Schedule.Concurrency = 1
	}
	if _, err := c.StoreKind(); err != nil {
		return err
	}
	return nil
}

// StoreKind returns which vote store backend STORE_URI points at.
func (c *Config) StoreKind() (string, error) {
	u, err := url.Parse(c.Store.URI)
	if err != nil {
		return "", fmt.Errorf("invalid STORE_URI: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return StoreMongo, nil
	case "postgres", "postgresql":
		return StorePostgres, nil
	default:
		return "", fmt.Errorf("unsupported STORE_URI scheme %q", u.Scheme)
	}
}

// Location returns the timezone readings are truncated in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sources.Timezone)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
