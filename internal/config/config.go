package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Adda-Baaj/handle-probe/pkg/signer"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ConsumerKey       string `mapstructure:"twitter_consumer_key" json:"-"`
	ConsumerSecret    string `mapstructure:"twitter_consumer_secret" json:"-"`
	AccessToken       string `mapstructure:"twitter_access_token" json:"-"`
	AccessTokenSecret string `mapstructure:"twitter_access_token_secret" json:"-"`

	APIBaseURL         string        `mapstructure:"api_base_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	WatchlistsFile       string        `mapstructure:"watchlists_file"`
	PublishersFile       string        `mapstructure:"publishers_file"`
	CheckIntervalSeconds int64         `mapstructure:"check_interval"`
	CheckInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "handle-probe")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("twitter_consumer_key", "")
	v.SetDefault("twitter_consumer_secret", "")
	v.SetDefault("twitter_access_token", "")
	v.SetDefault("twitter_access_token_secret", "")
	v.SetDefault("api_base_url", "https://api.twitter.com/1.1/")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("watchlists_file", "./configs/watchlists.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("check_interval", 3600) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/status.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Credentials().Validate(); err != nil {
		return nil, fmt.Errorf("twitter credentials: %w", err)
	}

	cfg.APIBaseURL = strings.TrimSpace(cfg.APIBaseURL)
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api_base_url must not be empty")
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.CheckIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid check_interval (must be positive seconds)")
	}
	cfg.CheckInterval = time.Duration(cfg.CheckIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// Credentials returns the signing secrets as an immutable value.
func (c *Config) Credentials() signer.Credentials {
	if c == nil {
		return signer.Credentials{}
	}
	return signer.Credentials{
		ConsumerKey:       strings.TrimSpace(c.ConsumerKey),
		ConsumerSecret:    strings.TrimSpace(c.ConsumerSecret),
		AccessToken:       strings.TrimSpace(c.AccessToken),
		AccessTokenSecret: strings.TrimSpace(c.AccessTokenSecret),
	}
}
