package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultEndpoint = "https://httpbin.org/anything"
	DefaultPayload  = `{"query":"Hello world"}`
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	Endpoint           string        `mapstructure:"endpoint"`
	Method             string        `mapstructure:"method"`
	Payload            string        `mapstructure:"payload"`
	PayloadFile        string        `mapstructure:"payload_file"`
	OutputFormat       string        `mapstructure:"output_format"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	SinksFile string `mapstructure:"sinks_file"`

	StorageType       string        `mapstructure:"storage_type"`
	BBoltPath         string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds int64         `mapstructure:"storage_ttl_seconds"`
	StorageTTL        time.Duration `mapstructure:"-"`

	StorageCleanupIntervalSeconds int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageCleanupInterval        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-invoker")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("method", http.MethodGet)
	v.SetDefault("payload", DefaultPayload)
	v.SetDefault("payload_file", "")
	v.SetDefault("output_format", "json")
	v.SetDefault("http_timeout_seconds", 0) // 0 keeps the transport default
	v.SetDefault("sinks_file", "")
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/exchanges.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	// PAYLOAD= must be able to switch the request body off.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid endpoint %q (expected absolute http(s) URL)", c.Endpoint)
	}

	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = http.MethodGet
	}

	c.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	switch c.OutputFormat {
	case "":
		c.OutputFormat = "json"
	case "json", "compact", "yaml":
	default:
		return fmt.Errorf("invalid output_format %q (json, compact or yaml)", c.OutputFormat)
	}

	if c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second

	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	c.StorageTTL = time.Duration(c.StorageTTLSeconds) * time.Second

	if c.StorageCleanupIntervalSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	c.StorageCleanupInterval = time.Duration(c.StorageCleanupIntervalSeconds) * time.Second

	c.PayloadFile = strings.TrimSpace(c.PayloadFile)
	c.SinksFile = strings.TrimSpace(c.SinksFile)
	return nil
}
