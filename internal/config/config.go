package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds everything the service reads from the environment
type Config struct {
	Port     string
	AppURL   string
	LogLevel zerolog.Level

	MongoURI      string
	MongoDatabase string

	ShopifyAPIKey     string
	ShopifyAPISecret  string
	ShopifyScopes     []string
	ShopifyAPIVersion string

	RedisURL         string
	AgeLimitCacheTTL time.Duration

	HTTPClientTimeout  time.Duration
	CORSAllowedOrigins []string
}

// New returns a viper instance bound to the process environment with defaults applied
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "age-checker-made-simple")
	v.SetDefault("SHOPIFY_SCOPES", "read_products")
	v.SetDefault("SHOPIFY_API_VERSION", "2024-01")
	v.SetDefault("AGE_LIMIT_CACHE_TTL", "5m")
	v.SetDefault("HTTP_CLIENT_TIMEOUT", "15s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	return v
}

// Load reads and validates the configuration
func Load(v *viper.Viper) (*Config, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		AppURL:             strings.TrimRight(v.GetString("APP_URL"), "/"),
		LogLevel:           level,
		MongoURI:           v.GetString("MONGODB_URI"),
		MongoDatabase:      v.GetString("MONGODB_DATABASE"),
		ShopifyAPIKey:      v.GetString("SHOPIFY_API_KEY"),
		ShopifyAPISecret:   v.GetString("SHOPIFY_API_SECRET"),
		ShopifyScopes:      splitList(v.GetString("SHOPIFY_SCOPES")),
		ShopifyAPIVersion:  v.GetString("SHOPIFY_API_VERSION"),
		RedisURL:           v.GetString("REDIS_URL"),
		AgeLimitCacheTTL:   v.GetDuration("AGE_LIMIT_CACHE_TTL"),
		HTTPClientTimeout:  v.GetDuration("HTTP_CLIENT_TIMEOUT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ShopifyAPIKey == "" || c.ShopifyAPISecret == "" {
		return fmt.Errorf("SHOPIFY_API_KEY and SHOPIFY_API_SECRET environment variables are required")
	}
	if len(c.ShopifyScopes) == 0 {
		return fmt.Errorf("SHOPIFY_SCOPES must list at least one scope")
	}
	u, err := url.Parse(c.AppURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("APP_URL must be an absolute URL, got %q", c.AppURL)
	}
	if c.AgeLimitCacheTTL <= 0 {
		return fmt.Errorf("AGE_LIMIT_CACHE_TTL must be positive")
	}
	if c.HTTPClientTimeout <= 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT must be positive")
	}
	return nil
}

// CallbackURL is the redirect_uri registered with Shopify
func (c *Config) CallbackURL() string {
	return c.AppURL + "/shopify/callback"
}

// SecureCookies reports whether cookies should carry the Secure attribute
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.AppURL, "https://")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
