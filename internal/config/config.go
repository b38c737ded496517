// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/organizai/organizai/internal/repository"
)

// minSecretLength is the minimum length for signing and encryption secrets.
const minSecretLength = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Public URL of the web app, used for checkout redirects
	AppURL string `env:"APP_URL" envDefault:"http://localhost:5173"`

	// Database (PostgreSQL)
	DatabaseURL             string        `env:"DATABASE_URL,required,notEmpty"`
	DatabaseMaxConns        int32         `env:"DATABASE_MAX_CONNS" envDefault:"20"`
	DatabaseMinConns        int32         `env:"DATABASE_MIN_CONNS" envDefault:"2"`
	DatabaseMaxConnLifetime time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"1h"`

	// Cache (Redis)
	RedisURL      string `env:"REDIS_URL,required,notEmpty"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Sessions
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Key for provider API keys stored in api_settings
	SettingsEncryptionKey string `env:"SETTINGS_ENCRYPTION_KEY,required,notEmpty"`

	// Rate limiting (fixed window)
	RateLimitEnabled    bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRequests   int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow     time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitAIRequests int           `env:"RATE_LIMIT_AI_REQUESTS" envDefault:"20"`
	RateLimitAIWindow   time.Duration `env:"RATE_LIMIT_AI_WINDOW" envDefault:"1m"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Stripe billing
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID       string `env:"STRIPE_PRICE_ID"`
	StripeSuccessURL    string `env:"STRIPE_SUCCESS_URL"`
	StripeCancelURL     string `env:"STRIPE_CANCEL_URL"`

	// Groq chat completions (OpenAI-compatible)
	GroqAPIKey  string `env:"GROQ_API_KEY"`
	GroqModel   string `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	GroqBaseURL string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`

	// Tavily web search
	TavilyAPIKey  string `env:"TAVILY_API_KEY"`
	TavilyBaseURL string `env:"TAVILY_BASE_URL" envDefault:"https://api.tavily.com"`

	// Market data for benchmarks
	MarketDataBaseURL string  `env:"MARKET_DATA_BASE_URL" envDefault:"https://query1.finance.yahoo.com"`
	RiskFreeRate      float64 `env:"RISK_FREE_RATE" envDefault:"0.1075"`

	// Gamification stream worker
	GamificationWorkerEnabled bool `env:"GAMIFICATION_WORKER_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// PoolOptions returns the database pool settings.
func (c *Config) PoolOptions() repository.PoolOptions {
	return repository.PoolOptions{
		MaxConns:        c.DatabaseMaxConns,
		MinConns:        c.DatabaseMinConns,
		MaxConnLifetime: c.DatabaseMaxConnLifetime,
	}
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// BillingEnabled reports whether Stripe is configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != "" && c.StripePriceID != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// CheckoutURLs returns the Stripe redirect URLs, defaulting to pages on AppURL.
func (c *Config) CheckoutURLs() (success, cancel string) {
	base := strings.TrimRight(c.AppURL, "/")
	success = c.StripeSuccessURL
	if success == "" {
		success = base + "/billing/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancel = c.StripeCancelURL
	if cancel == "" {
		cancel = base + "/billing"
	}
	return success, cancel
}

// Validate checks constraints the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if len(c.SettingsEncryptionKey) < minSecretLength {
		errs = append(errs, fmt.Errorf("SETTINGS_ENCRYPTION_KEY must be at least %d characters", minSecretLength))
	}
	if c.DatabaseMaxConns <= 0 || c.DatabaseMinConns > c.DatabaseMaxConns {
		errs = append(errs, errors.New("DATABASE_MAX_CONNS must be positive and at least DATABASE_MIN_CONNS"))
	}
	if c.RateLimitRequests <= 0 || c.RateLimitAIRequests <= 0 {
		errs = append(errs, errors.New("rate limit requests must be positive"))
	}
	if c.RateLimitWindow < time.Second || c.RateLimitAIWindow < time.Second {
		errs = append(errs, errors.New("rate limit windows must be at least 1s"))
	}
	return errors.Join(errs...)
}

// Load reads an optional .env file outside production, parses environment
// variables and validates the result.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production") {
		// Existing environment variables win over .env entries.
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
