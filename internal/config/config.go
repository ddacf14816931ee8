package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingJWTSecret is returned by Validate when no signing secret is configured.
	ErrMissingJWTSecret = errors.New("config: JWT_SECRET is required")
	// ErrInvalidEmailProvider is returned by Validate for an unknown EMAIL_PROVIDER.
	ErrInvalidEmailProvider = errors.New("config: EMAIL_PROVIDER must be log, sendgrid or ses")
	// ErrMissingSendGridKey is returned by Validate when sendgrid is selected without a key.
	ErrMissingSendGridKey = errors.New("config: SENDGRID_API_KEY is required for the sendgrid provider")
	// ErrLogEmailInProduction is returned by Validate when production would log emails instead of sending them.
	ErrLogEmailInProduction = errors.New("config: EMAIL_PROVIDER must be sendgrid or ses in production")
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	JWTSecret        string
	JWTIssuer        string
	TokenTTL         time.Duration
	AuthCookieName   string
	AuthCookieSecure bool

	OTPTTL         time.Duration
	OTPLength      int
	OTPMaxAttempts int
	OTPRateLimit   int
	OTPRateWindow  time.Duration
	InviteTTL      time.Duration

	PublicRateLimit  int
	PublicRateWindow time.Duration
	CatalogCacheTTL  time.Duration

	EmailProvider  string
	EmailFrom      string
	EmailFromName  string
	SendGridAPIKey string
	AWSRegion      string

	RequestTimeout       time.Duration
	CORSAllowedOrigins   []string
	EdgeSharedSecret     string
	TrustProxyHeaders    bool // X-Forwarded-For / X-Real-IP replace the peer address
	ResolveHostInProcess bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", ""),
		TokenTTL:         getEnvAsDuration("TOKEN_TTL", 7*24*time.Hour),
		AuthCookieName:   getEnv("AUTH_COOKIE_NAME", "token"),
		AuthCookieSecure: getEnvAsBool("AUTH_COOKIE_SECURE", false),

		OTPTTL:         getEnvAsDuration("OTP_TTL", 10*time.Minute),
		OTPLength:      getEnvAsInt("OTP_LENGTH", 6),
		OTPMaxAttempts: getEnvAsInt("OTP_MAX_ATTEMPTS", 5),
		OTPRateLimit:   getEnvAsInt("OTP_RATE_LIMIT", 5),
		OTPRateWindow:  getEnvAsDuration("OTP_RATE_WINDOW", 15*time.Minute),
		InviteTTL:      getEnvAsDuration("INVITE_TTL", 72*time.Hour),

		PublicRateLimit:  getEnvAsInt("PUBLIC_RATE_LIMIT", 30),
		PublicRateWindow: getEnvAsDuration("PUBLIC_RATE_WINDOW", time.Minute),
		CatalogCacheTTL:  getEnvAsDuration("CATALOG_CACHE_TTL", 30*time.Second),

		EmailProvider:  strings.ToLower(getEnv("EMAIL_PROVIDER", "log")),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@localhost"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Storefront"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),

		RequestTimeout:       getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second),
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS"),
		EdgeSharedSecret:     getEnv("EDGE_SHARED_SECRET", ""),
		TrustProxyHeaders:    getEnvAsBool("TRUST_PROXY_HEADERS", false),
		ResolveHostInProcess: getEnvAsBool("RESOLVE_HOST_IN_PROCESS", true),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Validate reports settings the service cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	switch c.EmailProvider {
	case "", "log":
		if c.IsProduction() {
			return ErrLogEmailInProduction
		}
	case "ses":
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return ErrMissingSendGridKey
		}
	default:
		return ErrInvalidEmailProvider
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
