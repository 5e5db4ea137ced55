package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit store types
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// JWKS cache backends
const (
	JWKSCacheNone   = "none"
	JWKSCacheMemory = "memory"
	JWKSCacheRedis  = "redis"
)

// Database drivers
const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)

// asymmetric algorithms that can be verified with a published JWKS
var supportedAlgorithms = map[string]struct{}{
	"RS256": {}, "RS384": {}, "RS512": {},
	"PS256": {}, "PS384": {}, "PS512": {},
	"ES256": {}, "ES384": {}, "ES512": {},
}

type Config struct {
	// Server settings
	ServerAddr string
	GinMode    string

	// Identity provider
	Auth0Domain string
	APIAudience string
	Algorithms  []string
	TokenLeeway time.Duration

	// JWKS fetch
	JWKSURL                string
	JWKSTimeout            time.Duration
	JWKSMaxRetries         int
	JWKSInsecureSkipVerify bool
	JWKSCache              string
	JWKSCacheTTL           time.Duration

	// Database
	DatabaseDriver string
	DatabaseDSN    string
	DatabaseSeed   bool

	// Redis (shared by rate limiter and JWKS cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string
	RateLimitPerMinute       int
	RateLimitCleanupInterval time.Duration

	// Misc
	CORSAllowedOrigins []string
	LogLevel           string
	MetricsEnabled     bool
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		GinMode:    getEnv("GIN_MODE", "release"),

		Auth0Domain: getEnv("AUTH0_DOMAIN", "andre-mpoudi.us.auth0.com"),
		APIAudience: getEnv("API_AUDIENCE", "drinks"),
		Algorithms:  getEnvList("AUTH_ALGORITHMS", []string{"RS256"}),
		TokenLeeway: getEnvDuration("TOKEN_LEEWAY", 0),

		JWKSURL:                getEnv("JWKS_URL", ""),
		JWKSTimeout:            getEnvDuration("JWKS_TIMEOUT", 5*time.Second),
		JWKSMaxRetries:         getEnvInt("JWKS_MAX_RETRIES", 2),
		JWKSInsecureSkipVerify: getEnvBool("JWKS_INSECURE_SKIP_VERIFY", false),
		JWKSCache:              getEnv("JWKS_CACHE", JWKSCacheMemory),
		JWKSCacheTTL:           getEnvDuration("JWKS_CACHE_TTL", 5*time.Minute),

		DatabaseDriver: getEnv("DATABASE_DRIVER", DatabaseDriverSQLite),
		DatabaseDSN:    getEnv("DATABASE_DSN", "database.db"),
		DatabaseSeed:   getEnvBool("DATABASE_SEED", false),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitPerMinute:       getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

// Validate checks enumerated settings and the identity provider parameters.
func (c *Config) Validate() error {
	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}

	switch c.JWKSCache {
	case JWKSCacheNone, JWKSCacheMemory, JWKSCacheRedis:
	default:
		return fmt.Errorf("invalid JWKS_CACHE value: %q", c.JWKSCache)
	}

	switch c.DatabaseDriver {
	case DatabaseDriverSQLite, DatabaseDriverPostgres:
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER value: %q", c.DatabaseDriver)
	}

	if strings.TrimSpace(c.Auth0Domain) == "" {
		return errors.New("AUTH0_DOMAIN is required")
	}
	if strings.TrimSpace(c.APIAudience) == "" {
		return errors.New("API_AUDIENCE is required")
	}
	if len(c.Algorithms) == 0 {
		return errors.New("AUTH_ALGORITHMS must list at least one algorithm")
	}
	for _, alg := range c.Algorithms {
		if _, ok := supportedAlgorithms[alg]; !ok {
			return fmt.Errorf("unsupported AUTH_ALGORITHMS entry: %q", alg)
		}
	}

	return nil
}

// Issuer returns the expected "iss" claim for tokens minted by the domain.
func (c *Config) Issuer() string {
	return "https://" + strings.TrimSuffix(c.Auth0Domain, "/") + "/"
}

// JWKSEndpoint returns the well-known key set URL unless JWKS_URL overrides it.
func (c *Config) JWKSEndpoint() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return c.Issuer() + ".well-known/jwks.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty elements
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
