package config

import (
	"fmt"     // Error wrapping
	"os"      // For environment variables
	"strconv" // For string to number conversion
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Supported session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	AppHost   string // Listen host
	AppPort   string // Application port
	IsProd    bool   // Is production environment
	LogLevel  string // logrus level name
	LogFormat string // text or json
	StaticDir string // Built frontend directory, served when present

	DBDriver   string // sqlite, mysql or postgres
	DBPath     string // SQLite database file
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBSSLMode  string // Postgres sslmode

	RedisAddr string // Redis server address, empty disables redis
	RedisPass string // Redis password
	RedisDB   int    // Redis database number

	SessionBackend string        // memory or redis
	SessionTTL     time.Duration // Sliding session lifetime

	AdminUsername    string // Seeded admin account
	AdminPassword    string
	EmployeeUsername string // Seeded employee account, inserted only if absent
	EmployeePassword string

	PayPalAPIBase      string        // PayPal REST base url
	PayPalClientID     string        // PayPal REST client id
	PayPalClientSecret string        // PayPal REST secret
	PayPalCurrency     string        // Provider settlement currency
	PayPalBuyerCountry string        // Buyer country hint for the client SDK
	BillingCurrency    string        // Currency menu prices are stored in
	INRToUSDRate       float64       // Conversion rate when billing INR and settling USD
	PayPalTimeout      time.Duration // Upper bound for a single provider call

	OTLPEndpoint     string  // OpenTelemetry collector endpoint, empty disables tracing
	OTLPInsecure     bool    // Export over plain HTTP
	TraceSampleRatio float64 // Share of new traces recorded, 0 to 1
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "12"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %q", os.Getenv("SESSION_TTL_HOURS"))
	}
	rate, err := strconv.ParseFloat(getEnv("PAYPAL_INR_TO_USD_RATE", "0.012"), 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("invalid PAYPAL_INR_TO_USD_RATE: %q", os.Getenv("PAYPAL_INR_TO_USD_RATE"))
	}
	timeoutSeconds, err := strconv.Atoi(getEnv("PAYPAL_TIMEOUT_SECONDS", "10"))
	if err != nil || timeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid PAYPAL_TIMEOUT_SECONDS: %q", os.Getenv("PAYPAL_TIMEOUT_SECONDS"))
	}
	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_TRACES_SAMPLER_ARG", "1"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return nil, fmt.Errorf("invalid OTEL_TRACES_SAMPLER_ARG: %q", os.Getenv("OTEL_TRACES_SAMPLER_ARG"))
	}

	cfg := &Config{
		AppHost:   getEnv("APP_HOST", "127.0.0.1"),
		AppPort:   getEnv("APP_PORT", "4000"),
		IsProd:    os.Getenv("IS_PROD") == "true",
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		StaticDir: getEnv("STATIC_DIR", "dist"),

		DBDriver:   getEnv("DB_DRIVER", DriverSQLite),
		DBPath:     getEnv("DB_PATH", "restaurant.db"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     os.Getenv("DB_PORT"),
		DBName:     getEnv("DB_NAME", "restaurant"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   redisDB,

		SessionBackend: getEnv("SESSION_BACKEND", SessionBackendMemory),
		SessionTTL:     time.Duration(ttlHours) * time.Hour,

		AdminUsername:    getEnv("AUTH_ADMIN_USERNAME", "Admin"),
		AdminPassword:    getEnv("AUTH_ADMIN_PASSWORD", "admin123"),
		EmployeeUsername: getEnv("AUTH_EMPLOYEE_USERNAME", "employee"),
		EmployeePassword: getEnv("AUTH_EMPLOYEE_PASSWORD", "employee123"),

		PayPalAPIBase:      getEnv("PAYPAL_API_BASE", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalCurrency:     getEnv("PAYPAL_CURRENCY", "USD"),
		PayPalBuyerCountry: getEnv("PAYPAL_BUYER_COUNTRY", "US"),
		BillingCurrency:    getEnv("BILLING_CURRENCY", "INR"),
		INRToUSDRate:       rate,
		PayPalTimeout:      time.Duration(timeoutSeconds) * time.Second,

		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:     getEnv("OTEL_EXPORTER_OTLP_INSECURE", "true") == "true",
		TraceSampleRatio: sampleRatio,
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	switch cfg.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("SESSION_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return nil, fmt.Errorf("unsupported SESSION_BACKEND %q", cfg.SessionBackend)
	}
	return cfg, nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverMySQL:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, port, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
	default:
		return c.DBPath
	}
}

// Addr is the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.AppPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
