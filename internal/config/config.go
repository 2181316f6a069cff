package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	DBMaxOpenConns int
	DBMaxIdleConns int

	// JWT verification of tokens issued by the identity provider
	JWTSecret string

	// Ops key accepted by the sweep trigger endpoints
	SweepAPIKey string

	// Expiry sweep
	ExpirySweepInterval time.Duration
	ExpirySweepJitter   time.Duration
	SweepTimeout        time.Duration

	// Pending-approval reminders
	PendingReminderInterval time.Duration

	// Push transport
	PushRelayURL    string
	PushRelayAPIKey string
	PushRatePerSec  float64
	PushTimeout     time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "avrexpense"),
		DBPassword: getEnv("DB_PASSWORD", "avrexpense"),
		DBName:     getEnv("DB_NAME", "avrexpense"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:   getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		SweepAPIKey: getEnv("SWEEP_API_KEY", ""),

		ExpirySweepInterval:     getDuration("EXPIRY_SWEEP_INTERVAL", 6*time.Hour),
		ExpirySweepJitter:       getDuration("EXPIRY_SWEEP_JITTER", time.Hour),
		SweepTimeout:            getDuration("SWEEP_TIMEOUT", 5*time.Minute),
		PendingReminderInterval: getDuration("PENDING_REMINDER_INTERVAL", 24*time.Hour),

		PushRelayURL:    getEnv("PUSH_RELAY_URL", ""),
		PushRelayAPIKey: getEnv("PUSH_RELAY_API_KEY", ""),
		PushRatePerSec:  getFloat("PUSH_RATE_PER_SECOND", 20),
		PushTimeout:     getDuration("PUSH_TIMEOUT", 10*time.Second),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// DatabaseURL returns the postgres:// URL used by the migration runner.
func (c *Config) DatabaseURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration variable, falling back to the default on bad input.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return f
}
