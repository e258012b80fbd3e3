package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config is the complete service configuration, read once at startup.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Ledger    LedgerConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Version     string
	Environment string // development, staging, production
	LogLevel    slog.Level
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	HealthCheckPeriod time.Duration
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	ConnectTimeout    time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
}

// RedisConfig is optional; an empty Addr runs caching and locking in-process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig points at the external service that owns users and access rules.
type AuthConfig struct {
	BaseURL  string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// CORSConfig holds CORS middleware settings
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// LedgerConfig tunes the stock ledger.
type LedgerConfig struct {
	// SystemActor is the raw SYSTEM_ACTOR_ID; use ActorID to parse it.
	SystemActor       string
	AllocationLockTTL time.Duration
	MasterCacheTTL    time.Duration

	// ExposeDevMessages puts raw error text into devMessage and {"error"} bodies.
	ExposeDevMessages bool
}

// TelemetryConfig holds metrics and tracing settings
type TelemetryConfig struct {
	MetricsEnabled   bool
	MetricsNamespace string
	ServiceName      string
}

// LoadConfig loads configuration from the environment, after reading .env if present.
func LoadConfig(logger *slog.Logger) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("loading application configuration")

	config := &Config{}

	loadAppConfig(&config.App, logger)

	if err := loadServerConfig(&config.Server, logger); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	if err := loadDatabaseConfig(&config.Database, logger); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	loadRedisConfig(&config.Redis, logger)
	loadAuthConfig(&config.Auth, logger)
	loadCORSConfig(&config.CORS, logger)
	loadLedgerConfig(&config.Ledger, config.App.Environment, logger)
	loadTelemetryConfig(&config.Telemetry, logger)

	logger.Info("configuration loaded successfully",
		"environment", config.App.Environment,
		"version", config.App.Version,
		"port", config.Server.Port,
		"redis", config.Redis.Addr != "",
	)

	return config, nil
}

func loadAppConfig(cfg *AppConfig, logger *slog.Logger) {
	cfg.Version = os.Getenv("VERSION")
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
		logger.Warn("VERSION not set, using default", "default", cfg.Version)
	}

	cfg.Environment = os.Getenv("ENV")
	if cfg.Environment == "" {
		cfg.Environment = "development"
		logger.Warn("ENV not set, using default", "default", cfg.Environment)
	}

	cfg.LogLevel = parseLevel(os.Getenv("LOG_LEVEL"))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadServerConfig(cfg *ServerConfig, logger *slog.Logger) error {
	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		return fmt.Errorf("PORT environment variable is required")
	}

	cfg.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT_SECONDS", 15*time.Second, time.Second)
	cfg.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT_SECONDS", 30*time.Second, time.Second)
	cfg.IdleTimeout = getEnvAsDuration("SERVER_IDLE_TIMEOUT_SECONDS", 60*time.Second, time.Second)
	cfg.ShutdownTimeout = getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 30*time.Second, time.Second)

	// bulk imports post large arrays
	cfg.MaxBodyBytes = int64(getEnvAsInt("SERVER_MAX_BODY_MB", 50)) << 20

	logger.Debug("server config loaded", "port", cfg.Port, "max_body_bytes", cfg.MaxBodyBytes)
	return nil
}

func loadDatabaseConfig(cfg *DatabaseConfig, logger *slog.Logger) error {
	cfg.URL = os.Getenv("DB_URL")
	if cfg.URL == "" {
		return fmt.Errorf("DB_URL environment variable is required")
	}

	cfg.MaxConns = getEnvAsInt32("DB_MAX_CONNS", 10)
	cfg.MinConns = getEnvAsInt32("DB_MIN_CONNS", 2)
	cfg.HealthCheckPeriod = getEnvAsDuration("DB_HEALTH_CHECK_PERIOD_SECONDS", time.Minute, time.Second)
	cfg.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME_MINUTES", 0, time.Minute)
	cfg.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME_MINUTES", 0, time.Minute)
	cfg.ConnectTimeout = getEnvAsDuration("DB_CONNECT_TIMEOUT_SECONDS", 10*time.Second, time.Second)
	cfg.MaxRetries = getEnvAsInt("DB_CONNECT_RETRIES", 3)
	cfg.RetryDelay = time.Second

	logger.Debug("database config loaded",
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	)

	return nil
}

func loadRedisConfig(cfg *RedisConfig, logger *slog.Logger) {
	cfg.Addr = os.Getenv("REDIS_ADDR")
	cfg.Password = os.Getenv("REDIS_PASSWORD")
	cfg.DB = getEnvAsInt("REDIS_DB", 0)

	if cfg.Addr != "" {
		logger.Debug("redis config loaded", "addr", cfg.Addr, "db", cfg.DB)
	}
}

func loadAuthConfig(cfg *AuthConfig, logger *slog.Logger) {
	cfg.BaseURL = strings.TrimRight(os.Getenv("AUTH_BASE_URL"), "/")
	if cfg.BaseURL == "" {
		logger.Warn("AUTH_BASE_URL not set, access validation passthrough will answer 502")
	}
	cfg.CacheTTL = getEnvAsDuration("AUTH_CACHE_TTL_SECONDS", 60*time.Second, time.Second)
	cfg.Timeout = getEnvAsDuration("AUTH_TIMEOUT_SECONDS", 10*time.Second, time.Second)
}

func loadCORSConfig(cfg *CORSConfig, logger *slog.Logger) {
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitAndTrim(origins, ",")
	} else {
		cfg.AllowedOrigins = []string{"*"}
		logger.Warn("CORS_ALLOWED_ORIGINS not set, allowing all origins")
	}

	if methods := os.Getenv("CORS_ALLOWED_METHODS"); methods != "" {
		cfg.AllowedMethods = splitAndTrim(methods, ",")
	} else {
		cfg.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}

	if headers := os.Getenv("CORS_ALLOWED_HEADERS"); headers != "" {
		cfg.AllowedHeaders = splitAndTrim(headers, ",")
	} else {
		cfg.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}
	}

	if exposed := os.Getenv("CORS_EXPOSE_HEADERS"); exposed != "" {
		cfg.ExposedHeaders = splitAndTrim(exposed, ",")
	} else {
		cfg.ExposedHeaders = []string{"X-Request-ID"}
	}

	cfg.AllowCredentials = getEnvAsBool("CORS_ALLOW_CREDENTIALS", false)
	cfg.MaxAge = getEnvAsInt("CORS_MAX_AGE", 3600)

	logger.Debug("CORS config loaded", "origins_count", len(cfg.AllowedOrigins))
}

func loadLedgerConfig(cfg *LedgerConfig, env string, logger *slog.Logger) {
	cfg.SystemActor = strings.TrimSpace(os.Getenv("SYSTEM_ACTOR_ID"))
	if cfg.SystemActor == "" {
		cfg.SystemActor = uuid.Nil.String()
	}
	cfg.AllocationLockTTL = getEnvAsDuration("ALLOCATION_LOCK_TTL_SECONDS", 30*time.Second, time.Second)
	cfg.MasterCacheTTL = getEnvAsDuration("MASTER_CACHE_TTL_SECONDS", 10*time.Minute, time.Second)
	cfg.ExposeDevMessages = getEnvAsBool("EXPOSE_DEV_MESSAGES", env != "production")

	logger.Debug("ledger config loaded",
		"system_actor", cfg.SystemActor,
		"allocation_lock_ttl", cfg.AllocationLockTTL.String(),
		"expose_dev_messages", cfg.ExposeDevMessages,
	)
}

func loadTelemetryConfig(cfg *TelemetryConfig, logger *slog.Logger) {
	cfg.MetricsEnabled = getEnvAsBool("METRICS_ENABLED", true)
	cfg.MetricsNamespace = os.Getenv("METRICS_NAMESPACE")
	if cfg.MetricsNamespace == "" {
		cfg.MetricsNamespace = "ims"
	}
	cfg.ServiceName = os.Getenv("OTEL_SERVICE_NAME")
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ims-backend"
	}
	logger.Debug("telemetry config loaded", "metrics", cfg.MetricsEnabled, "service", cfg.ServiceName)
}

// Helper functions

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvAsInt32(key string, defaultVal int32) int32 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 32); err == nil {
			return int32(parsed)
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// getEnvAsDuration reads an integer count of unit.
func getEnvAsDuration(key string, defaultVal, unit time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return time.Duration(parsed) * unit
		}
	}
	return defaultVal
}

func splitAndTrim(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ActorID parses SystemActor.
func (c LedgerConfig) ActorID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.SystemActor)
	if err != nil {
		return uuid.Nil, fmt.Errorf("SYSTEM_ACTOR_ID %q is not a valid UUID: %w", c.SystemActor, err)
	}
	return id, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if _, err := c.Ledger.ActorID(); err != nil {
		return err
	}
	if c.Ledger.AllocationLockTTL <= 0 {
		return fmt.Errorf("ALLOCATION_LOCK_TTL_SECONDS must be positive")
	}
	if c.IsProduction() && len(c.CORS.AllowedOrigins) == 1 && c.CORS.AllowedOrigins[0] == "*" {
		return fmt.Errorf("CORS wildcard origin (*) is not allowed in production")
	}
	return nil
}
