// Package config handles loading and validation of application configuration
// from environment variables (optionally seeded from a .env file).
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minSecretLength = 32
)

// Storage drivers selectable through STORAGE_DRIVER.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT"`
	Port           string      `mapstructure:"PORT"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS"`
	Version        string      `mapstructure:"VERSION"`
	// JwtSecretKey verifies HS256 access tokens issued by the auth provider.
	JwtSecretKey string `mapstructure:"JWT_SECRET_KEY"`
	// InviteSecret signs group invite tokens. Kept separate from JwtSecretKey so an
	// invite can never pass as an access token.
	InviteSecret   string   `mapstructure:"INVITE_SECRET"`
	InviteTTLHours int      `mapstructure:"INVITE_TTL_HOURS"`
	FrontendURL    string   `mapstructure:"FRONTEND_URL"`
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"DRIVER"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST"`
	Port           int    `mapstructure:"PORT"`
	User           string `mapstructure:"USER"`
	Password       string `mapstructure:"PASSWORD"`
	Name           string `mapstructure:"NAME"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS"`
	MinConnections int    `mapstructure:"MIN_CONNECTIONS"`
	SSLMode        string `mapstructure:"SSL_MODE"`
	ConnMaxLife    string `mapstructure:"CONN_MAX_LIFE"`
	AutoMigrate    bool   `mapstructure:"AUTO_MIGRATE"`
}

// URL returns a postgres:// connection URL usable by pgxpool and golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// MongoConfig holds MongoDB connection details for the document store driver.
type MongoConfig struct {
	URI            string `mapstructure:"URI"`
	Database       string `mapstructure:"DATABASE"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS"`
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS"`
	Password     string `mapstructure:"PASSWORD"`
	DB           int    `mapstructure:"DB"`
	UseTLS       bool   `mapstructure:"USE_TLS"`
	PoolSize     int    `mapstructure:"POOL_SIZE"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS"`
}

// EmailConfig holds configuration for sending emails through Resend.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"ENABLED"`
	FromAddress  string `mapstructure:"FROM_ADDRESS"`
	FromName     string `mapstructure:"FROM_NAME"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	// Circuit breaker around the Resend API.
	BreakerMaxFailures    uint32 `mapstructure:"BREAKER_MAX_FAILURES"`
	BreakerTimeoutSeconds int    `mapstructure:"BREAKER_TIMEOUT_SECONDS"`
}

// EventServiceConfig holds configuration for the Redis-based event publisher.
type EventServiceConfig struct {
	PublishTimeoutSeconds int `mapstructure:"PUBLISH_TIMEOUT_SECONDS"`
}

// RateLimitConfig holds configuration for the per-user write rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"REQUESTS_PER_MINUTE"`
	WindowSeconds     int `mapstructure:"WINDOW_SECONDS"`
}

// WorkerPoolConfig holds configuration for the notification worker pool.
type WorkerPoolConfig struct {
	MaxWorkers             int `mapstructure:"MAX_WORKERS"`
	QueueSize              int `mapstructure:"QUEUE_SIZE"`
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// ReceiptStorageConfig configures the S3-compatible bucket for receipt images.
type ReceiptStorageConfig struct {
	Enabled         bool   `mapstructure:"ENABLED"`
	Endpoint        string `mapstructure:"ENDPOINT"`
	Region          string `mapstructure:"REGION"`
	Bucket          string `mapstructure:"BUCKET"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY"`
	URLTTLMinutes   int    `mapstructure:"URL_TTL_MINUTES"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server       ServerConfig         `mapstructure:"SERVER"`
	Storage      StorageConfig        `mapstructure:"STORAGE"`
	Database     DatabaseConfig       `mapstructure:"DATABASE"`
	Mongo        MongoConfig          `mapstructure:"MONGO"`
	Redis        RedisConfig          `mapstructure:"REDIS"`
	Email        EmailConfig          `mapstructure:"EMAIL"`
	EventService EventServiceConfig   `mapstructure:"EVENT_SERVICE"`
	RateLimit    RateLimitConfig      `mapstructure:"RATE_LIMIT"`
	WorkerPool   WorkerPoolConfig     `mapstructure:"WORKER_POOL"`
	Receipts     ReceiptStorageConfig `mapstructure:"RECEIPTS"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.INVITE_TTL_HOURS", 72)
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("STORAGE.DRIVER", StorageDriverPostgres)
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "nomadsplit_dev")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("DATABASE.MIN_CONNECTIONS", 2)
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("DATABASE.AUTO_MIGRATE", true)
	v.SetDefault("MONGO.URI", "")
	v.SetDefault("MONGO.DATABASE", "nomadsplit")
	v.SetDefault("MONGO.TIMEOUT_SECONDS", 10)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 5)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("EMAIL.ENABLED", true)
	v.SetDefault("EMAIL.FROM_NAME", "Nomad Split")
	v.SetDefault("EMAIL.BREAKER_MAX_FAILURES", 5)
	v.SetDefault("EMAIL.BREAKER_TIMEOUT_SECONDS", 60)
	v.SetDefault("EVENT_SERVICE.PUBLISH_TIMEOUT_SECONDS", 5)
	v.SetDefault("RATE_LIMIT.REQUESTS_PER_MINUTE", 60)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 4)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 500)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("RECEIPTS.ENABLED", false)
	v.SetDefault("RECEIPTS.REGION", "auto")
	v.SetDefault("RECEIPTS.URL_TTL_MINUTES", 15)
}

var envBindings = [][2]string{
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "APP_VERSION"},
	{"SERVER.JWT_SECRET_KEY", "JWT_SECRET_KEY"},
	{"SERVER.INVITE_SECRET", "INVITE_SECRET"},
	{"SERVER.INVITE_TTL_HOURS", "INVITE_TTL_HOURS"},
	{"SERVER.FRONTEND_URL", "FRONTEND_URL"},
	{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
	{"STORAGE.DRIVER", "STORAGE_DRIVER"},
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"DATABASE.MAX_CONNECTIONS", "DB_MAX_CONNECTIONS"},
	{"DATABASE.MIN_CONNECTIONS", "DB_MIN_CONNECTIONS"},
	{"DATABASE.CONN_MAX_LIFE", "DB_CONN_MAX_LIFE"},
	{"DATABASE.AUTO_MIGRATE", "DB_AUTO_MIGRATE"},
	{"MONGO.URI", "MONGO_URI"},
	{"MONGO.DATABASE", "MONGO_DATABASE"},
	{"MONGO.TIMEOUT_SECONDS", "MONGO_TIMEOUT_SECONDS"},
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	{"EMAIL.ENABLED", "EMAIL_ENABLED"},
	{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
	{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
	{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
	{"EMAIL.BREAKER_MAX_FAILURES", "EMAIL_BREAKER_MAX_FAILURES"},
	{"EMAIL.BREAKER_TIMEOUT_SECONDS", "EMAIL_BREAKER_TIMEOUT_SECONDS"},
	{"EVENT_SERVICE.PUBLISH_TIMEOUT_SECONDS", "EVENT_SERVICE_PUBLISH_TIMEOUT_SECONDS"},
	{"RATE_LIMIT.REQUESTS_PER_MINUTE", "RATE_LIMIT_REQUESTS_PER_MINUTE"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	{"WORKER_POOL.MAX_WORKERS", "WORKER_POOL_MAX_WORKERS"},
	{"WORKER_POOL.QUEUE_SIZE", "WORKER_POOL_QUEUE_SIZE"},
	{"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", "WORKER_POOL_SHUTDOWN_TIMEOUT_SECONDS"},
	{"RECEIPTS.ENABLED", "RECEIPTS_ENABLED"},
	{"RECEIPTS.ENDPOINT", "RECEIPTS_ENDPOINT"},
	{"RECEIPTS.REGION", "RECEIPTS_REGION"},
	{"RECEIPTS.BUCKET", "RECEIPTS_BUCKET"},
	{"RECEIPTS.ACCESS_KEY_ID", "RECEIPTS_ACCESS_KEY_ID"},
	{"RECEIPTS.SECRET_ACCESS_KEY", "RECEIPTS_SECRET_ACCESS_KEY"},
	{"RECEIPTS.URL_TTL_MINUTES", "RECEIPTS_URL_TTL_MINUTES"},
}

// LoadConfig loads configuration from environment variables using Viper,
// applies defaults, unmarshals and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	// ALLOWED_ORIGINS arrives as a comma-separated string from the environment.
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Server.TrustedProxies = splitList(cfg.Server.TrustedProxies)
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"storage_driver", cfg.Storage.Driver,
		"db_host", cfg.Database.Host,
		"redis_address", cfg.Redis.Address,
		"allowed_origins", cfg.Server.AllowedOrigins,
		"receipts_enabled", cfg.Receipts.Enabled,
	)

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// validateConfig checks the loaded configuration. Optional integrations that are
// enabled without credentials are switched off with a warning instead of failing.
func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if len(cfg.Server.JwtSecretKey) < minSecretLength {
		return fmt.Errorf("JWT secret key must be at least %d characters long", minSecretLength)
	}
	if len(cfg.Server.InviteSecret) < minSecretLength {
		return fmt.Errorf("invite secret must be at least %d characters long", minSecretLength)
	}
	if cfg.Server.InviteSecret == cfg.Server.JwtSecretKey {
		return fmt.Errorf("invite secret must differ from the JWT secret key")
	}
	if cfg.Server.InviteTTLHours <= 0 {
		return fmt.Errorf("invite TTL must be positive")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	switch cfg.Storage.Driver {
	case StorageDriverPostgres:
		if cfg.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if cfg.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if cfg.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
		if cfg.Database.Password == "" {
			log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
		}
	case StorageDriverMongo:
		if cfg.Mongo.URI == "" {
			return fmt.Errorf("mongo URI is required when STORAGE_DRIVER=mongo")
		}
		if cfg.Mongo.Database == "" {
			return fmt.Errorf("mongo database is required")
		}
		if cfg.Mongo.TimeoutSeconds <= 0 {
			return fmt.Errorf("mongo timeout must be positive")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	validateEmailConfig(&cfg.Email, log)
	if err := validateReceiptConfig(&cfg.Receipts, log); err != nil {
		return err
	}

	if cfg.EventService.PublishTimeoutSeconds <= 0 {
		return fmt.Errorf("event service publish timeout must be positive")
	}
	if cfg.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}
	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}

	return nil
}

// validateEmailConfig disables email delivery when it cannot work.
func validateEmailConfig(cfg *EmailConfig, log *zap.SugaredLogger) {
	if !cfg.Enabled {
		return
	}
	if cfg.ResendAPIKey == "" || cfg.FromAddress == "" {
		log.Warn("Resend API key or from address not set, auto-disabling email notifications")
		cfg.Enabled = false
		return
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerTimeoutSeconds <= 0 {
		cfg.BreakerTimeoutSeconds = 60
	}
}

func validateReceiptConfig(cfg *ReceiptStorageConfig, log *zap.SugaredLogger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		log.Warn("Receipt storage credentials incomplete, auto-disabling receipt uploads")
		cfg.Enabled = false
		return nil
	}
	if cfg.Endpoint != "" {
		if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
			return fmt.Errorf("invalid receipt storage endpoint: %w", err)
		}
	}
	if cfg.URLTTLMinutes <= 0 {
		return fmt.Errorf("receipt URL TTL must be positive")
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
