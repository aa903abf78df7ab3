package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Lock backends accepted by LOCK_BACKEND.
const (
	LockBackendMemory   = "memory"
	LockBackendRedis    = "redis"
	LockBackendDynamoDB = "dynamodb"
)

// Config holds the service configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Inngest  InngestConfig
	Logging  LoggingConfig
	Email    EmailConfig
	Issuer   IssuerConfig
	Storage  StorageConfig
	Locks    LockConfig
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Port            string
	Host            string
	Env             string
	BaseURL         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// InngestConfig holds the Inngest credentials
type InngestConfig struct {
	EventKey   string
	SigningKey string
	AppID      string
	Dev        bool
}

// LoggingConfig holds the logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// EmailConfig holds the outgoing mail settings.
type EmailConfig struct {
	ResendAPIKey string
	From         string
	ReplyTo      string
	SignOff      string
}

// IssuerConfig is the business identity printed on every invoice.
type IssuerConfig struct {
	Name      string
	Street    string
	City      string
	VATNumber string
}

// StorageConfig holds the S3-compatible object storage used to mirror rendered PDFs
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// LockConfig selects the per-invoice lock backend
type LockConfig struct {
	Backend          string
	TTL              time.Duration
	DynamoDBTable    string
	DynamoDBEndpoint string
	AWSRegion        string
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Env:             getEnv("SERVER_ENV", "development"),
			BaseURL:         getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Name:     getEnv("PGDATABASE", "fattura"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Inngest: InngestConfig{
			EventKey:   getEnv("INNGEST_EVENT_KEY", ""),
			SigningKey: getEnv("INNGEST_SIGNING_KEY", ""),
			AppID:      getEnv("INNGEST_APP_ID", "fattura-service"),
			Dev:        getEnvAsBool("INNGEST_DEV", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "onboarding@resend.dev"),
			ReplyTo:      getEnv("EMAIL_REPLY_TO", ""),
			SignOff:      getEnv("EMAIL_SIGN_OFF", "La Tua Azienda"),
		},
		Issuer: IssuerConfig{
			Name:      getEnv("ISSUER_NAME", "Mia Impresa Ltds"),
			Street:    getEnv("ISSUER_STREET", "Via Roma, 123"),
			City:      getEnv("ISSUER_CITY", "Milano, Italia"),
			VATNumber: getEnv("ISSUER_VAT_NUMBER", "12345678901"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("STORAGE_BUCKET", "invoice-documents"),
		},
		Locks: LockConfig{
			Backend:          getEnv("LOCK_BACKEND", LockBackendMemory),
			TTL:              getEnvAsDuration("LOCK_TTL", 2*time.Minute),
			DynamoDBTable:    getEnv("LOCK_DYNAMODB_TABLE", "invoice_locks"),
			DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
			AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.Locks.Backend {
	case LockBackendMemory, LockBackendRedis, LockBackendDynamoDB:
	default:
		return fmt.Errorf("unknown LOCK_BACKEND %q", c.Locks.Backend)
	}

	if c.Locks.TTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive")
	}

	return nil
}

// getEnv returns the variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the variable as an int
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool returns the variable as a bool
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration returns the variable as a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// StorageEnabled reports whether object storage credentials are present
func (c *Config) StorageEnabled() bool {
	return c.Storage.Endpoint != "" && c.Storage.AccessKeyID != "" && c.Storage.SecretAccessKey != ""
}

// InngestEnabled reports whether Inngest credentials are present
func (c *Config) InngestEnabled() bool {
	return c.Inngest.EventKey != "" && c.Inngest.SigningKey != ""
}

// GetDSN returns the Postgres connection string
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}
