package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
	Sms       SmsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SchedulerConfig drives the background evaluation workers.
type SchedulerConfig struct {
	SlaIntervalSeconds        int
	EscalationIntervalSeconds int
	SmsIntervalSeconds        int
	BatchSize                 int
	LockTTLSeconds            int
}

// SmsConfig holds SMS delivery parameters.
type SmsConfig struct {
	SenderID        string
	MaxRetries      int
	RetryBaseSec    int
	ProviderGateway string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "msp-platform"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Scheduler: SchedulerConfig{
			SlaIntervalSeconds:        getEnvAsInt("SCHEDULER_SLA_INTERVAL_SECONDS", 60),
			EscalationIntervalSeconds: getEnvAsInt("SCHEDULER_ESCALATION_INTERVAL_SECONDS", 60),
			SmsIntervalSeconds:        getEnvAsInt("SCHEDULER_SMS_INTERVAL_SECONDS", 30),
			BatchSize:                 getEnvAsInt("SCHEDULER_BATCH_SIZE", 200),
			LockTTLSeconds:            getEnvAsInt("SCHEDULER_LOCK_TTL_SECONDS", 30),
		},
		Sms: SmsConfig{
			SenderID:        getEnv("SMS_SENDER_ID", "MSP"),
			MaxRetries:      getEnvAsInt("SMS_MAX_RETRIES", 5),
			RetryBaseSec:    getEnvAsInt("SMS_RETRY_BASE_SECONDS", 60),
			ProviderGateway: getEnv("SMS_PROVIDER_GATEWAY", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SlaInterval returns the SLA detector tick interval.
func (s SchedulerConfig) SlaInterval() time.Duration {
	return time.Duration(s.SlaIntervalSeconds) * time.Second
}

// EscalationInterval returns the escalation evaluator tick interval.
func (s SchedulerConfig) EscalationInterval() time.Duration {
	return time.Duration(s.EscalationIntervalSeconds) * time.Second
}

// SmsInterval returns the SMS delivery tick interval.
func (s SchedulerConfig) SmsInterval() time.Duration {
	return time.Duration(s.SmsIntervalSeconds) * time.Second
}

// LockTTL returns how long a per-ticket evaluation lock is held.
func (s SchedulerConfig) LockTTL() time.Duration {
	return time.Duration(s.LockTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
