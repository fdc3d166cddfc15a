package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Lock       LockConfig
	Reconciler ReconcilerConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

// CacheConfig controls entry lifetimes for the read-through cache.
// BaseTTL+Jitter spreads expirations so entries cached together do not
// expire together; NegativeTTL is deliberately short because a "confirmed
// absent" marker goes stale the moment the entity is created.
type CacheConfig struct {
	BaseTTL     time.Duration
	Jitter      time.Duration
	NegativeTTL time.Duration
	// Fill-lock parameters for cache-miss resolution
	FillLockWait  time.Duration
	FillLockLease time.Duration
	FillRetries   int
	FillRetryWait time.Duration
}

// LockConfig bounds the user-scoped mutation locks.
type LockConfig struct {
	SubmitWait  time.Duration
	SubmitLease time.Duration
	CartWait    time.Duration
	CartLease   time.Duration
}

// ReconcilerConfig drives the timeout sweeps over stuck orders.
type ReconcilerConfig struct {
	UnpaidInterval   time.Duration
	UnpaidWindow     time.Duration
	DeliveryInterval time.Duration
	DeliveryWindow   time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "takeout_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Cache: CacheConfig{
			BaseTTL:       getDurationEnv("CACHE_BASE_TTL", time.Hour),
			Jitter:        getDurationEnv("CACHE_TTL_JITTER", 10*time.Minute),
			NegativeTTL:   getDurationEnv("CACHE_NEGATIVE_TTL", 5*time.Minute),
			FillLockWait:  getDurationEnv("CACHE_FILL_LOCK_WAIT", 100*time.Millisecond),
			FillLockLease: getDurationEnv("CACHE_FILL_LOCK_LEASE", 3*time.Second),
			FillRetries:   getIntEnv("CACHE_FILL_RETRIES", 4),
			FillRetryWait: getDurationEnv("CACHE_FILL_RETRY_WAIT", 50*time.Millisecond),
		},
		Lock: LockConfig{
			SubmitWait:  getDurationEnv("LOCK_SUBMIT_WAIT", 2*time.Second),
			SubmitLease: getDurationEnv("LOCK_SUBMIT_LEASE", 5*time.Second),
			CartWait:    getDurationEnv("LOCK_CART_WAIT", 2*time.Second),
			CartLease:   getDurationEnv("LOCK_CART_LEASE", 5*time.Second),
		},
		Reconciler: ReconcilerConfig{
			UnpaidInterval:   getDurationEnv("RECONCILER_UNPAID_INTERVAL", time.Minute),
			UnpaidWindow:     getDurationEnv("RECONCILER_UNPAID_WINDOW", 15*time.Minute),
			DeliveryInterval: getDurationEnv("RECONCILER_DELIVERY_INTERVAL", 24*time.Hour),
			DeliveryWindow:   getDurationEnv("RECONCILER_DELIVERY_WINDOW", 60*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Build database DSN
	cfg.Database.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
