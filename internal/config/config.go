package config

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	MinIO     MinIOConfig
	Mongo     MongoConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// DefaultJWTSecret is used when POLLS_JWT_SECRET is unset. Only fit for development.
const DefaultJWTSecret = "secret"

var ErrDefaultJWTSecret = errors.New("POLLS_JWT_SECRET must be set in release mode")

var (
	ConfigInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CookieSecure bool
	// AllowedOrigins are trusted CORS origins besides localhost.
	AllowedOrigins []string
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	Driver string
	// DSN overrides the connection parts below for postgres and mysql.
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the sqlite file, ":memory:" for a throwaway database.
	Path        string
	MaxRetries  int
	RetryDelay  time.Duration
	MaxOpenConn int
	MaxIdleConn int
}

type RedisConfig struct {
	URI          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type KafkaConfig struct {
	Enabled bool
	// Driver is "kafka-go" or "sarama".
	Driver   string
	Brokers  []string
	Topic    string
	ClientID string
}

type MinIOConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MongoConfig points at the optional auth audit log. An empty URI disables it.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("POLLS_HOST", "")
	v.SetDefault("POLLS_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("POLLS_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("POLLS_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("POLLS_IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("POLLS_COOKIE_SECURE", false)
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("POLLS_JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("POLLS_JWT_EXPIRE", "24h")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "polls")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "polls.db")
	v.SetDefault("DB_MAX_RETRIES", 5)
	v.SetDefault("DB_RETRY_DELAY", 5*time.Second)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_DRIVER", "kafka-go")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "poll-votes")
	v.SetDefault("KAFKA_CLIENT_ID", "polls-service")

	v.SetDefault("MINIO_ENABLED", false)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "polls")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "polls")
	v.SetDefault("MONGO_AUDIT_COLLECTION", "auth_events")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_REQUESTS", 30)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
}

// LoadConfig reads the configuration once from the environment, optionally
// seeded by a .env file in the working directory.
func LoadConfig() (*Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Debug("No .env file found, using environment variables")
		}
		v := viper.New()
		v.AutomaticEnv()
		ConfigInstance = FromViper(v)
	})

	return ConfigInstance, nil
}

// FromViper builds a Config from v after applying defaults.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)

	return &Config{
		Server: ServerConfig{
			Host:           v.GetString("POLLS_HOST"),
			Port:           v.GetString("POLLS_PORT"),
			Mode:           v.GetString("GIN_MODE"),
			ReadTimeout:    v.GetDuration("POLLS_READ_TIMEOUT"),
			WriteTimeout:   v.GetDuration("POLLS_WRITE_TIMEOUT"),
			IdleTimeout:    v.GetDuration("POLLS_IDLE_TIMEOUT"),
			CookieSecure:   v.GetBool("POLLS_COOKIE_SECURE"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:         v.GetString("DB_DSN"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			Path:        v.GetString("DB_PATH"),
			MaxRetries:  v.GetInt("DB_MAX_RETRIES"),
			RetryDelay:  v.GetDuration("DB_RETRY_DELAY"),
			MaxOpenConn: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConn: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			URI:          v.GetString("REDIS_URL"),
			MaxRetries:   v.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("POLLS_JWT_SECRET"),
			ExpirationTime: v.GetDuration("POLLS_JWT_EXPIRE"),
		},
		Kafka: KafkaConfig{
			Enabled:  v.GetBool("KAFKA_ENABLED"),
			Driver:   strings.ToLower(v.GetString("KAFKA_DRIVER")),
			Brokers:  splitList(v.GetString("KAFKA_BROKERS")),
			Topic:    v.GetString("KAFKA_TOPIC"),
			ClientID: v.GetString("KAFKA_CLIENT_ID"),
		},
		MinIO: MinIOConfig{
			Enabled:   v.GetBool("MINIO_ENABLED"),
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("MONGO_URI"),
			Database:   v.GetString("MONGO_DB"),
			Collection: v.GetString("MONGO_AUDIT_COLLECTION"),
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			Limit:   v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:  v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UsesDefaultJWTSecret reports whether tokens are signed with the built-in secret
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret
}

// Validate rejects settings that are unsafe to serve with. Release mode
// requires a real JWT secret.
func (c *Config) Validate() error {
	if c.Server.Mode == "release" && c.UsesDefaultJWTSecret() {
		return ErrDefaultJWTSecret
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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
