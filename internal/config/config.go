package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// defaultJWTSecret is only fit for local development.
const defaultJWTSecret = "supersecret"

type Config struct {
	HTTPAddr     string        `env:"HTTP_ADDR,default=:8080"`
	PostgresDSN  string        `env:"POSTGRES_DSN,default=host=localhost user=postgres password=postgres dbname=pet_adopt sslmode=disable"`
	RedisAddr    string        `env:"REDIS_ADDR,default=localhost:6379"`
	KafkaBrokers string        `env:"KAFKA_BROKERS,default=localhost:9092"`
	JWTSecret    string        `env:"JWT_SECRET,default=supersecret"`
	JWTTTL       time.Duration `env:"JWT_TTL,default=1h"`
	OTLPEndpoint string        `env:"OTLP_ENDPOINT"`
	LogLevel     string        `env:"LOG_LEVEL,default=info"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=40"`

	S3 S3Config
}

// S3Config points at S3-compatible storage for pet images. Uploads are disabled when Bucket is empty.
type S3Config struct {
	Endpoint      string `env:"S3_ENDPOINT"`
	Region        string `env:"S3_REGION,default=us-east-1"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	Bucket        string `env:"S3_BUCKET"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using environment", "error", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", cfg.RateLimitRPS)
	}

	if cfg.UsesDefaultJWTSecret() {
		slog.Warn("JWT_SECRET is not set, tokens are signed with the built-in development secret; set JWT_SECRET before deploying")
	}

	slog.Info("config loaded", "http_addr", cfg.HTTPAddr, "redis_addr", cfg.RedisAddr, "kafka_brokers", cfg.Brokers(), "s3_bucket", cfg.S3.Bucket)
	return &cfg, nil
}

// Brokers splits the comma separated KAFKA_BROKERS value.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// UsesDefaultJWTSecret reports whether JWT_SECRET was left at the development default.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}
