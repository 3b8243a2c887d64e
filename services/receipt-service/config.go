package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	awspkg "github.com/kadekedwin/billforge/pkg/aws"
	"github.com/kadekedwin/billforge/services/receipt-service/database"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
)

// Config holds all configuration for the receipt service.
type Config struct {
	Env               string
	Port              string
	SessionCookieName string
	JWTSecret         string
	AllowedOrigins    string
	CloudWatchEnabled bool

	Printer models.PrinterConfig

	ProxyTimeout      time.Duration
	ProxyAllowedHosts []string
	ImageCacheTTL     time.Duration
	RedisURL          string

	Postgres database.PostgresConfig

	ArchiveBucket      string
	S3PathStyle        bool
	ReceiptSNSTopicARN string

	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8090"),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "token"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		CloudWatchEnabled: os.Getenv("CLOUDWATCH_ENABLED") == "true",
		Printer: models.PrinterConfig{
			Type:         models.PrinterType(getEnv("PRINTER_TYPE", string(models.PrinterEpson))),
			Interface:    getEnv("PRINTER_INTERFACE", "tcp://127.0.0.1:9100"),
			CharacterSet: getEnv("PRINTER_CHARACTER_SET", models.DefaultCharacterSet),
			Width:        getInt("PRINTER_WIDTH", models.DefaultPrinterWidth),
			Timeout:      getInt("PRINTER_TIMEOUT_MS", models.DefaultPrinterTimeout),
		},
		ProxyTimeout:      getDuration("PROXY_IMAGE_TIMEOUT", 10*time.Second),
		ProxyAllowedHosts: splitList(os.Getenv("PROXY_IMAGE_ALLOWED_HOSTS")),
		ImageCacheTTL:     getDuration("PROXY_IMAGE_CACHE_TTL", 24*time.Hour),
		RedisURL:          os.Getenv("REDIS_URL"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       os.Getenv("POSTGRES_DB"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		ArchiveBucket:      os.Getenv("RECEIPT_ARCHIVE_BUCKET"),
		S3PathStyle:        os.Getenv("AWS_S3_ENDPOINT") != "" || os.Getenv("AWS_ENDPOINT") != "",
		ReceiptSNSTopicARN: os.Getenv("RECEIPT_SNS_TOPIC_ARN"),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
	}

	// Override secrets from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadAWSConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			if m, err := awspkg.GetSecretMap(context.Background(), sm, "receipt/DB_CREDENTIALS"); err == nil {
				overrideString(&cfg.Postgres.User, m["POSTGRES_USER"])
				overrideString(&cfg.Postgres.Password, m["POSTGRES_PASSWORD"])
				overrideString(&cfg.Postgres.DB, m["POSTGRES_DB"])
				overrideString(&cfg.Postgres.Host, m["POSTGRES_HOST"])
				overrideString(&cfg.Postgres.Port, m["POSTGRES_PORT"])
			}
			if v, err := sm.GetSecret(context.Background(), "billforge/JWT_SECRET"); err == nil {
				overrideString(&cfg.JWTSecret, v)
			}
		}
	}

	return cfg
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
