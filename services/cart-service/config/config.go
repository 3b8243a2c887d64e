package config

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	awspkg "github.com/kadekedwin/billforge/pkg/aws"
)

type Config struct {
	Env                 string
	Port                string
	RedisURL            string
	CartTTL             time.Duration
	CheckoutSNSTopicARN string
	SessionCookieName   string
	JWTSecret           string
	AllowedOrigins      string
	CloudWatchEnabled   bool
}

// Load reads the cart service configuration from the environment (and .env when present).
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:                 getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8086"),
		RedisURL:            os.Getenv("REDIS_URL"),
		CartTTL:             getDuration("CART_TTL", 7*24*time.Hour),
		CheckoutSNSTopicARN: os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "token"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AllowedOrigins:      getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadAWSConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			if v, err := sm.GetSecret(context.Background(), "billforge/JWT_SECRET"); err == nil && v != "" {
				cfg.JWTSecret = v
			}
		}
	}

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}
