package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Riyogosaki/Crystal/database"
)

// Config holds all environment variables for the storefront service.
type Config struct {
	Port string
	Env  string

	JWTSecret string

	Postgres database.PostgresConfig
	RedisURL string
	MongoURL string
	MongoDB  string

	S3Bucket string
	S3Region string

	StripeSecretKey  string
	StripeWebhookKey string

	KafkaBrokers []string
	KafkaTopic   string

	CORSOrigin   string
	MaxBodyBytes int64
}

// LoadConfig loads environment variables into a Config and validates
// the ones the service cannot run without.
func LoadConfig() (*Config, error) {
	// .env is optional; system environment wins.
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "5000"),
		Env:       getEnv("APP_ENV", "development"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Postgres: database.PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   getEnv("POSTGRES_DB", "crystal"),
		},
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		MongoURL: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "crystal"),

		S3Bucket: os.Getenv("S3_BUCKET"),
		S3Region: getEnv("AWS_REGION", "ap-south-1"),

		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		KafkaTopic: getEnv("KAFKA_TOPIC", "order.placed"),

		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
		// Images arrive base64-inlined; the original client capped the
		// JSON body at 15mb.
		MaxBodyBytes: 15 << 20,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
