package config

import (
	"errors"  // For validation errors
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort               string   // Application port
	DBDriver              string   // Database driver: mysql or postgres
	DBUser                string   // Database user
	DBPassword            string   // Database password
	DBHost                string   // Database host
	DBPort                string   // Database port
	DBName                string   // Database name
	JWTSecret             string   // JWT secret key
	RedisAddr             string   // Redis server address
	RedisPass             string   // Redis password
	RedisDB               int      // Redis database number
	IsProd                bool     // Is production environment
	RazorpayKeyID         string   // Payment gateway key id, also sent to the checkout client
	RazorpayKeySecret     string   // Payment gateway key secret, signs payment callbacks
	RazorpayWebhookSecret string   // Secret for webhook bodies
	RazorpayBaseURL       string   // Gateway API root, empty for the default
	KafkaBrokers          []string // Kafka brokers for notification events, empty disables publishing
	KafkaTopic            string   // Kafka topic for notification events
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg := &Config{
		AppPort:               getEnv("APP_PORT", "8080"),                    // Application port
		DBDriver:              getEnv("DB_DRIVER", "mysql"),                  // Database driver
		DBUser:                os.Getenv("DB_USER"),                          // Database user
		DBPassword:            os.Getenv("DB_PASSWORD"),                      // Database password
		DBHost:                os.Getenv("DB_HOST"),                          // Database host
		DBPort:                os.Getenv("DB_PORT"),                          // Database port
		DBName:                os.Getenv("DB_NAME"),                          // Database name
		JWTSecret:             os.Getenv("JWT_SECRET"),                       // JWT secret key
		RedisAddr:             os.Getenv("REDIS_ADDR"),                       // Redis server address
		RedisPass:             os.Getenv("REDIS_PASS"),                       // Redis password
		RedisDB:               redisDB,                                       // Redis database number
		IsProd:                os.Getenv("IS_PROD") == "true",                // Is production environment
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),                  // Gateway key id
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),              // Gateway key secret
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),          // Webhook secret
		RazorpayBaseURL:       os.Getenv("RAZORPAY_BASE_URL"),                // Gateway API root
		KafkaBrokers:          splitList(os.Getenv("KAFKA_BROKERS")),         // Kafka brokers
		KafkaTopic:            getEnv("KAFKA_TOPIC", "wallet.notifications"), // Kafka topic
	}
	if cfg.RazorpayWebhookSecret == "" {
		cfg.RazorpayWebhookSecret = cfg.RazorpayKeySecret // Fall back to the key secret
	}
	return cfg
}

// Validate reports settings the service cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.RazorpayKeyID == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_ID is required"))
	}
	if c.RazorpayKeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_SECRET is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
