package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT / OTP
	JwtSecret string
	JwtTTL    time.Duration
	OtpTTL    time.Duration
	OtpLength int

	// Server
	ApiPort string

	// OpenAI (criteria extraction)
	OpenAIAPIKey string
	OpenAIModel  string

	// WhatsApp Cloud API
	WhatsAppToken       string
	WhatsAppPhoneID     string
	WhatsAppVerifyToken string
	WhatsAppAPIBaseURL  string

	// AWS S3 (listing photos)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseS3URL     string
	ImageMaxDimension  int

	// Search / Scoring
	DefaultSearchLimit  int
	CoarseFetchLimit    int
	MinMatchScore       int
	ResponsivenessScore int

	// App Defaults
	AppName string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	// Load basic string values
	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "propabridge")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", "gpt-3.5-turbo")
	cfg.WhatsAppToken = getEnv("WHATSAPP_TOKEN", "")
	cfg.WhatsAppPhoneID = getEnv("WHATSAPP_PHONE_ID", "")
	cfg.WhatsAppVerifyToken = getEnv("WHATSAPP_VERIFY_TOKEN", "")
	cfg.WhatsAppAPIBaseURL = getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v19.0")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseS3URL = getEnv("IMAGE_BASE_S3_URL", "")
	cfg.AppName = getEnv("APP_NAME", "PropaBridge")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "86400"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	otpTTLSeconds, err := strconv.ParseInt(getEnv("OTP_TTL_SECONDS", "300"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_TTL_SECONDS: %w", err)
	}
	cfg.OtpTTL = time.Duration(otpTTLSeconds) * time.Second

	cfg.OtpLength, err = strconv.Atoi(getEnv("OTP_LENGTH", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_LENGTH: %w", err)
	}

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	cfg.DefaultSearchLimit, err = strconv.Atoi(getEnv("DEFAULT_SEARCH_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_SEARCH_LIMIT: %w", err)
	}

	cfg.CoarseFetchLimit, err = strconv.Atoi(getEnv("COARSE_FETCH_LIMIT", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid COARSE_FETCH_LIMIT: %w", err)
	}

	cfg.MinMatchScore, err = strconv.Atoi(getEnv("MIN_MATCH_SCORE", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_MATCH_SCORE: %w", err)
	}

	// Placeholder sub-score until inquiry-response history exists.
	cfg.ResponsivenessScore, err = strconv.Atoi(getEnv("RESPONSIVENESS_SCORE", "80"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESPONSIVENESS_SCORE: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
