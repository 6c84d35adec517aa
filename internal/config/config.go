package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabaseURL     string
	DatabasePath    string
	SessionDuration time.Duration
	UploadMaxSize   int64
	StaticFilesPath string
	TemplatesPath   string
	MigrationsPath  string
	UploadsPath     string

	// Signing secret for email verification and password reset links
	TokenSecret string

	AppBaseURL string

	// Email (Amazon SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// OpenAI meal planning
	OpenAIAPIKey string
	OpenAIModel  string

	// Google sign-in
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	// Optional .env file for local development
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8000"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabasePath:    getEnv("DB_PATH", "./homeassistant.db"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),
		UploadMaxSize:   5 * 1024 * 1024, // 5MB
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		UploadsPath:     getEnv("UPLOADS_PATH", "./uploads"),

		TokenSecret: getEnv("TOKEN_SECRET", "changeme"),

		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8000"),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Myte Home Assistant"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", getEnv("APP_BASE_URL", "http://localhost:8000")),

		Debug: getEnvBool("DEBUG", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool reads a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable (e.g. "24h")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
