package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Identity Store (external credential authority)
	IdentityURL        string
	IdentityServiceKey string

	// JWT secret shared with the Identity Store, used to validate the
	// bearer tokens it issues.
	JWTSecret string

	// Bcrypt hash of the admin panel secret. The console's delete endpoint
	// accepts this secret as a fallback credential when no bearer token is
	// supplied; the plaintext secret is never stored server-side.
	AdminPanelSecretHash string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get values from environment variables with defaults
	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "audycon"),
		DBPassword: getEnv("DB_PASSWORD", "audycon"),
		DBName:     getEnv("DB_NAME", "audycon"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Identity Store
		IdentityURL:        getEnv("IDENTITY_URL", "http://localhost:9999"),
		IdentityServiceKey: getEnv("IDENTITY_SERVICE_KEY", ""),

		JWTSecret:            getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		AdminPanelSecretHash: getEnv("ADMIN_PANEL_SECRET_HASH", ""),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
