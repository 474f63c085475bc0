package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the PostgreSQL connection settings for the profile store.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig reads the connection settings from the environment, falling
// back to local development defaults.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Fine without one; systemd or the container runtime sets the env.
		fmt.Println("Warning: .env file not found")
	}

	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "audycon"),
		Password: getEnv("DB_PASSWORD", "audycon"),
		DBName:   getEnv("DB_NAME", "audycon"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}, nil
}

// DSN returns the keyword/value connection string GORM's postgres driver
// expects.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres:// form of the same connection, which the
// migration tooling expects.
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
