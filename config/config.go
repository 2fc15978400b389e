package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every runtime setting, sourced from environment variables.
type Config struct {
	Port          string
	AllowedOrigin string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	StripeSecretKey string

	TaxRate     float64 // fraction of the subtotal, e.g. 0.08
	ShippingFee float64 // flat fee per order
}

// Load reads configuration from the environment, applying defaults where a
// variable is unset.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          getEnv("DB_NAME", "storefront"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		TaxRate:         getEnvFloat("TAX_RATE", 0.08),
		ShippingFee:     getEnvFloat("SHIPPING_FEE", 10.00),
	}
}

// DSN returns the Postgres connection string. DATABASE_URL wins when set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
