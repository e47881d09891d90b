package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	Port            int
	Host            string
	DBPath          string
	MaxCapital      float64
	MaxContribution float64
	MaxYears        int
	MaxRate         float64
	OTELEndpoint    string
	OTELServiceName string
	LogLevel        string
	LogFormat       string
}

// LoadConfig reads the configuration from the environment, loading .env first
// when one is present.
func LoadConfig() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("PORT", 8000),
		Host:            getEnvString("HOST", "127.0.0.1"),
		DBPath:          getEnvString("DB_PATH", "financas.db"),
		MaxCapital:      getEnvFloat("MAX_CAPITAL", 1e9),
		MaxContribution: getEnvFloat("MAX_CONTRIBUTION", 1e8),
		MaxYears:        getEnvInt("MAX_YEARS", 100),
		MaxRate:         getEnvFloat("MAX_RATE", 200),
		OTELEndpoint:    getEnvString("OTEL_ENDPOINT", ""),
		OTELServiceName: getEnvString("OTEL_SERVICE_NAME", "financas"),
		LogLevel:        getEnvString("LOG_LEVEL", "INFO"),
		LogFormat:       getEnvString("LOG_FORMAT", "text"),
	}

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
