// Package config loads process configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds every setting the backend reads from the environment.
// Credentials are validated by the clients that use them, not here, so a
// deployment that never touches a given provider does not need its key.
type Config struct {
	HTTPPort string

	MongoURI string
	MongoDB  string

	OpenAIAPIKey    string
	OpenAIModel     string
	OpenRouterKey   string
	OpenRouterModel string

	SerperAPIKey string

	GeminiAPIKey string

	AzureSearchEndpoint string
	AzureSearchAPIKey   string
	AzureSearchIndex    string

	DefaultCountry string
	LogLevel       string
}

// Load reads a .env file when present and builds a Config from the
// environment with defaults matching local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		MongoURI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGODB_DB", "glowly"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenRouterKey:       os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:     getEnv("OPENROUTER_MODEL", "openai/gpt-oss-20b:free"),
		SerperAPIKey:        os.Getenv("SERPER_API_KEY"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		AzureSearchEndpoint: os.Getenv("AZURE_SEARCH_ENDPOINT"),
		AzureSearchAPIKey:   os.Getenv("AZURE_SEARCH_API_KEY"),
		AzureSearchIndex:    getEnv("AZURE_SEARCH_INDEX", "glowly-memory"),
		DefaultCountry:      getEnv("DEFAULT_COUNTRY", "us"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
