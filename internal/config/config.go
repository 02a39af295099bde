package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string

	GeminiAPIKey string
	GeminiModel  string

	Port        string
	GinMode     string
	CORSOrigins []string

	// Object store holding uploaded presentations
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	// Identity provider used for bearer-token verification
	IdentityAPIKey string
	IdentityAPIURL string

	// Pipeline tuning
	ChunkSize            int
	DefaultQuestionCount int

	// PPTX -> PDF conversion
	SofficeBin        string
	ConvertTimeoutSec int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/pptx_quiz"),
		DBName:   getEnv("DB_NAME", "pptx_quiz"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", "pptx-uploads"),
		StorageUseSSL:    getEnvBool("STORAGE_USE_SSL", false),

		IdentityAPIKey: getEnv("IDENTITY_API_KEY", ""),
		IdentityAPIURL: getEnv("IDENTITY_API_URL", "https://identitytoolkit.googleapis.com/v1/accounts:lookup"),

		ChunkSize:            getEnvInt("CHUNK_SIZE", 3),
		DefaultQuestionCount: getEnvInt("DEFAULT_QUESTION_COUNT", 10),

		SofficeBin:        getEnv("SOFFICE_BIN", "libreoffice"),
		ConvertTimeoutSec: getEnvInt("CONVERT_TIMEOUT", 120),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
