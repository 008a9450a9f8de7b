package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort        string
	StoreDriver     string // "postgres" or "memory"
	DatabaseURL     string
	JWTSecret       string
	TokenExpiration time.Duration
	EncryptionKey   []byte // Raw key bytes (32 for AES-256), seals chat transcripts
	FrontendURL     string
	AI              AIConfig
}

// AIConfig configures the completion model. It is handed to the completer at
// construction time.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Enabled reports whether enough credentials are present to call the model.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
	}

	storeDriver := strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres))
	if storeDriver != StoreDriverPostgres && storeDriver != StoreDriverMemory {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (expected %q or %q)", storeDriver, StoreDriverPostgres, StoreDriverMemory)
	}

	dbURL := getEnv("DATABASE_URL", "")
	if storeDriver == StoreDriverPostgres && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	tokenExpHours := 24
	if v, err := parseOptionalIntEnv("JWT_EXPIRATION_HOURS"); err != nil {
		log.Printf("Warning: %v, using default 24h", err)
	} else if v != nil && *v > 0 {
		tokenExpHours = *v
	}

	// Load and decode the Encryption Key (MUST be 64 hex characters for 32 bytes)
	encryptionKeyHex := getEnv("ENCRYPTION_KEY", "")
	if encryptionKeyHex == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY environment variable is not set")
	}
	encryptionKeyBytes, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ENCRYPTION_KEY from hex: %w", err)
	}
	if len(encryptionKeyBytes) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 32 bytes (64 hex characters) long, got %d bytes", len(encryptionKeyBytes))
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "5000"),
		StoreDriver:     storeDriver,
		DatabaseURL:     dbURL,
		JWTSecret:       getEnv("JWT_SECRET", "default-super-secret-key"), // CHANGE THIS IN PRODUCTION!
		TokenExpiration: time.Hour * time.Duration(tokenExpHours),
		EncryptionKey:   encryptionKeyBytes,
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		AI:              ai,
	}

	log.Printf("Loaded config: Port=%s, Store=%s, DB_URL=***, TokenExp=%s, EncryptionKey=***, AIModel=%q, AITimeout=%s",
		cfg.HTTPPort, cfg.StoreDriver, cfg.TokenExpiration, cfg.AI.Model, cfg.AI.Timeout)

	return cfg, nil
}

func loadAIConfig() (AIConfig, error) {
	temperature := 0.7
	if v, err := parseOptionalFloatEnv("AI_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if v != nil {
		temperature = *v
	}

	maxTokens := 500
	if v, err := parseOptionalIntEnv("AI_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if v != nil {
		maxTokens = *v
	}

	timeoutSeconds := 30
	if v, err := parseOptionalIntEnv("AI_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if v != nil && *v > 0 {
		timeoutSeconds = *v
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnv("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnv("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
