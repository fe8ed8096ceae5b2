// Package config loads the application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Ledger backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendBolt     = "bolt"
)

// Config represents the application configuration
type Config struct {
	// HTTP server
	Port        string
	Environment string

	// Which Remote implementation backs the ledger document
	LedgerBackend string
	LedgerName    string

	// DynamoDB backend
	DynamoDBTableName string
	AWSRegion         string

	// Bolt backend
	BoltPath string

	// Optional negative-keyword table override for the sign inferencer
	KeywordsPath string

	// Optional commit-event stream
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadFromEnv loads the configuration from environment variables. A .env
// file in the working directory is applied first when present.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		Environment:   getEnvOrDefault("ENVIRONMENT", "dev"),
		LedgerBackend: getEnvOrDefault("LEDGER_BACKEND", BackendBolt),
		LedgerName:    getEnvOrDefault("LEDGER_NAME", "main"),
		KeywordsPath:  os.Getenv("KEYWORDS_PATH"),
		KafkaTopic:    os.Getenv("KAFKA_TOPIC"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	switch cfg.LedgerBackend {
	case BackendDynamoDB:
		cfg.DynamoDBTableName = os.Getenv("DYNAMODB_TABLE_NAME")
		if cfg.DynamoDBTableName == "" {
			return nil, errors.New("DYNAMODB_TABLE_NAME environment variable is required")
		}
		cfg.AWSRegion = getEnvOrDefault("AWS_REGION", "ap-southeast-1")
	case BackendBolt:
		cfg.BoltPath = getEnvOrDefault("BOLT_DB_PATH", "./data/tallybook.db")
	default:
		return nil, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.LedgerBackend)
	}

	return cfg, nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
