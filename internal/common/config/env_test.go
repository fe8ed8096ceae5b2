package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, BackendBolt, cfg.LedgerBackend)
	assert.Equal(t, "main", cfg.LedgerName)
	assert.Equal(t, "./data/tallybook.db", cfg.BoltPath)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv_DynamoDBRequiresTable(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", BackendDynamoDB)

	_, err := LoadFromEnv()
	require.Error(t, err)

	t.Setenv("DYNAMODB_TABLE_NAME", "tallybook-table")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "tallybook-table", cfg.DynamoDBTableName)
	assert.Equal(t, "ap-southeast-1", cfg.AWSRegion)

	t.Setenv("AWS_REGION", "us-west-2")
	cfg, err = LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.AWSRegion)
}

func TestLoadFromEnv_UnknownBackend(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "sqlite")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnv_KafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadFromEnv_Production(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
