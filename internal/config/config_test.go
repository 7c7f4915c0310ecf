package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("COUNTER_BACKEND", "")
	t.Setenv("SNOWFLAKE_NODE", "not-a-number")

	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "redis", cfg.CounterBackend)
	assert.Equal(t, int64(1), cfg.SnowflakeNode)
	assert.Equal(t, "0.10", cfg.SalesTaxRate)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("COUNTER_BACKEND", "mongo")
	t.Setenv("SNOWFLAKE_NODE", "7")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "mongo", cfg.CounterBackend)
	assert.Equal(t, int64(7), cfg.SnowflakeNode)
}
