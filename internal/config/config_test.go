package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ARTIFACTS_BACKEND", "")
	t.Setenv("MODEL_MAX_FEATURES", "")
	t.Setenv("PREDICT_DEFAULT_TOP_N", "")
	t.Setenv("EVENTS_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMongo, cfg.Store.Backend)
	assert.Equal(t, ArtifactsLocal, cfg.Artifacts.Backend)
	assert.Equal(t, 5000, cfg.Model.MaxFeatures)
	assert.Equal(t, int64(42), cfg.Model.Seed)
	assert.InDelta(t, 0.2, cfg.Model.TestSize, 1e-9)
	assert.Equal(t, 3, cfg.Predict.DefaultTopN)
	assert.Equal(t, 10, cfg.Predict.MinSymptomsLength)
	assert.Equal(t, "symptoms", cfg.Mongo.Collection)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("STORE_WRITE_TIMEOUT", "750ms")
	t.Setenv("MODEL_CV_FOLDS", "3")
	t.Setenv("PG_LOG_PREDICTIONS", "false")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Store.WriteTimeout)
	assert.Equal(t, 3, cfg.Model.CVFolds)
	assert.False(t, cfg.PostgreSQL.LogPredictions)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MODEL_MAX_FEATURES", "many")
	t.Setenv("STORE_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Model.MaxFeatures)
	assert.Equal(t, 5*time.Second, cfg.Store.ReadTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"unknown store", func(c *Config) { c.Store.Backend = "redis" }, true},
		{"s3 without bucket", func(c *Config) { c.Artifacts.Backend = ArtifactsS3 }, true},
		{"s3 with bucket", func(c *Config) {
			c.Artifacts.Backend = ArtifactsS3
			c.Artifacts.S3Bucket = "models"
		}, false},
		{"test size out of range", func(c *Config) { c.Model.TestSize = 1 }, true},
		{"events without brokers", func(c *Config) {
			c.Events.Enabled = true
			c.Events.Brokers = nil
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Store:     StoreConfig{Backend: StoreMemory},
				Artifacts: ArtifactsConfig{Backend: ArtifactsLocal},
				Model:     ModelConfig{TestSize: 0.2},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://u:p@db/d"
	assert.Equal(t, "postgres://u:p@db/d", cfg.GetPostgreSQLDSN())
}
