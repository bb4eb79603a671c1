package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends understood by the symptom log.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Artifact backends understood by the model persistence layer.
const (
	ArtifactsLocal = "local"
	ArtifactsS3    = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Mongo      MongoConfig
	PostgreSQL PostgreSQLConfig
	Model      ModelConfig
	Artifacts  ArtifactsConfig
	Predict    PredictConfig
	Events     EventsConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  string
	AllowedMethods  string
	AllowedHeaders  string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// StoreConfig selects the symptom log backend and bounds its calls
type StoreConfig struct {
	Backend      string
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
}

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	LogPredictions     bool
}

// ModelConfig holds training hyperparameters and artifact names
type ModelConfig struct {
	CorpusPath     string
	ModelFile      string
	VectorizerFile string
	MaxFeatures    int
	TestSize       float64
	Seed           int64
	C              float64
	MaxIter        int
	Tolerance      float64
	CVFolds        int
}

// ArtifactsConfig selects where trained models are stored
type ArtifactsConfig struct {
	Backend  string
	Dir      string
	S3Bucket string
	S3Prefix string
}

// PredictConfig holds prediction request defaults
type PredictConfig struct {
	DefaultTopN       int
	MinSymptomsLength int
}

// EventsConfig holds the prediction event publisher configuration
type EventsConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8000),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods:  getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders:  getEnv("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Authorization"),
			MaxBodyBytes:    int64(getEnvAsInt("SERVER_MAX_BODY_BYTES", 1<<20)),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
			WriteTimeout: getEnvAsDuration("STORE_WRITE_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("STORE_READ_TIMEOUT", 5*time.Second),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017/Smart-Diagnosis"),
			Database:   getEnv("MONGO_DB", "Smart-Diagnosis"),
			Collection: getEnv("MONGO_COLLECTION", "symptoms"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "smart_diagnosis"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			LogPredictions:     getEnvAsBool("PG_LOG_PREDICTIONS", true),
		},
		Model: ModelConfig{
			CorpusPath:     getEnv("MODEL_CORPUS_PATH", "Symptom2Disease.csv"),
			ModelFile:      getEnv("MODEL_FILE", "disease_predictor_model.json.gz"),
			VectorizerFile: getEnv("MODEL_VECTORIZER_FILE", "tfidf_vectorizer.json.gz"),
			MaxFeatures:    getEnvAsInt("MODEL_MAX_FEATURES", 5000),
			TestSize:       getEnvAsFloat("MODEL_TEST_SIZE", 0.2),
			Seed:           int64(getEnvAsInt("MODEL_SEED", 42)),
			C:              getEnvAsFloat("MODEL_SVM_C", 1.0),
			MaxIter:        getEnvAsInt("MODEL_SVM_MAX_ITER", 10000),
			Tolerance:      getEnvAsFloat("MODEL_SVM_TOL", 1e-4),
			CVFolds:        getEnvAsInt("MODEL_CV_FOLDS", 5),
		},
		Artifacts: ArtifactsConfig{
			Backend:  strings.ToLower(getEnv("ARTIFACTS_BACKEND", ArtifactsLocal)),
			Dir:      getEnv("ARTIFACTS_DIR", "./models"),
			S3Bucket: getEnv("ARTIFACTS_S3_BUCKET", ""),
			S3Prefix: getEnv("ARTIFACTS_S3_PREFIX", "models/"),
		},
		Predict: PredictConfig{
			DefaultTopN:       getEnvAsInt("PREDICT_DEFAULT_TOP_N", 3),
			MinSymptomsLength: getEnvAsInt("PREDICT_MIN_SYMPTOMS_LENGTH", 10),
		},
		Events: EventsConfig{
			Enabled: getEnvAsBool("EVENTS_ENABLED", false),
			Brokers: getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "disease-predictions"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects combinations the service cannot start with
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want mongo, postgres or memory)", c.Store.Backend)
	}

	switch c.Artifacts.Backend {
	case ArtifactsLocal:
	case ArtifactsS3:
		if c.Artifacts.S3Bucket == "" {
			return fmt.Errorf("ARTIFACTS_S3_BUCKET is required when ARTIFACTS_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown ARTIFACTS_BACKEND %q (want local or s3)", c.Artifacts.Backend)
	}

	if c.Model.TestSize < 0 || c.Model.TestSize >= 1 {
		return fmt.Errorf("MODEL_TEST_SIZE must be in [0, 1), got %v", c.Model.TestSize)
	}

	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED=true")
	}

	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid bool value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
