package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	GigaChat   GigaChatConfig
	Ingest     IngestConfig
	Processing ProcessingConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string
}

// ServerConfig has no write timeout: ingestion responses are streamed for as
// long as the batch takes.
type ServerConfig struct {
	Port        string
	ReadTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

// JWTConfig describes tokens issued by the auth service. Required switches
// the /api/v1 routes behind the auth middleware.
type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	Required   bool
}

// GigaChatConfig enables the LLM spending categorizer when APIKey is set.
type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
	Model              string
	Timeout            time.Duration
}

type IngestConfig struct {
	BatchSize int
	Timeout   time.Duration
}

type ProcessingConfig struct {
	BatchSize  int
	ClaimLease time.Duration
	// Interval of the background processing trigger; zero disables it.
	Interval  time.Duration
	Workers   int
	QueueSize int
}

const (
	defaultIngestBatchSize  = 500
	defaultProcessBatchSize = 100
)

func Load() (*Config, error) {
	// .env is optional; plain environment variables work too (Docker/K8s)
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			ReadTimeout: getSeconds("SERVER_READ_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "money_mate"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    int32(getPositiveInt("DB_MAX_CONNS", 10)),
			AutoMigrate: getBool("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(getPositiveInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
			Required:   getBool("JWT_REQUIRED", false),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: getBool("GIGACHAT_INSECURE_SKIP_VERIFY", true),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			Timeout:            getSeconds("GIGACHAT_TIMEOUT_SECONDS", 15),
		},
		Ingest: IngestConfig{
			BatchSize: getPositiveInt("INGEST_BATCH_SIZE", defaultIngestBatchSize),
			Timeout:   getSeconds("INGEST_TIMEOUT_SECONDS", 120),
		},
		Processing: ProcessingConfig{
			BatchSize:  getPositiveInt("PROCESS_BATCH_SIZE", defaultProcessBatchSize),
			ClaimLease: getSeconds("PROCESS_CLAIM_LEASE_SECONDS", 300),
			Interval:   getSeconds("PROCESS_INTERVAL_SECONDS", 0),
			Workers:    getPositiveInt("PROCESS_WORKERS", 2),
			QueueSize:  getPositiveInt("PROCESS_QUEUE_SIZE", 64),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getPositiveInt falls back to the default for unparsable or non-positive values.
func getPositiveInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getSeconds accepts zero so that intervals can be switched off.
func getSeconds(key string, defaultValue int) time.Duration {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value < 0 {
		value = defaultValue
	}
	return time.Duration(value) * time.Second
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
