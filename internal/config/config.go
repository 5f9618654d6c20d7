package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Worker    WorkerConfig
	Sources   SourceConfig
	Messaging MessagingConfig
	Mail      MailConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LogLevel           string
	CorsAllowedOrigins string
	// InstanceId identifies this replica as a claim and lease owner.
	InstanceId string
}

type DatabaseConfig struct {
	Connection string
	// StorageDriver is "postgres" or "memory".
	StorageDriver string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	OpenAI       string
}

type AIConfig struct {
	EmbeddingProvider   string // "gemini", "ollama", "jina", "openai" or "hash"
	EmbeddingDimensions int
	OllamaBaseURL       string
	OllamaModel         string
	OpenAIBaseURL       string
	RequestsPerSecond   float64
	Burst               int
}

type WorkerConfig struct {
	Enabled           bool
	PollInterval      time.Duration
	BatchSize         int
	MaxConcurrency    int
	LeaseTTL          time.Duration
	MatchTopK         int
	EnrichConcurrency int
}

type SourceConfig struct {
	JobServiceURL     string
	ProfileServiceURL string
	ServiceToken      string
	Timeout           time.Duration
	CacheTTL          time.Duration
}

type MessagingConfig struct {
	NatsURL     string
	NatsEnabled bool
	StreamAge   time.Duration
	RedisURL    string
	// LeaderLockKey is the Redis key of the worker leader lease. Empty disables
	// leader election.
	LeaderLockKey string
	NudgeTopic    string
	// StatusChannel relays status stream messages between replicas over Redis.
	StatusChannel string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	// AlertRecipients receive a mail when a document exhausts its retries.
	// Empty disables alerting.
	AlertRecipients []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "jobmatch"
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LogLevel:           getEnv("LOG_LEVEL", "debug"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			InstanceId:         getEnv("INSTANCE_ID", hostname),
		},
		Database: DatabaseConfig{
			Connection:    getEnv("DB_CONNECTION_STRING", ""),
			StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:         getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
			RequestsPerSecond:   getEnvAsFloat("EMBEDDING_REQUESTS_PER_SECOND", 5),
			Burst:               getEnvAsInt("EMBEDDING_BURST", 5),
		},
		Worker: WorkerConfig{
			Enabled:           getEnvAsBool("INDEXING_WORKER_ENABLED", true),
			PollInterval:      getEnvAsDuration("INDEXING_POLL_INTERVAL", 10*time.Second),
			BatchSize:         getEnvAsInt("INDEXING_BATCH_SIZE", 20),
			MaxConcurrency:    getEnvAsInt("INDEXING_MAX_CONCURRENCY", 5),
			LeaseTTL:          getEnvAsDuration("INDEXING_LEASE_TTL", 5*time.Minute),
			MatchTopK:         getEnvAsInt("MATCH_TOP_K", 100),
			EnrichConcurrency: getEnvAsInt("MATCH_ENRICH_CONCURRENCY", 10),
		},
		Sources: SourceConfig{
			JobServiceURL:     getEnv("JOB_SERVICE_URL", "http://localhost:3001"),
			ProfileServiceURL: getEnv("PROFILE_SERVICE_URL", "http://localhost:3002"),
			ServiceToken:      getEnv("SOURCE_SERVICE_TOKEN", ""),
			Timeout:           getEnvAsDuration("SOURCE_TIMEOUT", 10*time.Second),
			CacheTTL:          getEnvAsDuration("SOURCE_CACHE_TTL", time.Minute),
		},
		Messaging: MessagingConfig{
			NatsURL:       getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:   getEnvAsBool("NATS_ENABLED", true),
			StreamAge:     getEnvAsDuration("NATS_STREAM_MAX_AGE", 7*24*time.Hour),
			RedisURL:      getEnv("REDIS_URL", ""),
			LeaderLockKey: getEnv("INDEXING_LEADER_LOCK_KEY", "jobmatch:indexing-worker:leader"),
			NudgeTopic:    getEnv("INDEXING_NUDGE_TOPIC", "INDEXING_REQUESTED"),
			StatusChannel: getEnv("STATUS_STREAM_CHANNEL", "matching_status_events"),
		},
		Mail: MailConfig{
			Host:            getEnv("SMTP_HOST", ""),
			Port:            getEnvAsInt("SMTP_PORT", 587),
			Username:        getEnv("SMTP_USERNAME", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			Sender:          getEnv("SMTP_SENDER", "no-reply@jobmatch.local"),
			AlertRecipients: getEnvAsList("INDEXING_ALERT_RECIPIENTS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsDuration accepts Go duration strings ("30s") or plain seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
