package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Safety   SafetyConfig
	Memory   MemoryConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	NatsEnabled        bool
	RedisURL           string
	ChatLogTopic       string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	HuggingFace  string
}

type AIConfig struct {
	EmbeddingProvider string        // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string        // "openai", "gemini" or "ollama"
	LLMModel          string        // e.g. "gpt-4o-mini"
	LLMTimeout        time.Duration
	EmbeddingTimeout  time.Duration
}

type SafetyConfig struct {
	BaseURL   string
	Model     string
	Threshold float64
}

// MemoryConfig controls the conversation memory backend. Backend "cache"
// keeps turns in-process; "redis" shares them across instances. Idle
// conversations are evicted after TTL.
type MemoryConfig struct {
	Backend       string
	TTL           time.Duration
	SweepInterval time.Duration
}

type SearchConfig struct {
	TopK      int
	Threshold float64
	Timeout   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ChatLogTopic:       getEnv("CHAT_LOG_TOPIC_NAME", "CHAT_LOG"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			EmbeddingTimeout:  getEnvAsDuration("EMBEDDING_TIMEOUT", 15*time.Second),
		},
		Safety: SafetyConfig{
			BaseURL:   getEnv("SAFETY_BASE_URL", "https://api-inference.huggingface.co"),
			Model:     getEnv("SAFETY_MODEL", "smilegate-ai/kor_unsmile"),
			Threshold: getEnvAsFloat("SAFETY_THRESHOLD", 0.5),
		},
		Memory: MemoryConfig{
			Backend:       getEnv("MEMORY_BACKEND", "cache"),
			TTL:           getEnvAsDuration("MEMORY_TTL", 5*time.Minute),
			SweepInterval: getEnvAsDuration("MEMORY_SWEEP_INTERVAL", time.Minute),
		},
		Search: SearchConfig{
			TopK:      getEnvAsInt("SEARCH_TOP_K", 5),
			Threshold: getEnvAsFloat("SEARCH_THRESHOLD", 0.3),
			Timeout:   getEnvAsDuration("SEARCH_TIMEOUT", 15*time.Second),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
