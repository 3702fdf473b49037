package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Agent    AgentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
	EmbedTopic   string // watermill topic for document embedding jobs
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "gemini", "huggingface"
	LLMModel          string // e.g. "llama3.1:8b", "gemini-1.5-flash"
}

// AgentConfig tunes the conversational agent and retrieval behavior.
type AgentConfig struct {
	MaxIterations       int
	MaxHistoryMessages  int // <= 0 keeps full history
	SessionTTLHours     int
	ConsultationTopK    int
	LawArticleTopK      int
	SimilarityThreshold float64
	MaxChunkChars       int
	ChunkOverlap        int // > 0 switches ingestion to overlapping windows
	ValidationEnabled   bool
	ValidationMinScore  float64
	SystemInstruction   string // empty falls back to the built-in default
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			EmbedTopic:   getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3.1:8b"),
		},
		Agent: AgentConfig{
			MaxIterations:       getEnvAsInt("AGENT_MAX_ITERATIONS", 5),
			MaxHistoryMessages:  getEnvAsInt("AGENT_MAX_HISTORY_MESSAGES", 20),
			SessionTTLHours:     getEnvAsInt("AGENT_SESSION_TTL_HOURS", 24),
			ConsultationTopK:    getEnvAsInt("SEARCH_CONSULTATION_TOP_K", 10),
			LawArticleTopK:      getEnvAsInt("SEARCH_LAW_ARTICLE_TOP_K", 10),
			SimilarityThreshold: getEnvAsFloat("SEARCH_SIMILARITY_THRESHOLD", 0.6),
			MaxChunkChars:       getEnvAsInt("EMBED_MAX_CHUNK_CHARS", 6000),
			ChunkOverlap:        getEnvAsInt("EMBED_CHUNK_OVERLAP", 0),
			ValidationEnabled:   getEnvAsBool("AGENT_VALIDATION_ENABLED", true),
			ValidationMinScore:  getEnvAsFloat("AGENT_VALIDATION_MIN_SCORE", 0.7),
			SystemInstruction:   getEnv("AGENT_SYSTEM_INSTRUCTION", ""),
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
