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
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Site     SiteConfig
	Publish  PublishConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	OpenAI       string
	GoogleGemini string
	Jina         string
	GitHubToken  string
	JwtSecret    string
}

type AIConfig struct {
	EmbeddingProvider string // "openai", "ollama", "gemini" or "jina"
	EmbeddingModel    string
	OllamaBaseURL     string
	OllamaModel       string
	OpenAIBaseURL     string
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
}

type SiteConfig struct {
	GeneratedDir   string
	VectorStore    string // "postgres" or "memory"
	LeaseBackend   string // "local" or "redis"
	LeaseTTL       time.Duration
	EditTimeout    time.Duration
	PreviewEnabled bool
	AssembledTopic string
}

type PublishConfig struct {
	GitHubOrg      string
	PagesBranch    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
	GoDaddyKey     string
	GoDaddySecret  string
	GoDaddyBaseURL string
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
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "HelloSite"),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			GitHubToken:  getEnv("GITHUB_TOKEN", ""),
			JwtSecret:    getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4.1-mini"),
		},
		Site: SiteConfig{
			GeneratedDir:   getEnv("SITE_GENERATED_DIR", "generated"),
			VectorStore:    getEnv("SITE_VECTOR_STORE", "postgres"),
			LeaseBackend:   getEnv("SITE_LEASE_BACKEND", "local"),
			LeaseTTL:       time.Duration(getEnvAsInt("SITE_LEASE_TTL", 180)) * time.Second,
			EditTimeout:    time.Duration(getEnvAsInt("SITE_EDIT_TIMEOUT", 120)) * time.Second,
			PreviewEnabled: getEnvAsBool("PREVIEW_ENABLED", false),
			AssembledTopic: getEnv("SITE_ASSEMBLED_TOPIC_NAME", "SITE_ASSEMBLED"),
		},
		Publish: PublishConfig{
			GitHubOrg:      getEnv("GITHUB_ORG", "hellositeai"),
			PagesBranch:    getEnv("GITHUB_PAGES_BRANCH", "main"),
			MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
			MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
			MinioBucket:    getEnv("MINIO_BUCKET", "sites"),
			MinioUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			MinioPublicURL: getEnv("MINIO_PUBLIC_URL", ""),
			GoDaddyKey:     getEnv("GODADDY_API_KEY", ""),
			GoDaddySecret:  getEnv("GODADDY_API_SECRET", ""),
			GoDaddyBaseURL: getEnv("GODADDY_BASE_URL", "https://api.godaddy.com"),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
