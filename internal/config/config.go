package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Tutor    TutorConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider string // "openai", "ollama" or "huggingface"
	LLMModel    string // e.g. "gpt-4.1", "llama3.1"
	BaseURL     string
	APIKey      string
	Temperature *float64 // nil when LLM_TEMPERATURE is unset
	MaxTokens   int
	MaxSteps    int
}

type TutorConfig struct {
	ForbiddenPhrases []string
	ErrorMessage     string

	ExactPhraseScore int
	KeywordScore     int
	SubjectScore     int
	MinKeywordLength int
	HighThreshold    int
	MediumThreshold  int

	ContentCacheTTL   time.Duration
	SelectionCacheTTL time.Duration
}

var defaultForbiddenPhrases = "plan de dissertation,plan détaillé,titres de plan,structure complète,I. II. III.,A. B. C.,1. 2. 3."

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider: getEnv("LLM_PROVIDER", "openai"),
			LLMModel:    getEnv("LLM_MODEL", "gpt-4.1"),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			APIKey:      getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			Temperature: getEnvAsFloatPtr("LLM_TEMPERATURE"),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 0),
			MaxSteps:    getEnvAsInt("TUTOR_MAX_STEPS", 5),
		},
		Tutor: TutorConfig{
			ForbiddenPhrases: getEnvAsList("TUTOR_FORBIDDEN_PHRASES", defaultForbiddenPhrases),
			ErrorMessage:     getEnv("TUTOR_ERROR_MESSAGE", "Une erreur est survenue lors de la génération de la réponse."),

			ExactPhraseScore: getEnvAsInt("RESOLVER_EXACT_PHRASE_SCORE", 10),
			KeywordScore:     getEnvAsInt("RESOLVER_KEYWORD_SCORE", 1),
			SubjectScore:     getEnvAsInt("RESOLVER_SUBJECT_SCORE", 3),
			MinKeywordLength: getEnvAsInt("RESOLVER_MIN_KEYWORD_LENGTH", 2),
			HighThreshold:    getEnvAsInt("RESOLVER_HIGH_THRESHOLD", 5),
			MediumThreshold:  getEnvAsInt("RESOLVER_MEDIUM_THRESHOLD", 2),

			ContentCacheTTL:   getEnvAsDuration("CONTENT_CACHE_TTL", 10*time.Minute),
			SelectionCacheTTL: getEnvAsDuration("SELECTION_CACHE_TTL", 30*time.Minute),
		},
	}
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Validate rejects settings the server cannot safely start with.
func (c *Config) Validate() error {
	if c.App.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
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

// getEnvAsFloatPtr keeps an explicit zero apart from an unset variable.
func getEnvAsFloatPtr(key string) *float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return &value
	}
	return nil
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
