package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv, AppPort, BaseURL string
	DBDSN                    string
	RedisAddr                string
	RedisDB                  int
	SessionCookieName        string
	SessionCookieSecret      string
	CORSOrigins              []string

	QuizTopic     string
	QuizProvider  string
	PrefetchAhead int
	SessionQuota  int

	OpenAIKey, OpenAIModel       string
	AnthropicKey, AnthropicModel string
	GeminiKey, GeminiModel       string

	ProviderRPS    int
	ProviderBurst  int
	ProviderDryRun bool
}

func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppEnv:              get("APP_ENV", "dev"),
		AppPort:             get("APP_PORT", "8080"),
		BaseURL:             get("APP_BASE_URL", "http://localhost:8080"),
		DBDSN:               must("DB_DSN"),
		RedisAddr:           get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisDB:             atoi(get("REDIS_DB", "0")),
		SessionCookieName:   get("SESSION_COOKIE_NAME", "quizforge_sid"),
		SessionCookieSecret: must("SESSION_COOKIE_SECRET"),
		CORSOrigins:         split(get("CORS_ORIGINS", "http://localhost:5173")),
		QuizTopic:           get("QUIZ_TOPIC", "general knowledge"),
		QuizProvider:        get("QUIZ_PROVIDER", ""),
		PrefetchAhead:       atoi(get("PREFETCH_AHEAD", "0")),
		SessionQuota:        atoi(get("SESSION_QUOTA", "100")),
		OpenAIKey:           get("OPENAI_API_KEY", ""),
		OpenAIModel:         get("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicKey:        get("ANTHROPIC_API_KEY", ""),
		AnthropicModel:      get("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),
		GeminiKey:           get("GEMINI_API_KEY", ""),
		GeminiModel:         get("GEMINI_MODEL", "gemini-2.5-pro"),
		ProviderRPS:         atoi(get("PROVIDER_RPS", "2")),
		ProviderBurst:       atoi(get("PROVIDER_BURST", "2")),
		ProviderDryRun:      parseBool(get("PROVIDER_DRY_RUN", "false")),
	}
	return c
}

func get(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}
func atoi(s string) int       { i, _ := strconv.Atoi(s); return i }
func parseBool(s string) bool { b, _ := strconv.ParseBool(s); return b }
func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func GetEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
