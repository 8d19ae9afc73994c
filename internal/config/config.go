package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderRules  = "rules"
	ProviderLLM    = "llm"
	ProviderNLU    = "nlu"
	ProviderGemini = "gemini"

	SessionBackendRedis = "redis"
	SessionBackendJWT   = "jwt"

	defaultJWTSecret = "mindmate-dev-secret-change-me"
)

type Config struct {
	Environment    string // ENV: production, development, etc.
	Port           string
	Host           string
	AllowedOrigins []string
	LogLevel       string

	DBDriver    string // postgres or sqlite
	DatabaseURL string
	RedisURI    string // optional
	MongoURI    string // optional; exercise log is disabled when empty

	SessionBackend string
	JWTSecret      string
	SessionCookie  string
	SessionTTL     time.Duration
	LoginRedirect  string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	Chat ChatConfig
}

// ChatConfig selects and configures the reply provider behind /api/chat.
type ChatConfig struct {
	Provider            string
	ConfidenceThreshold float64
	ConnectTimeout      time.Duration
	Timeout             time.Duration
	Seed                uint64

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	NLUAPIKey  string
	NLUURL     string
	NLUVersion string

	GeminiAPIKey string
	GeminiModel  string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	driver := strings.ToLower(getEnv("DB_DRIVER", "postgres"))

	redisURI := getEnv("REDIS_URI", getEnv("REDIS_URL", ""))
	sessionBackend := getEnv("SESSION_BACKEND", "")
	if sessionBackend == "" {
		sessionBackend = SessionBackendJWT
		if redisURI != "" {
			sessionBackend = SessionBackendRedis
		}
	}

	return &Config{
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		Host:           getEnv("HOST", ""),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		DBDriver:    driver,
		DatabaseURL: databaseURL(driver),
		RedisURI:    redisURI,
		MongoURI:    getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),

		SessionBackend: strings.ToLower(sessionBackend),
		JWTSecret:      getEnv("JWT_SECRET", defaultJWTSecret),
		SessionCookie:  getEnv("SESSION_COOKIE_NAME", "mindmate_session"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		LoginRedirect:  getEnv("LOGIN_REDIRECT", "/pages/chat.php"),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		Chat: ChatConfig{
			Provider:            strings.ToLower(getEnv("CHAT_PROVIDER", ProviderRules)),
			ConfidenceThreshold: getEnvFloat("CHAT_CONFIDENCE_THRESHOLD", 0.7),
			ConnectTimeout:      getEnvDuration("CHAT_CONNECT_TIMEOUT", 10*time.Second),
			Timeout:             getEnvDuration("CHAT_TIMEOUT", 30*time.Second),
			Seed:                uint64(getEnvInt("CHAT_SEED", 0)),

			LLMAPIKey:  getEnv("LLM_API_KEY", getEnv("GROQ_API_KEY", "")),
			LLMBaseURL: strings.TrimRight(getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"), "/"),
			LLMModel:   getEnv("LLM_MODEL", "llama3-8b-8192"),

			NLUAPIKey:  getEnv("NLU_API_KEY", getEnv("WIT_AI_TOKEN", "")),
			NLUURL:     getEnv("NLU_URL", "https://api.wit.ai/message"),
			NLUVersion: getEnv("NLU_API_VERSION", "20240304"),

			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
	}
}

// databaseURL resolves the SQL DSN. Hosting platforms disagree on variable
// names, so the first non-empty source wins: DATABASE_URL, POSTGRES_URI,
// the DB_* set, then the libpq PG* set.
func databaseURL(driver string) string {
	if v := getEnv("DATABASE_URL", ""); v != "" {
		return v
	}
	if driver == "sqlite" {
		return getEnv("SQLITE_PATH", "mindmate.db")
	}
	if v := getEnv("POSTGRES_URI", ""); v != "" {
		return v
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		return postgresDSN(host, getEnv("DB_PORT", "5432"), getEnv("DB_USER", "postgres"), getEnv("DB_PASS", ""), getEnv("DB_NAME", "mindmate"))
	}
	if host := getEnv("PGHOST", ""); host != "" {
		return postgresDSN(host, getEnv("PGPORT", "5432"), getEnv("PGUSER", "postgres"), getEnv("PGPASSWORD", ""), getEnv("PGDATABASE", "mindmate"))
	}
	return "postgres://localhost:5432/mindmate?sslmode=disable"
}

func postgresDSN(host, port, user, password, name string) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// Validate reports configuration that would make the server misbehave at
// request time rather than at startup.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	switch c.SessionBackend {
	case SessionBackendJWT:
		if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		}
	case SessionBackendRedis:
		if c.RedisURI == "" {
			errs = append(errs, errors.New("SESSION_BACKEND=redis requires REDIS_URI"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND %q is not supported", c.SessionBackend))
	}
	if t := c.Chat.ConfidenceThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("CHAT_CONFIDENCE_THRESHOLD must be within [0,1], got %v", t))
	}
	switch c.Chat.Provider {
	case ProviderRules:
	case ProviderLLM:
		if c.Chat.LLMAPIKey == "" {
			errs = append(errs, errors.New("CHAT_PROVIDER=llm requires LLM_API_KEY or GROQ_API_KEY"))
		}
	case ProviderNLU:
		if c.Chat.NLUAPIKey == "" {
			errs = append(errs, errors.New("CHAT_PROVIDER=nlu requires NLU_API_KEY or WIT_AI_TOKEN"))
		}
	case ProviderGemini:
		if c.Chat.GeminiAPIKey == "" {
			errs = append(errs, errors.New("CHAT_PROVIDER=gemini requires GEMINI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("CHAT_PROVIDER %q is not supported", c.Chat.Provider))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// CloudinaryConfigured reports whether journal attachments can be uploaded.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
