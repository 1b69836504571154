package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port                string
	Env                 string
	DatabaseURL         string
	CORSAllowOrigin     []string
	LogLevel            string
	MaxUploadBytes      int64
	ExtractTimeout      time.Duration
	RateLimitRPS        float64
	RateLimitBurst      int
	AuthRequireIdentity bool
}

// Load reads configuration from .env files (if present) and the environment.
// Environment variables win over file values.
func Load() Config {
	return LoadFrom(".env", "cmd/.env")
}

// LoadFrom is Load with explicit env file paths.
func LoadFrom(envFiles ...string) Config {
	v := viper.New()
	setDefaults(v)
	mergeEnvFiles(v, envFiles...)
	v.AutomaticEnv()

	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:                v.GetString("PORT"),
		Env:                 env,
		DatabaseURL:         dbURL,
		CORSAllowOrigin:     splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		LogLevel:            strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		MaxUploadBytes:      positiveInt64(v.GetInt64("MAX_UPLOAD_BYTES"), 10<<20),
		ExtractTimeout:      positiveDuration(v.GetDuration("EXTRACT_TIMEOUT"), 30*time.Second),
		RateLimitRPS:        v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:      v.GetInt("RATE_LIMIT_BURST"),
		AuthRequireIdentity: v.GetBool("AUTH_REQUIRE_IDENTITY"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "4001")
	v.SetDefault("ENV", "dev")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("EXTRACT_TIMEOUT", "30s")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("AUTH_REQUIRE_IDENTITY", false)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func positiveInt64(v, def int64) int64 {
	if v > 0 {
		return v
	}
	return def
}

func positiveDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
