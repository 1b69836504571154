package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "DATABASE_URL", "CORS_ALLOW_ORIGINS", "LOG_LEVEL", "MAX_UPLOAD_BYTES", "EXTRACT_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "AUTH_REQUIRE_IDENTITY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadFrom()

	require.Equal(t, "4001", cfg.Port)
	require.Equal(t, "dev", cfg.Env)
	require.Empty(t, cfg.DatabaseURL)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowOrigin)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	require.Equal(t, 30*time.Second, cfg.ExtractTimeout)
	require.Equal(t, 10.0, cfg.RateLimitRPS)
	require.Equal(t, 20, cfg.RateLimitBurst)
	require.False(t, cfg.AuthRequireIdentity)
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "PORT=9000\nENV=prod\nEXTRACT_TIMEOUT=5s\nCORS_ALLOW_ORIGINS=\"https://a.example, https://b.example\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	for _, key := range []string{"ENV", "EXTRACT_TIMEOUT", "CORS_ALLOW_ORIGINS"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "9100")
	t.Setenv("AUTH_REQUIRE_IDENTITY", "true")
	t.Setenv("DATABASE_URL", "postgres://localhost/tokens")

	cfg := LoadFrom(path, filepath.Join(dir, "missing.env"))

	require.Equal(t, "9100", cfg.Port)
	require.Equal(t, "production", cfg.Env)
	require.Equal(t, 5*time.Second, cfg.ExtractTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
	require.True(t, cfg.AuthRequireIdentity)
	require.Equal(t, "postgres://localhost/tokens", cfg.DatabaseURL)
}
