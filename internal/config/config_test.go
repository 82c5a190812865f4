package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "USE_MEMORY_STORE", "STORE_TIMEOUT", "IMPORT_SESSION_TTL",
		"IMPORT_MAX_BYTES", "BULK_CHUNK_SIZE", "MAIL_PORT", "PROJECTION_REPAIR_INTERVAL",
		"CORS_ALLOWED_ORIGINS", "PUBLIC_BASE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.UseMemoryStore)
	assert.Equal(t, 15*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 30*time.Minute, cfg.ImportSessionTTL)
	assert.Equal(t, int64(10<<20), cfg.ImportMaxBytes)
	assert.Equal(t, 450, cfg.BulkChunkSize)
	assert.Equal(t, 587, cfg.MailPort)
	assert.Zero(t, cfg.ProjectionRepairInterval)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("USE_MEMORY_STORE", "true")
	t.Setenv("STORE_TIMEOUT", "20s")
	t.Setenv("BULK_CHUNK_SIZE", "100")
	t.Setenv("PUBLIC_BASE_URL", "https://leads.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.UseMemoryStore)
	assert.Equal(t, 20*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 100, cfg.BulkChunkSize)
	assert.Equal(t, "https://leads.example.com", cfg.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("BULK_CHUNK_SIZE", "lots")
	t.Setenv("STORE_TIMEOUT", "soon")
	t.Setenv("USE_MEMORY_STORE", "maybe")

	cfg := Load()

	assert.Equal(t, 450, cfg.BulkChunkSize)
	assert.Equal(t, 15*time.Second, cfg.StoreTimeout)
	assert.False(t, cfg.UseMemoryStore)
}

func TestValidate(t *testing.T) {
	cfg := &Config{JWTSecret: "s", DatabaseURL: "postgres://x", BulkChunkSize: 450}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{UseMemoryStore: true, JWTSecret: "s", BulkChunkSize: 450}
	assert.NoError(t, cfg.Validate())

	err := (&Config{BulkChunkSize: 501}).Validate()
	assert.ErrorContains(t, err, "JWT_SECRET")
	assert.ErrorContains(t, err, "DATABASE_URL")
	assert.ErrorContains(t, err, "BULK_CHUNK_SIZE")
}
