package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GeminiAPIKey: "test-key",
		QdrantHost:   "localhost",
		QdrantPort:   6334,
		Port:         8080,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg := Load()
	assert.Equal(t, "localhost", cfg.QdrantHost)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.Equal(t, "agency_knowledge", cfg.QdrantCollection)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.False(t, cfg.EnableBrowser)
	assert.False(t, cfg.StagingEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	t.Setenv("QDRANT_PORT", "7000")
	t.Setenv("QDRANT_USE_TLS", "true")
	t.Setenv("PORT", "9000")
	t.Setenv("ENABLE_BROWSER", "true")
	t.Setenv("TALLY_WEBHOOK_SECRET", "signing-secret")

	cfg := Load()
	assert.Equal(t, "qdrant.internal", cfg.QdrantHost)
	assert.Equal(t, 7000, cfg.QdrantPort)
	assert.True(t, cfg.QdrantUseTLS)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.EnableBrowser)
	assert.Equal(t, "signing-secret", cfg.WebhookSecret)
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.GeminiAPIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.QdrantPort = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Port = 99999
	assert.Error(t, cfg.Validate())
}

func TestValidate_MissingCredentialsFile(t *testing.T) {
	cfg := validConfig()
	cfg.GmailCredentialsPath = filepath.Join(t.TempDir(), "missing.json")

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestValidate_ExistingCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	cfg := validConfig()
	cfg.GmailCredentialsPath = path
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.StagingEnabled())
}
