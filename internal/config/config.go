// Package config loads agent configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the agent needs to run. All values come from the
// environment; a .env file loaded at startup is the usual source.
type Config struct {
	// GeminiAPIKey authenticates against the Gemini API.
	GeminiAPIKey string

	// Qdrant connection for the knowledge base.
	QdrantHost       string
	QdrantPort       int
	QdrantAPIKey     string
	QdrantUseTLS     bool
	QdrantCollection string

	// Gmail OAuth material for draft staging. Staging is skipped when
	// CredentialsPath is empty.
	GmailCredentialsPath string
	GmailTokenPath       string
	// GmailSender is the address shown on staged drafts.
	GmailSender string

	// OutputDir is where rendered quote documents are written.
	OutputDir string

	// Server settings.
	Port          int
	WebhookSecret string

	// EnableBrowser allows headless-browser fallback when fetching
	// JavaScript-heavy company websites.
	EnableBrowser bool

	// EnablePDF renders a PDF alongside the HTML document.
	EnablePDF bool

	// Verbose prints stage-by-stage details during runs.
	Verbose bool
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		QdrantHost:       getEnvString("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantUseTLS:     getEnvBool("QDRANT_USE_TLS", false),
		QdrantCollection: getEnvString("QDRANT_COLLECTION", "agency_knowledge"),

		GmailCredentialsPath: os.Getenv("GMAIL_CREDENTIALS_PATH"),
		GmailTokenPath:       getEnvString("GMAIL_TOKEN_PATH", "gmail_token.json"),
		GmailSender:          getEnvString("GMAIL_SENDER", "juliette@nana-intelligence.fr"),

		OutputDir: getEnvString("OUTPUT_DIR", "output"),

		Port:          getEnvInt("PORT", 8080),
		WebhookSecret: os.Getenv("TALLY_WEBHOOK_SECRET"),

		EnableBrowser: getEnvBool("ENABLE_BROWSER", false),
		EnablePDF:     getEnvBool("ENABLE_PDF", false),
		Verbose:       getEnvBool("VERBOSE", false),
	}
}

// Validate checks that the configuration can support a pipeline run.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.QdrantHost == "" {
		return fmt.Errorf("QDRANT_HOST must not be empty")
	}
	if c.QdrantPort <= 0 || c.QdrantPort > 65535 {
		return fmt.Errorf("QDRANT_PORT must be a valid port, got %d", c.QdrantPort)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be a valid port, got %d", c.Port)
	}
	if c.GmailCredentialsPath != "" {
		if _, err := os.Stat(c.GmailCredentialsPath); os.IsNotExist(err) {
			return fmt.Errorf("gmail credentials file not found: %s", c.GmailCredentialsPath)
		}
	}
	return nil
}

// StagingEnabled reports whether Gmail draft staging is configured.
func (c *Config) StagingEnabled() bool {
	return c.GmailCredentialsPath != ""
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
