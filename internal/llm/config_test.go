package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.NotEmpty(t, cfg.GetModel(TierLite))
	assert.NotEmpty(t, cfg.GetModel(TierStandard))
	assert.NotEmpty(t, cfg.EmbeddingModel)
}

func TestConfig_GetModel_FallbackChain(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierLite: "lite-model"},
	}

	// Unknown tier falls back to standard, then lite
	assert.Equal(t, "lite-model", cfg.GetModel(TierAdvanced))
}

func TestConfig_GetModel_Empty(t *testing.T) {
	cfg := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Empty(t, cfg.GetModel(TierStandard))
}

func TestConfig_WithModel(t *testing.T) {
	cfg := DefaultConfig()
	custom := cfg.WithModel(TierStandard, "custom-model")

	assert.Equal(t, "custom-model", custom.GetModel(TierStandard))
	// Original is unchanged
	assert.NotEqual(t, "custom-model", cfg.GetModel(TierStandard))
	// Embedding model is carried over
	assert.Equal(t, cfg.EmbeddingModel, custom.EmbeddingModel)
}
