package factory

import (
	"fmt"

	"ai-sitebuilder-be/internal/config"
	"ai-sitebuilder-be/pkg/embedding"
	"ai-sitebuilder-be/pkg/embedding/jina"
)

// NewEmbeddingProvider picks the provider named by EMBEDDING_PROVIDER.
func NewEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "openai", "":
		return embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.OpenAIBaseURL, cfg.Ai.EmbeddingModel), nil
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	case "gemini":
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini), nil
	case "jina":
		return jina.NewJinaProvider(cfg.Keys.Jina), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}
