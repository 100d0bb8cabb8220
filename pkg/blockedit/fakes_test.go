package blockedit

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/pkg/embedding"
	"ai-sitebuilder-be/pkg/llm"
)

const pageFixture = `<!DOCTYPE html><html><head><title>Bakery</title><style>:root{--brand:#123456}</style></head>` +
	`<body><header id="header"><h1 id="header-text-1">Fresh bread</h1></header>` +
	`<section id="hero"><p id="hero-text-1">Baked daily</p><img id="hero-img-1" src="loaf.png"/></section>` +
	`<footer id="footer"><a id="footer-link-1" href="/contact">Contact</a></footer></body></html>`

var testScope = entity.Scope{OwnerId: 1, ProjectId: "bakery"}

var errProviderDown = errors.New("provider down")

// keywordEmbedding places text on one axis per keyword it mentions.
type keywordEmbedding struct {
	mu    sync.Mutex
	calls int
	fail  error
}

var embeddingAxes = []string{"header", "hero", "footer", ":root"}

func (k *keywordEmbedding) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	k.mu.Lock()
	k.calls++
	k.mu.Unlock()
	if k.fail != nil {
		return nil, k.fail
	}
	v := make([]float32, len(embeddingAxes))
	for i, kw := range embeddingAxes {
		if strings.Contains(text, kw) {
			v[i] = 1
		}
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: v}}, nil
}

func (k *keywordEmbedding) Calls() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.calls
}

type scriptedLLM struct {
	reply   string
	err     error
	history []llm.Message
	options *llm.Options
}

func (s *scriptedLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.history = history
	s.options = llm.Apply(llm.Options{}, opts...)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func nopLogger() logger.ILogger {
	return logger.NewNopLogger()
}
