package blockedit

import (
	"context"
	"fmt"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/repository/contract"
	"ai-sitebuilder-be/pkg/embedding"

	"golang.org/x/sync/errgroup"
)

const embedConcurrency = 4

type Embedder struct {
	provider embedding.EmbeddingProvider
	repo     contract.HtmlBlockRepository
	logger   logger.ILogger
}

func NewEmbedder(provider embedding.EmbeddingProvider, repo contract.HtmlBlockRepository, logger logger.ILogger) *Embedder {
	return &Embedder{
		provider: provider,
		repo:     repo,
		logger:   logger,
	}
}

// Embed computes the block's vector and upserts it under (block.Id, scope). A provider
// failure leaves the index untouched.
func (e *Embedder) Embed(ctx context.Context, scope entity.Scope, block *entity.HtmlBlock) error {
	res, err := e.provider.Generate(ctx, block.Content, embedding.TaskRetrievalDocument)
	if err != nil {
		return fmt.Errorf("%w: embed block %q: %w", ErrCollaborator, block.Id, err)
	}

	row := *block
	row.Scope = scope
	row.Embedding = res.Embedding.Values
	if err := e.repo.Upsert(ctx, &row); err != nil {
		return fmt.Errorf("%w: upsert block %q: %w", ErrStorage, block.Id, err)
	}

	e.logger.Debug("BLOCKEDIT", "Block embedded", map[string]interface{}{
		"scope":      scope.Key(),
		"block_id":   block.Id,
		"dimensions": len(row.Embedding),
	})
	return nil
}

// EmbedAll embeds independent blocks concurrently. Blocks stored before the first
// failure stay stored.
func (e *Embedder) EmbedAll(ctx context.Context, scope entity.Scope, blocks []*entity.HtmlBlock) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for _, b := range blocks {
		g.Go(func() error {
			return e.Embed(gctx, scope, b)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.logger.Info("BLOCKEDIT", "Blocks embedded", map[string]interface{}{
		"scope": scope.Key(),
		"count": len(blocks),
	})
	return nil
}
