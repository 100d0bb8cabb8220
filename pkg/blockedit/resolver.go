package blockedit

import (
	"context"
	"fmt"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/repository/contract"
	"ai-sitebuilder-be/pkg/embedding"
)

const DefaultResolveLimit = 3

type Resolver struct {
	provider embedding.EmbeddingProvider
	repo     contract.HtmlBlockRepository
}

func NewResolver(provider embedding.EmbeddingProvider, repo contract.HtmlBlockRepository) *Resolver {
	return &Resolver{
		provider: provider,
		repo:     repo,
	}
}

// Resolve ranks the scope's blocks by distance to the instruction, nearest first.
// An empty scope yields an empty slice without calling the provider.
func (r *Resolver) Resolve(ctx context.Context, scope entity.Scope, instruction string, limit int) ([]*contract.ScoredHtmlBlock, error) {
	if limit <= 0 {
		limit = DefaultResolveLimit
	}

	count, err := r.repo.Count(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: count blocks: %w", ErrStorage, err)
	}
	if count == 0 {
		return []*contract.ScoredHtmlBlock{}, nil
	}

	res, err := r.provider.Generate(ctx, instruction, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: embed instruction: %w", ErrCollaborator, err)
	}

	matches, err := r.repo.SearchNearest(ctx, scope, res.Embedding.Values, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search nearest: %w", ErrStorage, err)
	}
	return matches, nil
}
