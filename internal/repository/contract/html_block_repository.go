package contract

import (
	"context"
	"errors"

	"ai-sitebuilder-be/internal/entity"
)

// ErrDimensionMismatch is returned when a vector's length differs from the
// vectors already stored for the same scope.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ScoredHtmlBlock wraps a block with its distance to the query vector
type ScoredHtmlBlock struct {
	Block    *entity.HtmlBlock
	Distance float64 // L2 distance, smaller is closer
}

// HtmlBlockRepository is the vector index of editable blocks.
// Every method is confined to one scope; rows of other scopes are never visible.
type HtmlBlockRepository interface {
	// Upsert inserts the block or overwrites content and embedding of the row with the same (id, scope).
	Upsert(ctx context.Context, block *entity.HtmlBlock) error
	FindOne(ctx context.Context, scope entity.Scope, id string) (*entity.HtmlBlock, error)
	// FindAllByScope returns the scope's rows ordered by id ascending.
	FindAllByScope(ctx context.Context, scope entity.Scope) ([]*entity.HtmlBlock, error)
	// SearchNearest returns up to limit rows of the scope, nearest to the vector first.
	SearchNearest(ctx context.Context, scope entity.Scope, embedding []float32, limit int) ([]*ScoredHtmlBlock, error)
	Count(ctx context.Context, scope entity.Scope) (int64, error)
	// DeleteByScopeExcept removes the scope's rows whose id is not in keep.
	DeleteByScopeExcept(ctx context.Context, scope entity.Scope, keep []string) (int64, error)
}
