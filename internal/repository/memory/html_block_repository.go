package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/repository/contract"
)

type blockKey struct {
	scope entity.Scope
	id    string
}

// HtmlBlockRepository is a brute-force in-process vector index. It backs the CLI's
// local mode and the service tests.
type HtmlBlockRepository struct {
	mu     sync.RWMutex
	blocks map[blockKey]entity.HtmlBlock
}

var _ contract.HtmlBlockRepository = (*HtmlBlockRepository)(nil)

func NewHtmlBlockRepository() *HtmlBlockRepository {
	return &HtmlBlockRepository{
		blocks: make(map[blockKey]entity.HtmlBlock),
	}
}

func (r *HtmlBlockRepository) Upsert(_ context.Context, block *entity.HtmlBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, existing := range r.blocks {
		if k.scope == block.Scope && k.id != block.Id && len(existing.Embedding) != len(block.Embedding) {
			return contract.ErrDimensionMismatch
		}
	}

	now := time.Now()
	key := blockKey{scope: block.Scope, id: block.Id}
	stored := cloneBlock(*block)
	if existing, ok := r.blocks[key]; ok {
		// on conflict only content and embedding move
		existing.Content = stored.Content
		existing.Embedding = stored.Embedding
		existing.UpdatedAt = &now
		stored = existing
	} else {
		stored.CreatedAt = now
		stored.UpdatedAt = &now
	}
	r.blocks[key] = stored

	*block = cloneBlock(stored)
	return nil
}

func (r *HtmlBlockRepository) FindOne(_ context.Context, scope entity.Scope, id string) (*entity.HtmlBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.blocks[blockKey{scope: scope, id: id}]
	if !ok {
		return nil, nil
	}
	out := cloneBlock(b)
	return &out, nil
}

func (r *HtmlBlockRepository) FindAllByScope(_ context.Context, scope entity.Scope) ([]*entity.HtmlBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.HtmlBlock, 0)
	for k, b := range r.blocks {
		if k.scope != scope {
			continue
		}
		c := cloneBlock(b)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (r *HtmlBlockRepository) SearchNearest(_ context.Context, scope entity.Scope, embedding []float32, limit int) ([]*contract.ScoredHtmlBlock, error) {
	if limit <= 0 {
		limit = 3
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	scored := make([]*contract.ScoredHtmlBlock, 0)
	for k, b := range r.blocks {
		if k.scope != scope {
			continue
		}
		if len(b.Embedding) != len(embedding) {
			return nil, contract.ErrDimensionMismatch
		}
		c := cloneBlock(b)
		scored = append(scored, &contract.ScoredHtmlBlock{
			Block:    &c,
			Distance: l2Distance(b.Embedding, embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Distance == scored[j].Distance {
			return scored[i].Block.Id < scored[j].Block.Id
		}
		return scored[i].Distance < scored[j].Distance
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (r *HtmlBlockRepository) Count(_ context.Context, scope entity.Scope) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for k := range r.blocks {
		if k.scope == scope {
			n++
		}
	}
	return n, nil
}

func (r *HtmlBlockRepository) DeleteByScopeExcept(_ context.Context, scope entity.Scope, keep []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}

	var n int64
	for k := range r.blocks {
		if k.scope != scope {
			continue
		}
		if _, ok := kept[k.id]; ok {
			continue
		}
		delete(r.blocks, k)
		n++
	}
	return n, nil
}

func cloneBlock(b entity.HtmlBlock) entity.HtmlBlock {
	if b.Embedding != nil {
		b.Embedding = append([]float32(nil), b.Embedding...)
	}
	if b.UpdatedAt != nil {
		t := *b.UpdatedAt
		b.UpdatedAt = &t
	}
	return b
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
