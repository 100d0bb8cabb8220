package implementation

import (
	"context"
	"errors"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/mapper"
	"ai-sitebuilder-be/internal/model"
	"ai-sitebuilder-be/internal/repository/contract"
	"ai-sitebuilder-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HtmlBlockRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HtmlBlockMapper
}

func NewHtmlBlockRepository(db *gorm.DB) contract.HtmlBlockRepository {
	return &HtmlBlockRepositoryImpl{
		db:     db,
		mapper: mapper.NewHtmlBlockMapper(),
	}
}

func (r *HtmlBlockRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *HtmlBlockRepositoryImpl) Upsert(ctx context.Context, block *entity.HtmlBlock) error {
	if err := r.checkDimension(ctx, block); err != nil {
		return err
	}

	m := r.mapper.ToModel(block)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}, {Name: "owner_id"}, {Name: "project_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "embedding", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*block = *r.mapper.ToEntity(m)
	return nil
}

// checkDimension compares the new vector with any other row of the scope.
func (r *HtmlBlockRepositoryImpl) checkDimension(ctx context.Context, block *entity.HtmlBlock) error {
	var dims []int
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.HtmlBlock{}),
		specification.ByScope{Scope: block.Scope},
	)
	err := query.
		Where("id <> ?", block.Id).
		Limit(1).
		Pluck("vector_dims(embedding)", &dims).Error
	if err != nil {
		return err
	}
	if len(dims) > 0 && dims[0] != len(block.Embedding) {
		return contract.ErrDimensionMismatch
	}
	return nil
}

func (r *HtmlBlockRepositoryImpl) FindOne(ctx context.Context, scope entity.Scope, id string) (*entity.HtmlBlock, error) {
	var m model.HtmlBlock
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByScope{Scope: scope},
		specification.ByBlockID{ID: id},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *HtmlBlockRepositoryImpl) FindAllByScope(ctx context.Context, scope entity.Scope) ([]*entity.HtmlBlock, error) {
	var models []*model.HtmlBlock
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByScope{Scope: scope},
		specification.OrderBy{Field: "id"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *HtmlBlockRepositoryImpl) SearchNearest(ctx context.Context, scope entity.Scope, embedding []float32, limit int) ([]*contract.ScoredHtmlBlock, error) {
	if limit <= 0 {
		limit = 3
	}

	type result struct {
		model.HtmlBlock
		Distance float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	// pgvector L2 distance: embedding <-> query
	err := r.applySpecifications(r.db.WithContext(ctx).Table("html_blocks"), specification.ByScope{Scope: scope}).
		Select("html_blocks.*, embedding <-> ? AS distance", queryVector).
		Order("distance ASC").
		Order("id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredHtmlBlock, len(results))
	for i := range results {
		scored[i] = &contract.ScoredHtmlBlock{
			Block:    r.mapper.ToEntity(&results[i].HtmlBlock),
			Distance: results[i].Distance,
		}
	}
	return scored, nil
}

func (r *HtmlBlockRepositoryImpl) Count(ctx context.Context, scope entity.Scope) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByScope{Scope: scope})
	err := query.Model(&model.HtmlBlock{}).Count(&count).Error
	return count, err
}

func (r *HtmlBlockRepositoryImpl) DeleteByScopeExcept(ctx context.Context, scope entity.Scope, keep []string) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByScope{Scope: scope},
		specification.ExcludingBlockIDs{IDs: keep},
	)
	res := query.Delete(&model.HtmlBlock{})
	return res.RowsAffected, res.Error
}
