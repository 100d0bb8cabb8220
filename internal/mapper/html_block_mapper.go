package mapper

import (
	"time"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type HtmlBlockMapper struct{}

func NewHtmlBlockMapper() *HtmlBlockMapper {
	return &HtmlBlockMapper{}
}

func (m *HtmlBlockMapper) ToEntity(e *model.HtmlBlock) *entity.HtmlBlock {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.HtmlBlock{
		Id: e.Id,
		Scope: entity.Scope{
			OwnerId:   e.OwnerId,
			ProjectId: e.ProjectId,
		},
		Tag:       e.Tag,
		Content:   e.Content,
		Embedding: e.Embedding.Slice(),
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *HtmlBlockMapper) ToModel(e *entity.HtmlBlock) *model.HtmlBlock {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.HtmlBlock{
		Id:        e.Id,
		OwnerId:   e.Scope.OwnerId,
		ProjectId: e.Scope.ProjectId,
		Tag:       e.Tag,
		Content:   e.Content,
		Embedding: pgvector.NewVector(e.Embedding),
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *HtmlBlockMapper) ToEntities(blocks []*model.HtmlBlock) []*entity.HtmlBlock {
	entities := make([]*entity.HtmlBlock, len(blocks))
	for i, b := range blocks {
		entities[i] = m.ToEntity(b)
	}
	return entities
}
