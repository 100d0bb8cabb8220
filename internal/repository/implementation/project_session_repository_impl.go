package implementation

import (
	"context"
	"errors"
	"time"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/mapper"
	"ai-sitebuilder-be/internal/model"
	"ai-sitebuilder-be/internal/repository/contract"
	"ai-sitebuilder-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProjectSessionMapper
}

func NewProjectSessionRepository(db *gorm.DB) contract.ProjectSessionRepository {
	return &ProjectSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewProjectSessionMapper(),
	}
}

func (r *ProjectSessionRepositoryImpl) FindByOwner(ctx context.Context, ownerId int64) (*entity.ProjectSession, error) {
	var m model.ProjectSession
	query := specification.Filter("chat_id", ownerId).Apply(r.db.WithContext(ctx))
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *ProjectSessionRepositoryImpl) Save(ctx context.Context, session *entity.ProjectSession) error {
	session.UpdatedAt = time.Now()
	m, err := r.mapper.ToModel(session)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"session", "updated_at"}),
		}).
		Create(m).Error
}
