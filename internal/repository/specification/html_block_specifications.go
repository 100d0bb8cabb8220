package specification

import (
	"ai-sitebuilder-be/internal/entity"

	"gorm.io/gorm"
)

// ByScope confines a query to one (owner, project) pair
type ByScope struct {
	Scope entity.Scope
}

func (s ByScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ? AND project_id = ?", s.Scope.OwnerId, s.Scope.ProjectId)
}

// ByBlockID filters by block id
type ByBlockID struct {
	ID string
}

func (s ByBlockID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ExcludingBlockIDs filters out the given block ids. An empty list matches everything.
type ExcludingBlockIDs struct {
	IDs []string
}

func (s ExcludingBlockIDs) Apply(db *gorm.DB) *gorm.DB {
	if len(s.IDs) == 0 {
		return db
	}
	return db.Where("id NOT IN ?", s.IDs)
}
