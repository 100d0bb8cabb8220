package contract

import (
	"context"

	"ai-sitebuilder-be/internal/entity"
)

type ProjectSessionRepository interface {
	// FindByOwner returns nil, nil when the owner has no session yet.
	FindByOwner(ctx context.Context, ownerId int64) (*entity.ProjectSession, error)
	Save(ctx context.Context, session *entity.ProjectSession) error
}
