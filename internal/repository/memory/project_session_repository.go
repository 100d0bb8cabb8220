package memory

import (
	"context"
	"sync"
	"time"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/repository/contract"
)

type ProjectSessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]entity.ProjectSession
}

var _ contract.ProjectSessionRepository = (*ProjectSessionRepository)(nil)

func NewProjectSessionRepository() *ProjectSessionRepository {
	return &ProjectSessionRepository{
		sessions: make(map[int64]entity.ProjectSession),
	}
}

func (r *ProjectSessionRepository) FindByOwner(_ context.Context, ownerId int64) (*entity.ProjectSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[ownerId]
	if !ok {
		return nil, nil
	}
	s.Projects = append([]entity.ProjectState(nil), s.Projects...)
	return &s, nil
}

func (r *ProjectSessionRepository) Save(_ context.Context, session *entity.ProjectSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.UpdatedAt = time.Now()
	s := *session
	s.Projects = append([]entity.ProjectState(nil), session.Projects...)
	r.sessions[session.OwnerId] = s
	return nil
}
