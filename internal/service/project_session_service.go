package service

import (
	"context"
	"fmt"
	"time"

	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/repository/memory"
	"ai-sitebuilder-be/internal/repository/unitofwork"
)

type IProjectSessionService interface {
	Load(ctx context.Context, ownerId int64) (*entity.ProjectSession, error)
	SaveProject(ctx context.Context, ownerId int64, project entity.ProjectState) (*entity.ProjectSession, error)
	// UpdateProject applies fn to an existing project of the owner and saves the session.
	UpdateProject(ctx context.Context, ownerId int64, projectId string, fn func(*entity.ProjectState)) error
	ListProjects(ctx context.Context, ownerId int64) ([]*dto.ProjectResponse, error)
}

type projectSessionService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.SessionRepository
}

func NewProjectSessionService(uowFactory unitofwork.RepositoryFactory, cache *memory.SessionRepository) IProjectSessionService {
	return &projectSessionService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

// Load returns the owner's session, creating an empty one in memory when none is stored.
func (s *projectSessionService) Load(ctx context.Context, ownerId int64) (*entity.ProjectSession, error) {
	if session, ok := s.cache.Get(ownerId); ok {
		return session, nil
	}

	session, err := s.uowFactory.NewUnitOfWork(ctx).ProjectSessionRepository().FindByOwner(ctx, ownerId)
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", ownerId, err)
	}
	if session == nil {
		return &entity.ProjectSession{OwnerId: ownerId, Projects: []entity.ProjectState{}}, nil
	}

	s.cache.Save(session)
	return session, nil
}

func (s *projectSessionService) SaveProject(ctx context.Context, ownerId int64, project entity.ProjectState) (*entity.ProjectSession, error) {
	session, err := s.Load(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	session.Upsert(project)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *projectSessionService) UpdateProject(ctx context.Context, ownerId int64, projectId string, fn func(*entity.ProjectState)) error {
	session, err := s.Load(ctx, ownerId)
	if err != nil {
		return err
	}

	project := session.Find(projectId)
	if project == nil {
		project = &entity.ProjectState{ProjectId: projectId}
	}
	updated := *project
	fn(&updated)
	session.Upsert(updated)

	return s.save(ctx, session)
}

func (s *projectSessionService) save(ctx context.Context, session *entity.ProjectSession) error {
	session.UpdatedAt = time.Now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ProjectSessionRepository().Save(ctx, session); err != nil {
		return fmt.Errorf("save session %d: %w", session.OwnerId, err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.cache.Save(session)
	return nil
}

func (s *projectSessionService) ListProjects(ctx context.Context, ownerId int64) ([]*dto.ProjectResponse, error) {
	session, err := s.Load(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	current := session.Current()
	result := make([]*dto.ProjectResponse, 0, len(session.Projects))
	for _, p := range session.Projects {
		result = append(result, &dto.ProjectResponse{
			ProjectId:       p.ProjectId,
			Sections:        p.Sections,
			Patterns:        p.Patterns,
			GeneratedFolder: p.GeneratedFolder,
			Repo:            p.Repo,
			SiteURL:         p.SiteURL,
			Domain:          p.Domain,
			Current:         current != nil && current.ProjectId == p.ProjectId,
		})
	}
	return result, nil
}
