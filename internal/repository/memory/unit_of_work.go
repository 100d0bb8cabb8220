package memory

import (
	"context"
	"strconv"

	"ai-sitebuilder-be/internal/repository/contract"
	"ai-sitebuilder-be/internal/repository/unitofwork"
)

// RepositoryFactory hands out units of work over one shared in-memory store.
// Transactions are no-ops.
type RepositoryFactory struct {
	blocks   *HtmlBlockRepository
	sessions *ProjectSessionRepository
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		blocks:   NewHtmlBlockRepository(),
		sessions: NewProjectSessionRepository(),
	}
}

func (f *RepositoryFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{factory: f}
}

type unitOfWork struct {
	factory *RepositoryFactory
}

func (u *unitOfWork) Begin(context.Context) error { return nil }
func (u *unitOfWork) Commit() error               { return nil }
func (u *unitOfWork) Rollback() error             { return nil }

func (u *unitOfWork) HtmlBlockRepository() contract.HtmlBlockRepository {
	return u.factory.blocks
}

func (u *unitOfWork) ProjectSessionRepository() contract.ProjectSessionRepository {
	return u.factory.sessions
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
