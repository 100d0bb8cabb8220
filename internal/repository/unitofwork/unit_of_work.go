package unitofwork

import (
	"context"

	"ai-sitebuilder-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	HtmlBlockRepository() contract.HtmlBlockRepository
	ProjectSessionRepository() contract.ProjectSessionRepository
}
