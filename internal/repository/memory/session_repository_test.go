package memory

import (
	"context"
	"testing"

	"ai-sitebuilder-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Cache(t *testing.T) {
	repo := NewSessionRepository()
	session := &entity.ProjectSession{OwnerId: 7, Projects: []entity.ProjectState{{ProjectId: "p1"}}}

	repo.Save(session)
	session.Projects[0].ProjectId = "mutated"

	got, ok := repo.Get(7)
	require.True(t, ok)
	assert.Equal(t, "p1", got.Projects[0].ProjectId)

	repo.Delete(7)
	_, ok = repo.Get(7)
	assert.False(t, ok)
}

func TestProjectSessionRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectSessionRepository()

	got, err := repo.FindByOwner(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Save(ctx, &entity.ProjectSession{OwnerId: 3, Projects: []entity.ProjectState{{ProjectId: "p"}}}))
	got, err = repo.FindByOwner(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Projects, 1)
	assert.False(t, got.UpdatedAt.IsZero())
}
