package memory

import (
	"context"
	"testing"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	scopeA = entity.Scope{OwnerId: 1, ProjectId: "alpha"}
	scopeB = entity.Scope{OwnerId: 2, ProjectId: "alpha"}
)

func seed(t *testing.T, repo *HtmlBlockRepository, scope entity.Scope, id string, vec ...float32) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), &entity.HtmlBlock{
		Id:        id,
		Scope:     scope,
		Tag:       "section",
		Content:   "<section id=\"" + id + "\"></section>",
		Embedding: vec,
	}))
}

func TestHtmlBlockRepository_UpsertReplacesContent(t *testing.T) {
	ctx := context.Background()
	repo := NewHtmlBlockRepository()
	seed(t, repo, scopeA, "hero", 1, 0)

	err := repo.Upsert(ctx, &entity.HtmlBlock{Id: "hero", Scope: scopeA, Content: "<section id=\"hero\">v2</section>", Embedding: []float32{0, 1}})
	require.NoError(t, err)

	got, err := repo.FindOne(ctx, scopeA, "hero")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "<section id=\"hero\">v2</section>", got.Content)
	assert.Equal(t, "section", got.Tag)
	assert.Equal(t, []float32{0, 1}, got.Embedding)

	n, err := repo.Count(ctx, scopeA)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestHtmlBlockRepository_FindOneMissing(t *testing.T) {
	got, err := NewHtmlBlockRepository().FindOne(context.Background(), scopeA, "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestHtmlBlockRepository_SearchNearestIsScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewHtmlBlockRepository()
	seed(t, repo, scopeA, "hero", 1, 0)
	seed(t, repo, scopeA, "about", 0, 1)
	seed(t, repo, scopeA, "footer", 5, 5)
	seed(t, repo, scopeA, "contact", -3, -3)
	seed(t, repo, scopeB, "hero", 1, 0)

	got, err := repo.SearchNearest(ctx, scopeA, []float32{0.9, 0.1}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "hero", got[0].Block.Id)
	assert.Equal(t, "about", got[1].Block.Id)
	for _, s := range got {
		assert.Equal(t, scopeA, s.Block.Scope)
	}
	assert.LessOrEqual(t, got[0].Distance, got[1].Distance)
}

func TestHtmlBlockRepository_SearchNearestTieBreaksById(t *testing.T) {
	ctx := context.Background()
	repo := NewHtmlBlockRepository()
	seed(t, repo, scopeA, "zeta", 1, 1)
	seed(t, repo, scopeA, "alpha", 1, 1)

	got, err := repo.SearchNearest(ctx, scopeA, []float32{1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Block.Id)
}

func TestHtmlBlockRepository_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	repo := NewHtmlBlockRepository()
	seed(t, repo, scopeA, "hero", 1, 0)

	err := repo.Upsert(ctx, &entity.HtmlBlock{Id: "about", Scope: scopeA, Embedding: []float32{1, 0, 0}})
	assert.ErrorIs(t, err, contract.ErrDimensionMismatch)

	_, err = repo.SearchNearest(ctx, scopeA, []float32{1, 0, 0}, 3)
	assert.ErrorIs(t, err, contract.ErrDimensionMismatch)

	// other scopes may use another width
	seed(t, repo, scopeB, "hero", 1, 0, 0)
}

func TestHtmlBlockRepository_FindAllOrderedAndDeleteExcept(t *testing.T) {
	ctx := context.Background()
	repo := NewHtmlBlockRepository()
	seed(t, repo, scopeA, "hero", 1)
	seed(t, repo, scopeA, "about", 2)
	seed(t, repo, scopeA, "head-style", 3)
	seed(t, repo, scopeB, "about", 2)

	all, err := repo.FindAllByScope(ctx, scopeA)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, b := range all {
		ids = append(ids, b.Id)
	}
	assert.Equal(t, []string{"about", "head-style", "hero"}, ids)

	removed, err := repo.DeleteByScopeExcept(ctx, scopeA, []string{"hero", "head-style"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	n, _ := repo.Count(ctx, scopeA)
	assert.EqualValues(t, 2, n)
	n, _ = repo.Count(ctx, scopeB)
	assert.EqualValues(t, 1, n)
}
