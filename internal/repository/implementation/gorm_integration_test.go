package implementation

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/model"
	"ai-sitebuilder-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.EnsureVectorExtension(db))
	require.NoError(t, db.AutoMigrate(&model.HtmlBlock{}, &model.ProjectSession{}))
	return db
}

// testScope isolates each run so parallel CI jobs do not see each other's rows.
func testScope(t *testing.T) entity.Scope {
	scope := entity.Scope{OwnerId: time.Now().UnixNano() % 1_000_000_000, ProjectId: "it-bakery"}
	t.Cleanup(func() {
		_, _ = NewHtmlBlockRepository(db(t)).DeleteByScopeExcept(context.Background(), scope, nil)
	})
	return scope
}

var sharedDB *gorm.DB

func db(t *testing.T) *gorm.DB {
	if sharedDB == nil {
		sharedDB = openTestDB(t)
	}
	return sharedDB
}

func TestHtmlBlockRepository_Gorm(t *testing.T) {
	repo := NewHtmlBlockRepository(db(t))
	ctx := context.Background()
	scope := testScope(t)
	other := entity.Scope{OwnerId: scope.OwnerId + 1, ProjectId: scope.ProjectId}
	t.Cleanup(func() { _, _ = repo.DeleteByScopeExcept(ctx, other, nil) })

	for i, id := range []string{"hero", "features", "footer"} {
		vec := []float32{0, 0, 0}
		vec[i] = 1
		require.NoError(t, repo.Upsert(ctx, &entity.HtmlBlock{
			Id:        id,
			Scope:     scope,
			Tag:       "section",
			Content:   fmt.Sprintf(`<section id="%s"></section>`, id),
			Embedding: vec,
		}))
	}
	require.NoError(t, repo.Upsert(ctx, &entity.HtmlBlock{
		Id: "hero", Scope: other, Tag: "section", Content: "<section id=\"hero\">other</section>", Embedding: []float32{1, 0, 0},
	}))

	t.Run("upsert overwrites in place", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &entity.HtmlBlock{
			Id: "hero", Scope: scope, Tag: "section", Content: `<section id="hero">v2</section>`, Embedding: []float32{1, 0, 0},
		}))
		got, err := repo.FindOne(ctx, scope, "hero")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Contains(t, got.Content, "v2")

		count, err := repo.Count(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("missing block is nil", func(t *testing.T) {
		got, err := repo.FindOne(ctx, scope, "pricing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("nearest stays inside the scope", func(t *testing.T) {
		scored, err := repo.SearchNearest(ctx, scope, []float32{0.1, 0.9, 0}, 2)
		require.NoError(t, err)
		require.Len(t, scored, 2)
		assert.Equal(t, "features", scored[0].Block.Id)
		assert.LessOrEqual(t, scored[0].Distance, scored[1].Distance)
		for _, s := range scored {
			assert.Equal(t, scope, s.Block.Scope)
		}
	})

	t.Run("ordered by id", func(t *testing.T) {
		all, err := repo.FindAllByScope(ctx, scope)
		require.NoError(t, err)
		ids := make([]string, len(all))
		for i, b := range all {
			ids[i] = b.Id
		}
		assert.Equal(t, []string{"features", "footer", "hero"}, ids)
	})

	t.Run("delete keeps listed ids", func(t *testing.T) {
		removed, err := repo.DeleteByScopeExcept(ctx, scope, []string{"hero"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		count, err := repo.Count(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestProjectSessionRepository_Gorm(t *testing.T) {
	repo := NewProjectSessionRepository(db(t))
	ctx := context.Background()
	ownerId := time.Now().UnixNano() % 1_000_000_000
	t.Cleanup(func() { db(t).Delete(&model.ProjectSession{}, "chat_id = ?", ownerId) })

	got, err := repo.FindByOwner(ctx, ownerId)
	require.NoError(t, err)
	assert.Nil(t, got)

	session := &entity.ProjectSession{OwnerId: ownerId}
	session.Upsert(entity.ProjectState{ProjectId: "bakery", Sections: []string{"header", "hero", "footer"}})
	require.NoError(t, repo.Save(ctx, session))

	session.Upsert(entity.ProjectState{ProjectId: "bakery", SiteURL: "https://hellositeai.github.io/bakery/"})
	require.NoError(t, repo.Save(ctx, session))

	got, err = repo.FindByOwner(ctx, ownerId)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, "https://hellositeai.github.io/bakery/", got.Current().SiteURL)
}
