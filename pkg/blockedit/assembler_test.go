package blockedit

import (
	"context"
	"sort"
	"strings"
	"testing"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/repository/memory"
	"ai-sitebuilder-be/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docPath = "1__bakery/index.html"

func newAssemblyFixture(t *testing.T) (*memory.HtmlBlockRepository, *storage.MemoryStore, *Extraction) {
	t.Helper()
	repo := memory.NewHtmlBlockRepository()
	store := storage.NewMemoryStore()
	ex := seedFixture(t, repo, &keywordEmbedding{}, testScope)
	require.NoError(t, store.Write(context.Background(), docPath, ex.Document))
	return repo, store, ex
}

func putContent(t *testing.T, repo *memory.HtmlBlockRepository, id, content string) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), &entity.HtmlBlock{
		Id:        id,
		Scope:     testScope,
		Content:   content,
		Embedding: []float32{0, 0, 0, 0},
	}))
}

func TestAssemble_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo, store, ex := newAssemblyFixture(t)
	a := NewAssembler(repo, store, nopLogger())

	first, err := a.Assemble(ctx, testScope, docPath)
	require.NoError(t, err)
	second, err := a.Assemble(ctx, testScope, docPath)
	require.NoError(t, err)

	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, ex.Document, first.Document)
	assert.Equal(t, 4, first.Total)
	assert.Equal(t, 4, first.Replaced)
	assert.Empty(t, first.Skipped)

	onDisk, err := store.Read(ctx, docPath)
	require.NoError(t, err)
	assert.Equal(t, second.Document, onDisk)
}

func TestAssemble_PartialFailureIsContained(t *testing.T) {
	ctx := context.Background()
	repo, store, ex := newAssemblyFixture(t)

	newHeader := `<header id="header"><h1 id="header-text-1">Warm bread</h1></header>`
	newFooter := `<footer id="footer"><a id="footer-link-1" href="/call">Call us</a></footer>`
	putContent(t, repo, "header", newHeader)
	putContent(t, repo, "footer", newFooter)
	putContent(t, repo, "hero", "I could not complete that edit.")

	got, err := NewAssembler(repo, store, nopLogger()).Assemble(ctx, testScope, docPath)
	require.NoError(t, err)

	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 3, got.Replaced)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "hero", got.Skipped[0].Id)

	oldHero := ex.Blocks[2].Content
	assert.Contains(t, got.Document, newHeader)
	assert.Contains(t, got.Document, newFooter)
	assert.Contains(t, got.Document, oldHero)
}

func TestAssemble_UnmatchedIdIsSkipped(t *testing.T) {
	ctx := context.Background()
	repo, store, ex := newAssemblyFixture(t)
	putContent(t, repo, "pricing", `<section id="pricing">new</section>`)

	got, err := NewAssembler(repo, store, nopLogger()).Assemble(ctx, testScope, docPath)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 4, got.Replaced)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "pricing", got.Skipped[0].Id)
	assert.Equal(t, ex.Document, got.Document)
}

func TestAssemble_NoBlocks(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Write(context.Background(), docPath, pageFixture))

	_, err := NewAssembler(memory.NewHtmlBlockRepository(), store, nopLogger()).Assemble(context.Background(), testScope, docPath)
	assert.ErrorIs(t, err, ErrNoBlocks)
}

func TestAssemble_MissingTemplate(t *testing.T) {
	_, err := NewAssembler(memory.NewHtmlBlockRepository(), storage.NewMemoryStore(), nopLogger()).Assemble(context.Background(), testScope, docPath)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestAssembleDocument_Style(t *testing.T) {
	tests := []struct {
		name     string
		template string
		content  string
		want     string
	}{
		{
			name:     "replaces first head style",
			template: `<html><head><style>a{}</style><style>b{}</style></head><body></body></html>`,
			content:  `<style>:root{--x:1}</style>`,
			want:     `<html><head><style>:root{--x:1}</style><style>b{}</style></head><body></body></html>`,
		},
		{
			name:     "appends when head has no style",
			template: `<html><head><title>t</title></head><body></body></html>`,
			content:  `<style>p{}</style>`,
			want:     `<html><head><title>t</title><style>p{}</style></head><body></body></html>`,
		},
		{
			name:     "wraps bare css",
			template: `<html><head><style>a{}</style></head><body></body></html>`,
			content:  `:root{--y:2}`,
			want:     `<html><head><style>:root{--y:2}</style></head><body></body></html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AssembleDocument(tt.template, []*entity.HtmlBlock{{Id: entity.StyleBlockId, Content: tt.content}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Document)
			assert.Equal(t, 1, got.Replaced)
		})
	}
}

func TestAssembleDocument_IdFromDescendant(t *testing.T) {
	template := `<html><head></head><body><section id="hero">old</section></body></html>`
	got, err := AssembleDocument(template, []*entity.HtmlBlock{{Id: "hero", Content: `<div class="wrap"><p id="hero">new</p></div>`}})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Replaced)
	assert.True(t, strings.Contains(got.Document, `<div class="wrap"><p id="hero">new</p></div>`))
	assert.NotContains(t, got.Document, "old")
}

func TestAssembleDocument_NestedBlockWinsOverStaleAncestor(t *testing.T) {
	tests := []struct {
		name     string
		outerId  string
		innerId  string
		template string
	}{
		{
			name:     "ancestor sorts after the nested block",
			outerId:  "zeta",
			innerId:  "alpha",
			template: `<html><head></head><body><section id="zeta"><h2>Menu</h2><article id="alpha">old</article></section></body></html>`,
		},
		{
			name:     "ancestor sorts before the nested block",
			outerId:  "blog",
			innerId:  "post-1",
			template: `<html><head></head><body><section id="blog"><h2>Menu</h2><article id="post-1">old</article></section></body></html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := NewExtractor().Extract(tt.template)
			require.NoError(t, err)
			require.Equal(t, []string{tt.outerId, tt.innerId}, ex.IDs())

			inner := `<article id="` + tt.innerId + `">new</article>`
			rows := []*entity.HtmlBlock{
				{Id: tt.outerId, Content: ex.Blocks[0].Content},
				{Id: tt.innerId, Content: inner},
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].Id < rows[j].Id })

			got, err := AssembleDocument(ex.Document, rows)
			require.NoError(t, err)
			assert.Equal(t, 2, got.Replaced)
			assert.Empty(t, got.Skipped)
			assert.Equal(t, strings.Replace(ex.Document, ">old<", ">new<", 1), got.Document)

			again, err := AssembleDocument(got.Document, rows)
			require.NoError(t, err)
			assert.Equal(t, got.Document, again.Document)
		})
	}
}

func TestAssembleDocument_SelfNestingContentTerminates(t *testing.T) {
	template := `<html><head></head><body><section id="a"><article id="b">x</article></section></body></html>`
	rows := []*entity.HtmlBlock{
		{Id: "a", Content: `<section id="a"><article id="b">x</article></section>`},
		{Id: "b", Content: `<article id="b"><section id="a">loop</section></article>`},
	}

	got, err := AssembleDocument(template, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Replaced)
	assert.Contains(t, got.Document, `<article id="b">x</article>`)
}
