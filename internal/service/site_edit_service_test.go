package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/pkg/blockedit"
	"ai-sitebuilder-be/pkg/lease"
	"ai-sitebuilder-be/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentPath(t *testing.T) {
	assert.Equal(t, "42__bakery/index.html", DocumentPath(bakeryScope))
}

func TestIngest_StoresBlocksAndAnnotatesTemplate(t *testing.T) {
	h := newSiteHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Write(ctx, DocumentPath(bakeryScope), bakeryPage))

	res, err := h.edit.Ingest(ctx, bakeryScope)
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Blocks))
	for _, b := range res.Blocks {
		ids = append(ids, b.Id)
	}
	assert.Equal(t, []string{entity.StyleBlockId, "header", "hero", "footer"}, ids)
	assert.Equal(t, "bakery", res.ProjectId)

	n, err := h.factory.NewUnitOfWork(ctx).HtmlBlockRepository().Count(ctx, bakeryScope)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestIngest_PurgesBlocksMissingFromDocument(t *testing.T) {
	h := newSiteHarness(t)
	ctx := context.Background()
	h.seed(t, bakeryScope)

	withoutHero := `<html><head><style>:root{--brand:#123456}</style></head><body>` +
		`<header id="header"><h1 id="header-text-1">Fresh bread</h1></header>` +
		`<footer id="footer"><a id="footer-link-1" href="/contact">Contact</a></footer></body></html>`
	require.NoError(t, h.store.Write(ctx, DocumentPath(bakeryScope), withoutHero))

	res, err := h.edit.Ingest(ctx, bakeryScope)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Purged)

	hero, err := h.factory.NewUnitOfWork(ctx).HtmlBlockRepository().FindOne(ctx, bakeryScope, "hero")
	require.NoError(t, err)
	assert.Nil(t, hero)
}

func TestIngest_MissingDocument(t *testing.T) {
	h := newSiteHarness(t)

	_, err := h.edit.Ingest(context.Background(), bakeryScope)
	assert.ErrorIs(t, err, blockedit.ErrStorage)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestEdit_RewritesNearestBlockOnly(t *testing.T) {
	h := newSiteHarness(t)
	ctx := context.Background()
	h.seed(t, bakeryScope)
	before := h.document(t, bakeryScope)

	newHeader := `<header id="header"><h1 id="header-text-1">Sourdough every morning</h1></header>`
	h.llm.reply = "```html\n" + newHeader + "\n```"

	res, err := h.edit.Edit(ctx, bakeryScope, &dto.EditSiteRequest{Instruction: "change the headline in the header"})
	require.NoError(t, err)

	assert.False(t, res.NothingToEdit)
	assert.Equal(t, "header", res.BlockId)
	assert.Equal(t, "header", res.Tag)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 4, res.Replaced)

	oldHeader := `<header id="header"><h1 id="header-text-1">Fresh bread</h1></header>`
	assert.Equal(t, strings.Replace(before, oldHeader, newHeader, 1), h.document(t, bakeryScope))

	require.Len(t, h.assembled.payloads, 1)
	var msg dto.SiteAssembledMessage
	require.NoError(t, json.Unmarshal(h.assembled.payloads[0], &msg))
	assert.Equal(t, int64(42), msg.OwnerId)
	assert.Equal(t, "generated/42__bakery/index.html", msg.Path)
}

func TestEdit_StyleBlock(t *testing.T) {
	h := newSiteHarness(t)
	h.seed(t, bakeryScope)
	h.llm.reply = ":root{--brand:#ff0000}"

	res, err := h.edit.Edit(context.Background(), bakeryScope, &dto.EditSiteRequest{Instruction: "make the :root brand color red"})
	require.NoError(t, err)

	assert.Equal(t, entity.StyleBlockId, res.BlockId)
	assert.Contains(t, h.document(t, bakeryScope), "<style>:root{--brand:#ff0000}</style>")
}

func TestEdit_NothingToEdit(t *testing.T) {
	h := newSiteHarness(t)

	res, err := h.edit.Edit(context.Background(), bakeryScope, &dto.EditSiteRequest{Instruction: "make it blue"})
	require.NoError(t, err)

	assert.True(t, res.NothingToEdit)
	assert.NotEmpty(t, res.Message)
	assert.Zero(t, h.llm.calls)
	assert.Zero(t, h.embedder.calls)
}

func TestEdit_CollaboratorFailureLeavesSiteUntouched(t *testing.T) {
	h := newSiteHarness(t)
	ctx := context.Background()
	h.seed(t, bakeryScope)
	before := h.document(t, bakeryScope)
	h.llm.err = errProviderDown

	_, err := h.edit.Edit(ctx, bakeryScope, &dto.EditSiteRequest{Instruction: "change the header"})
	assert.ErrorIs(t, err, blockedit.ErrCollaborator)
	assert.ErrorIs(t, err, errProviderDown)

	assert.Equal(t, before, h.document(t, bakeryScope))
	header, err := h.factory.NewUnitOfWork(ctx).HtmlBlockRepository().FindOne(ctx, bakeryScope, "header")
	require.NoError(t, err)
	assert.Contains(t, header.Content, "Fresh bread")
	assert.Empty(t, h.assembled.payloads)
}

func TestEdit_MalformedGenerationIsReported(t *testing.T) {
	h := newSiteHarness(t)
	h.seed(t, bakeryScope)
	h.llm.reply = "Sure! The header now says hello."

	res, err := h.edit.Edit(context.Background(), bakeryScope, &dto.EditSiteRequest{Instruction: "change the header"})
	require.NoError(t, err)

	assert.Equal(t, "header", res.BlockId)
	assert.NotEmpty(t, res.Warnings)
	assert.Equal(t, 3, res.Replaced)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "header", res.Skipped[0].Id)
}

func TestEdit_LeaseHeld(t *testing.T) {
	h := newSiteHarness(t)
	h.seed(t, bakeryScope)
	h.edit = NewSiteEditService(h.factory, h.store, "generated", h.embedder, h.llm, h.locker, h.assembled, nopLogger(), 50*time.Millisecond)

	release, err := h.locker.Acquire(context.Background(), bakeryScope.Key())
	require.NoError(t, err)
	defer release()

	_, err = h.edit.Edit(context.Background(), bakeryScope, &dto.EditSiteRequest{Instruction: "change the header"})
	assert.ErrorIs(t, err, lease.ErrNotAcquired)
	assert.Zero(t, h.llm.calls)
}

func TestEdit_ScopesAreIsolated(t *testing.T) {
	h := newSiteHarness(t)
	other := entity.Scope{OwnerId: 7, ProjectId: "bakery"}
	h.seed(t, bakeryScope)
	h.seed(t, other)
	otherBefore := h.document(t, other)

	h.llm.reply = `<header id="header"><h1 id="header-text-1">Changed</h1></header>`
	_, err := h.edit.Edit(context.Background(), bakeryScope, &dto.EditSiteRequest{Instruction: "change the header"})
	require.NoError(t, err)

	assert.Equal(t, otherBefore, h.document(t, other))
	assert.Contains(t, h.document(t, bakeryScope), "Changed")
}

func TestEditFields(t *testing.T) {
	h := newSiteHarness(t)
	h.seed(t, bakeryScope)

	res, err := h.edit.EditFields(context.Background(), bakeryScope, &dto.EditFieldsRequest{
		Fields: map[string]blockedit.FieldValue{
			"header-text-1": blockedit.Text("Rye & Co"),
			"hero-img-1":    blockedit.Image("rye.png"),
			"hero-text-1":   blockedit.Image("wrong.png"),
			"nav-link-9":    blockedit.Link("/x", "X"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"header-text-1", "hero-img-1"}, res.Updated)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "hero-text-1", res.Errors[0].Id)
	assert.Equal(t, "nav-link-9", res.Errors[1].Id)
	assert.Equal(t, "unknown field", res.Errors[1].Reason)

	doc := h.document(t, bakeryScope)
	assert.Contains(t, doc, `<h1 id="header-text-1">Rye &amp; Co</h1>`)
	assert.Contains(t, doc, `src="rye.png"`)
	assert.Contains(t, doc, "Baked daily")
	assert.Zero(t, h.llm.calls)
}

func TestEditFields_NothingApplied(t *testing.T) {
	h := newSiteHarness(t)
	h.seed(t, bakeryScope)

	_, err := h.edit.EditFields(context.Background(), bakeryScope, &dto.EditFieldsRequest{
		Fields: map[string]blockedit.FieldValue{"missing-text-1": blockedit.Text("x")},
	})
	assert.ErrorIs(t, err, blockedit.ErrNothingToEdit)
}

func TestAssemble_IsIdempotent(t *testing.T) {
	h := newSiteHarness(t)
	ctx := context.Background()
	h.seed(t, bakeryScope)

	first, err := h.edit.Assemble(ctx, bakeryScope)
	require.NoError(t, err)
	doc := h.document(t, bakeryScope)

	second, err := h.edit.Assemble(ctx, bakeryScope)
	require.NoError(t, err)

	assert.Equal(t, doc, h.document(t, bakeryScope))
	assert.Equal(t, first, second)
	assert.Empty(t, first.Skipped)
}

func TestAssemble_NoBlocks(t *testing.T) {
	h := newSiteHarness(t)
	require.NoError(t, h.store.Write(context.Background(), DocumentPath(bakeryScope), bakeryPage))

	_, err := h.edit.Assemble(context.Background(), bakeryScope)
	assert.ErrorIs(t, err, blockedit.ErrNoBlocks)
}

func TestListBlocksAndDocument(t *testing.T) {
	h := newSiteHarness(t)
	ctx := context.Background()
	h.seed(t, bakeryScope)

	blocks, err := h.edit.ListBlocks(ctx, bakeryScope)
	require.NoError(t, err)
	require.Len(t, blocks, 4)
	assert.Equal(t, "footer", blocks[0].Id)
	assert.Equal(t, entity.StyleBlockId, blocks[1].Id)
	assert.Nil(t, blocks[1].Fields)
	assert.Equal(t, blockedit.Link("/contact", "Contact"), blocks[0].Fields["footer-link-1"])

	doc, err := h.edit.Document(ctx, bakeryScope)
	require.NoError(t, err)
	assert.Equal(t, h.document(t, bakeryScope), doc.Document)

	_, err = h.edit.Document(ctx, entity.Scope{OwnerId: 1, ProjectId: "none"})
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

const nestedPage = `<!DOCTYPE html><html><head><style>:root{--brand:#123456}</style></head><body>` +
	`<section id="zeta"><section id="hero"><p id="hero-text-1">Baked daily</p></section><p id="zeta-text-1">More</p></section>` +
	`</body></html>`

func seedNested(t *testing.T, h *siteHarness) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.store.Write(ctx, DocumentPath(bakeryScope), nestedPage))
	res, err := h.edit.Ingest(ctx, bakeryScope)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 3)
	return h.document(t, bakeryScope)
}

func TestEdit_NestedBlockSyncsEnclosingBlock(t *testing.T) {
	h := newSiteHarness(t)
	ctx := context.Background()
	before := seedNested(t, h)
	h.llm.reply = `<section id="hero"><p id="hero-text-1">Warm rolls</p></section>`

	res, err := h.edit.Edit(ctx, bakeryScope, &dto.EditSiteRequest{Instruction: "change the hero"})
	require.NoError(t, err)
	assert.Equal(t, "hero", res.BlockId)
	assert.Equal(t, 3, res.Replaced)
	assert.Empty(t, res.Skipped)

	assert.Equal(t, strings.Replace(before, "Baked daily", "Warm rolls", 1), h.document(t, bakeryScope))

	zeta, err := h.factory.NewUnitOfWork(ctx).HtmlBlockRepository().FindOne(ctx, bakeryScope, "zeta")
	require.NoError(t, err)
	assert.Contains(t, zeta.Content, "Warm rolls")

	// a later reassembly keeps the nested edit
	_, err = h.edit.Assemble(ctx, bakeryScope)
	require.NoError(t, err)
	assert.Contains(t, h.document(t, bakeryScope), "Warm rolls")
}

func TestEditFields_NestedBlocks(t *testing.T) {
	h := newSiteHarness(t)
	ctx := context.Background()
	seedNested(t, h)

	res, err := h.edit.EditFields(ctx, bakeryScope, &dto.EditFieldsRequest{
		Fields: map[string]blockedit.FieldValue{
			"hero-text-1": blockedit.Text("Warm rolls"),
			"zeta-text-1": blockedit.Text("Even more"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hero-text-1", "zeta-text-1"}, res.Updated)
	assert.Empty(t, res.Errors)

	doc := h.document(t, bakeryScope)
	assert.Contains(t, doc, `<p id="hero-text-1">Warm rolls</p>`)
	assert.Contains(t, doc, `<p id="zeta-text-1">Even more</p>`)

	repo := h.factory.NewUnitOfWork(ctx).HtmlBlockRepository()
	hero, err := repo.FindOne(ctx, bakeryScope, "hero")
	require.NoError(t, err)
	assert.Contains(t, hero.Content, "Warm rolls")
	zeta, err := repo.FindOne(ctx, bakeryScope, "zeta")
	require.NoError(t, err)
	assert.Contains(t, zeta.Content, "Warm rolls")
	assert.Contains(t, zeta.Content, "Even more")
}
