package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"ai-sitebuilder-be/internal/constant"
	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/repository/contract"
	"ai-sitebuilder-be/internal/repository/unitofwork"
	"ai-sitebuilder-be/pkg/blockedit"
	"ai-sitebuilder-be/pkg/embedding"
	"ai-sitebuilder-be/pkg/lease"
	"ai-sitebuilder-be/pkg/llm"
	"ai-sitebuilder-be/pkg/storage"
)

const (
	siteDocumentName = "index.html"
	rephraseMessage  = "I could not find anything on the page matching that. Could you rephrase the change?"
)

// DocumentPath is the scope's document, relative to the generated sites root.
func DocumentPath(scope entity.Scope) string {
	return filepath.Join(scope.Folder(), siteDocumentName)
}

type ISiteEditService interface {
	Ingest(ctx context.Context, scope entity.Scope) (*dto.IngestSiteResponse, error)
	IngestDocument(ctx context.Context, scope entity.Scope, page string) (*dto.IngestSiteResponse, error)
	Edit(ctx context.Context, scope entity.Scope, req *dto.EditSiteRequest) (*dto.EditSiteResponse, error)
	EditFields(ctx context.Context, scope entity.Scope, req *dto.EditFieldsRequest) (*dto.EditFieldsResponse, error)
	Assemble(ctx context.Context, scope entity.Scope) (*dto.AssembleSiteResponse, error)
	ListBlocks(ctx context.Context, scope entity.Scope) ([]*dto.BlockResponse, error)
	Document(ctx context.Context, scope entity.Scope) (*dto.DocumentResponse, error)
}

type siteEditService struct {
	uowFactory        unitofwork.RepositoryFactory
	store             storage.DocumentStore
	siteRoot          string
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	locker            lease.Locker
	publisherService  IPublisherService
	logger            logger.ILogger
	editTimeout       time.Duration
}

func NewSiteEditService(
	uowFactory unitofwork.RepositoryFactory,
	store storage.DocumentStore,
	siteRoot string,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	locker lease.Locker,
	publisherService IPublisherService,
	logger logger.ILogger,
	editTimeout time.Duration,
) ISiteEditService {
	return &siteEditService{
		uowFactory:        uowFactory,
		store:             store,
		siteRoot:          siteRoot,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		locker:            locker,
		publisherService:  publisherService,
		logger:            logger,
		editTimeout:       editTimeout,
	}
}

// acquire bounds ctx by the edit timeout and takes the scope lease. The returned
// release must be called on every path.
func (s *siteEditService) acquire(ctx context.Context, scope entity.Scope) (context.Context, func(), error) {
	cancel := func() {}
	if s.editTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.editTimeout)
	}

	release, err := s.locker.Acquire(ctx, scope.Key())
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return ctx, func() {
		release()
		cancel()
	}, nil
}

func summarize(blocks []*entity.HtmlBlock) []dto.BlockSummary {
	out := make([]dto.BlockSummary, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, dto.BlockSummary{Id: b.Id, Tag: b.Tag, Length: len(b.Content)})
	}
	return out
}

func (s *siteEditService) Ingest(ctx context.Context, scope entity.Scope) (*dto.IngestSiteResponse, error) {
	ctx, release, err := s.acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := s.store.Read(ctx, DocumentPath(scope))
	if err != nil {
		return nil, fmt.Errorf("%w: read document: %w", blockedit.ErrStorage, err)
	}
	return s.ingest(ctx, scope, doc)
}

// IngestDocument stores page as the scope's document and ingests it, both under the
// scope lease.
func (s *siteEditService) IngestDocument(ctx context.Context, scope entity.Scope, page string) (*dto.IngestSiteResponse, error) {
	ctx, release, err := s.acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.ingest(ctx, scope, page)
}

// ingest extracts doc, writes the annotated template and stores its blocks. The caller
// holds the scope lease.
func (s *siteEditService) ingest(ctx context.Context, scope entity.Scope, doc string) (*dto.IngestSiteResponse, error) {
	path := DocumentPath(scope)
	extraction, err := blockedit.NewExtractor().Extract(doc)
	if err != nil {
		return nil, err
	}

	// The template must carry the assigned ids before any row references them.
	if err := s.store.Write(ctx, path, extraction.Document); err != nil {
		return nil, fmt.Errorf("%w: write template: %w", blockedit.ErrStorage, err)
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).HtmlBlockRepository()
	if err := blockedit.NewEmbedder(s.embeddingProvider, repo, s.logger).EmbedAll(ctx, scope, extraction.Blocks); err != nil {
		return nil, err
	}

	purged, err := repo.DeleteByScopeExcept(ctx, scope, extraction.IDs())
	if err != nil {
		return nil, fmt.Errorf("%w: purge stale blocks: %w", blockedit.ErrStorage, err)
	}

	s.logger.Info("SITE", "Document ingested", map[string]interface{}{
		"scope":  scope.Key(),
		"blocks": len(extraction.Blocks),
		"purged": purged,
	})

	return &dto.IngestSiteResponse{
		ProjectId: scope.ProjectId,
		Blocks:    summarize(extraction.Blocks),
		Purged:    purged,
	}, nil
}

func (s *siteEditService) Edit(ctx context.Context, scope entity.Scope, req *dto.EditSiteRequest) (*dto.EditSiteResponse, error) {
	ctx, release, err := s.acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	repo := s.uowFactory.NewUnitOfWork(ctx).HtmlBlockRepository()

	matches, err := blockedit.NewResolver(s.embeddingProvider, repo).Resolve(ctx, scope, req.Instruction, blockedit.DefaultResolveLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		s.logger.Info("SITE", "Nothing to edit", map[string]interface{}{"scope": scope.Key()})
		return &dto.EditSiteResponse{
			NothingToEdit: true,
			Message:       rephraseMessage,
			Warnings:      []string{},
		}, nil
	}

	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, fmt.Sprintf("%s:%.4f", m.Block.Id, m.Distance))
	}
	target := matches[0].Block
	s.logger.Info("SITE", "Edit target resolved", map[string]interface{}{
		"scope":      scope.Key(),
		"block_id":   target.Id,
		"candidates": candidates,
	})

	mutation, err := blockedit.NewMutator(s.llmProvider, constant.SystemEditPrompt, s.logger).Mutate(ctx, target, req.Instruction)
	if err != nil {
		return nil, err
	}

	warnings := []string{}
	if mutation.Warning != "" {
		warnings = append(warnings, mutation.Warning)
	}
	if !mutation.IsStyle && mutation.RootId != "" && mutation.RootId != target.Id {
		warnings = append(warnings, fmt.Sprintf("rewritten block id changed from %q to %q", target.Id, mutation.RootId))
	}

	updated := *target
	updated.Content = mutation.Content
	embedder := blockedit.NewEmbedder(s.embeddingProvider, repo, s.logger)
	if err := embedder.Embed(ctx, scope, &updated); err != nil {
		return nil, err
	}
	if err := s.syncNested(ctx, scope, repo, embedder, &updated); err != nil {
		return nil, err
	}

	assembly, err := s.assemble(ctx, scope, repo)
	if err != nil {
		return nil, err
	}
	for _, sk := range assembly.Skipped {
		if sk.Id == target.Id {
			warnings = append(warnings, fmt.Sprintf("block %q was not placed: %s", sk.Id, sk.Reason))
		}
	}

	return &dto.EditSiteResponse{
		BlockId:  target.Id,
		Tag:      target.Tag,
		Warnings: warnings,
		Replaced: assembly.Replaced,
		Total:    assembly.Total,
		Skipped:  assembly.Skipped,
	}, nil
}

func (s *siteEditService) EditFields(ctx context.Context, scope entity.Scope, req *dto.EditFieldsRequest) (*dto.EditFieldsResponse, error) {
	ctx, release, err := s.acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	repo := s.uowFactory.NewUnitOfWork(ctx).HtmlBlockRepository()
	rows, err := repo.FindAllByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: load blocks: %w", blockedit.ErrStorage, err)
	}

	// Each requested id goes to the innermost block that contains it: the shortest
	// content wins, ties by id order. Enclosing blocks follow through syncNested.
	owner := make(map[string]*entity.HtmlBlock, len(req.Fields))
	for _, row := range rows {
		if row.IsStyle() {
			continue
		}
		fields, err := blockedit.ExtractFields(row.Content)
		if err != nil {
			s.logger.Warn("SITE", "Block fields unreadable", map[string]interface{}{
				"scope":    scope.Key(),
				"block_id": row.Id,
				"error":    err.Error(),
			})
			continue
		}
		for id := range req.Fields {
			if _, ok := fields[id]; ok && (owner[id] == nil || len(row.Content) < len(owner[id].Content)) {
				owner[id] = row
			}
		}
	}

	perBlock := make(map[*entity.HtmlBlock]map[string]blockedit.FieldValue)
	fieldErrs := []blockedit.FieldError{}
	for id, v := range req.Fields {
		row := owner[id]
		if row == nil {
			fieldErrs = append(fieldErrs, blockedit.FieldError{Id: id, Reason: "unknown field"})
			continue
		}
		if perBlock[row] == nil {
			perBlock[row] = make(map[string]blockedit.FieldValue)
		}
		perBlock[row][id] = v
	}

	embedder := blockedit.NewEmbedder(s.embeddingProvider, repo, s.logger)
	updatedIds := []string{}
	for _, row := range rows {
		values, ok := perBlock[row]
		if !ok {
			continue
		}
		// An earlier block in this request may have synced into this one.
		current, err := repo.FindOne(ctx, scope, row.Id)
		if err != nil {
			return nil, fmt.Errorf("%w: load block: %w", blockedit.ErrStorage, err)
		}
		if current == nil {
			current = row
		}

		content, errs, err := blockedit.ApplyFields(current.Content, values)
		if err != nil {
			return nil, fmt.Errorf("apply fields to block %q: %w", row.Id, err)
		}
		fieldErrs = append(fieldErrs, errs...)
		if len(errs) == len(values) {
			continue
		}

		updated := *current
		updated.Content = content
		if err := embedder.Embed(ctx, scope, &updated); err != nil {
			return nil, err
		}
		if err := s.syncNested(ctx, scope, repo, embedder, &updated); err != nil {
			return nil, err
		}
		for id := range values {
			if !hasFieldError(errs, id) {
				updatedIds = append(updatedIds, id)
			}
		}
	}
	sort.Strings(updatedIds)
	sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Id < fieldErrs[j].Id })

	if len(updatedIds) == 0 {
		return nil, fmt.Errorf("%w: no field could be applied", blockedit.ErrNothingToEdit)
	}

	assembly, err := s.assemble(ctx, scope, repo)
	if err != nil {
		return nil, err
	}

	return &dto.EditFieldsResponse{
		Updated:  updatedIds,
		Errors:   fieldErrs,
		Replaced: assembly.Replaced,
		Total:    assembly.Total,
		Skipped:  assembly.Skipped,
	}, nil
}

// syncNested re-embeds the blocks nested in or enclosing edited so every stored copy of
// a subtree agrees with the edit.
func (s *siteEditService) syncNested(ctx context.Context, scope entity.Scope, repo contract.HtmlBlockRepository, embedder *blockedit.Embedder, edited *entity.HtmlBlock) error {
	rows, err := repo.FindAllByScope(ctx, scope)
	if err != nil {
		return fmt.Errorf("%w: load blocks: %w", blockedit.ErrStorage, err)
	}
	for _, stale := range blockedit.Propagate(rows, edited) {
		if err := embedder.Embed(ctx, scope, stale); err != nil {
			return err
		}
		s.logger.Debug("SITE", "Nested block synced", map[string]interface{}{
			"scope":     scope.Key(),
			"block_id":  stale.Id,
			"edited_id": edited.Id,
		})
	}
	return nil
}

func hasFieldError(errs []blockedit.FieldError, id string) bool {
	for _, e := range errs {
		if e.Id == id {
			return true
		}
	}
	return false
}

func (s *siteEditService) Assemble(ctx context.Context, scope entity.Scope) (*dto.AssembleSiteResponse, error) {
	ctx, release, err := s.acquire(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	assembly, err := s.assemble(ctx, scope, s.uowFactory.NewUnitOfWork(ctx).HtmlBlockRepository())
	if err != nil {
		return nil, err
	}

	skipped := assembly.Skipped
	if skipped == nil {
		skipped = []blockedit.SkippedBlock{}
	}
	return &dto.AssembleSiteResponse{
		Replaced: assembly.Replaced,
		Total:    assembly.Total,
		Skipped:  skipped,
	}, nil
}

// assemble runs the assembler and announces the new projection. The caller holds the lease.
func (s *siteEditService) assemble(ctx context.Context, scope entity.Scope, repo contract.HtmlBlockRepository) (*blockedit.Assembly, error) {
	path := DocumentPath(scope)
	assembly, err := blockedit.NewAssembler(repo, s.store, s.logger).Assemble(ctx, scope, path)
	if err != nil {
		return nil, err
	}

	if s.publisherService != nil {
		payload, err := json.Marshal(dto.SiteAssembledMessage{
			OwnerId:   scope.OwnerId,
			ProjectId: scope.ProjectId,
			Path:      filepath.Join(s.siteRoot, path),
			Replaced:  assembly.Replaced,
			Total:     assembly.Total,
		})
		if err == nil {
			err = s.publisherService.Publish(ctx, payload)
		}
		if err != nil {
			s.logger.Warn("SITE", "Failed to publish assembled event", map[string]interface{}{
				"scope": scope.Key(),
				"error": err.Error(),
			})
		}
	}
	return assembly, nil
}

func (s *siteEditService) ListBlocks(ctx context.Context, scope entity.Scope) ([]*dto.BlockResponse, error) {
	rows, err := s.uowFactory.NewUnitOfWork(ctx).HtmlBlockRepository().FindAllByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: load blocks: %w", blockedit.ErrStorage, err)
	}

	result := make([]*dto.BlockResponse, 0, len(rows))
	for _, row := range rows {
		res := &dto.BlockResponse{
			Id:        row.Id,
			Tag:       row.Tag,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		if !row.IsStyle() {
			if fields, err := blockedit.ExtractFields(row.Content); err == nil && len(fields) > 0 {
				res.Fields = fields
			}
		}
		result = append(result, res)
	}
	return result, nil
}

func (s *siteEditService) Document(ctx context.Context, scope entity.Scope) (*dto.DocumentResponse, error) {
	path := DocumentPath(scope)
	doc, err := s.store.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: read document: %w", blockedit.ErrStorage, err)
	}
	return &dto.DocumentResponse{Path: path, Document: doc}, nil
}
