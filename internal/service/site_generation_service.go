package service

import (
	"context"
	"fmt"
	"strings"

	"ai-sitebuilder-be/internal/constant"
	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/pkg/blockedit"
	"ai-sitebuilder-be/pkg/llm"
	"ai-sitebuilder-be/pkg/publish"

	"github.com/google/uuid"
)

type ISiteGenerationService interface {
	Generate(ctx context.Context, ownerId int64, req *dto.GenerateSiteRequest) (*dto.GenerateSiteResponse, error)
}

type siteGenerationService struct {
	llmProvider    llm.LLMProvider
	sessionService IProjectSessionService
	editService    ISiteEditService
	logger         logger.ILogger
}

func NewSiteGenerationService(
	llmProvider llm.LLMProvider,
	sessionService IProjectSessionService,
	editService ISiteEditService,
	logger logger.ILogger,
) ISiteGenerationService {
	return &siteGenerationService{
		llmProvider:    llmProvider,
		sessionService: sessionService,
		editService:    editService,
		logger:         logger,
	}
}

// ProjectIdFor derives the project id from its display name.
func ProjectIdFor(name string) string {
	if slug := publish.Slug(name); slug != "" {
		return slug
	}
	return uuid.NewString()
}

func (s *siteGenerationService) Generate(ctx context.Context, ownerId int64, req *dto.GenerateSiteRequest) (*dto.GenerateSiteResponse, error) {
	scope := entity.Scope{OwnerId: ownerId, ProjectId: ProjectIdFor(req.ProjectName)}
	sections := constant.NormalizeSections(req.Sections)

	session, err := s.sessionService.Load(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	var previous map[string]string
	if p := session.Find(scope.ProjectId); p != nil {
		previous = p.Patterns
	}
	patterns := constant.AutoSelectPatterns(previous, sections)

	prompt := constant.BuildPagePrompt(constant.PageBrief{
		ProjectName: req.ProjectName,
		Description: req.Description,
		Goal:        req.Goal,
		WebsiteType: req.WebsiteType,
		LogoURL:     req.LogoURL,
		Colors:      req.Colors,
		Images:      req.Images,
		Sections:    sections,
		Patterns:    patterns,
	})

	s.logger.Info("SITE", "Generating page", map[string]interface{}{
		"scope":    scope.Key(),
		"sections": sections,
		"patterns": patterns,
	})

	raw, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.GeneratePagePrompt},
		{Role: constant.ChatMessageRoleUser, Content: prompt},
	}, llm.WithTemperature(constant.GenerationTemperature))
	if err != nil {
		return nil, fmt.Errorf("%w: generate page: %w", blockedit.ErrCollaborator, err)
	}

	page := blockedit.StripCodeFence(raw)
	if strings.TrimSpace(page) == "" {
		return nil, fmt.Errorf("%w: generate page: empty response", blockedit.ErrCollaborator)
	}

	ingest, err := s.editService.IngestDocument(ctx, scope, page)
	if err != nil {
		return nil, err
	}

	err = s.sessionService.UpdateProject(ctx, ownerId, scope.ProjectId, func(p *entity.ProjectState) {
		p.Answers = map[string]any{
			"projectName":      req.ProjectName,
			"shortDescription": req.Description,
			"goal":             req.Goal,
			"type":             req.WebsiteType,
			"logo":             req.LogoURL,
			"colors":           req.Colors,
		}
		p.Sections = sections
		p.Patterns = patterns
		p.GeneratedFolder = scope.Folder()
	})
	if err != nil {
		return nil, err
	}

	return &dto.GenerateSiteResponse{
		ProjectId: scope.ProjectId,
		Sections:  sections,
		Patterns:  patterns,
		Blocks:    ingest.Blocks,
	}, nil
}
