package service

import (
	"context"
	"fmt"

	"ai-sitebuilder-be/internal/constant"
	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/pkg/blockedit"
	"ai-sitebuilder-be/pkg/llm"
	"ai-sitebuilder-be/pkg/publish"
)

type IDomainService interface {
	SuggestDomains(ctx context.Context, req *dto.SuggestDomainsRequest) (*dto.SuggestDomainsResponse, error)
	CheckDomain(ctx context.Context, req *dto.CheckDomainRequest) (*dto.CheckDomainResponse, error)
}

type domainService struct {
	llmProvider llm.LLMProvider
	checker     publish.DomainChecker
	logger      logger.ILogger
}

// NewDomainService builds the domain helper. checker may be nil, in which case ideas
// are returned unchecked and CheckDomain fails.
func NewDomainService(llmProvider llm.LLMProvider, checker publish.DomainChecker, logger logger.ILogger) IDomainService {
	return &domainService{
		llmProvider: llmProvider,
		checker:     checker,
		logger:      logger,
	}
}

func (s *domainService) SuggestDomains(ctx context.Context, req *dto.SuggestDomainsRequest) (*dto.SuggestDomainsResponse, error) {
	raw, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: constant.ChatMessageRoleUser, Content: constant.BuildDomainIdeasPrompt(req.Description)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: domain ideas: %w", blockedit.ErrCollaborator, err)
	}

	ideas := publish.ParseDomainIdeas(raw)
	if len(ideas) == 0 {
		return nil, fmt.Errorf("%w: domain ideas: no usable domain in response", blockedit.ErrCollaborator)
	}

	res := &dto.SuggestDomainsResponse{Ideas: ideas, Available: []publish.Availability{}}
	if s.checker != nil {
		res.Checked = true
		res.Available = publish.FirstAvailable(ctx, s.checker, ideas, publish.MaxDomainOffers)
	}

	s.logger.Info("DOMAIN", "Domain ideas generated", map[string]interface{}{
		"ideas":     len(ideas),
		"available": len(res.Available),
		"checked":   res.Checked,
	})
	return res, nil
}

func (s *domainService) CheckDomain(ctx context.Context, req *dto.CheckDomainRequest) (*dto.CheckDomainResponse, error) {
	if s.checker == nil {
		return nil, publish.ErrDomainCheckerUnset
	}
	domain, err := publish.NormalizeDomain(req.Domain)
	if err != nil {
		return nil, err
	}

	checked, err := s.checker.Check(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("%w: check domain: %w", blockedit.ErrCollaborator, err)
	}

	res := &dto.CheckDomainResponse{Domain: *checked, Alternatives: []publish.Availability{}}
	if !checked.Available {
		res.Alternatives = publish.FirstAvailable(ctx, s.checker, publish.AlternativeDomains(domain), publish.MaxDomainOffers)
	}

	s.logger.Info("DOMAIN", "Domain checked", map[string]interface{}{
		"domain":       domain,
		"available":    checked.Available,
		"alternatives": len(res.Alternatives),
	})
	return res, nil
}
