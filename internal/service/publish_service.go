package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/pkg/mailer"
	"ai-sitebuilder-be/pkg/blockedit"
	"ai-sitebuilder-be/pkg/events"
	"ai-sitebuilder-be/pkg/publish"
	"ai-sitebuilder-be/pkg/storage"
)

// DomainAttacher points a custom domain at an already published site.
type DomainAttacher interface {
	AttachDomain(ctx context.Context, slug, domain string) error
}

type IPublishService interface {
	Publish(ctx context.Context, scope entity.Scope, req *dto.PublishSiteRequest) (*dto.PublishSiteResponse, error)
	AttachDomain(ctx context.Context, scope entity.Scope, req *dto.AttachDomainRequest) (*dto.AttachDomainResponse, error)
}

type publishService struct {
	publishers     map[string]publish.Publisher
	domains        DomainAttacher
	store          storage.DocumentStore
	siteRoot       string
	sessionService IProjectSessionService
	eventPublisher EventPublisher
	emailService   mailer.IEmailService
	logger         logger.ILogger
}

// NewPublishService wires the configured targets. domains, eventPublisher and
// emailService may be nil.
func NewPublishService(
	publishers map[string]publish.Publisher,
	domains DomainAttacher,
	store storage.DocumentStore,
	siteRoot string,
	sessionService IProjectSessionService,
	eventPublisher EventPublisher,
	emailService mailer.IEmailService,
	logger logger.ILogger,
) IPublishService {
	return &publishService{
		publishers:     publishers,
		domains:        domains,
		store:          store,
		siteRoot:       siteRoot,
		sessionService: sessionService,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		logger:         logger,
	}
}

func (s *publishService) Publish(ctx context.Context, scope entity.Scope, req *dto.PublishSiteRequest) (*dto.PublishSiteResponse, error) {
	publisher, ok := s.publishers[req.Target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", publish.ErrUnknownTarget, req.Target)
	}

	exists, err := s.store.Exists(ctx, DocumentPath(scope))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", blockedit.ErrStorage, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", storage.ErrDocumentNotFound, DocumentPath(scope))
	}

	site := publish.Site{
		Dir:  filepath.Join(s.siteRoot, scope.Folder()),
		Slug: publish.Slug(scope.ProjectId),
	}
	result, err := publisher.Publish(ctx, site)
	if err != nil {
		return nil, fmt.Errorf("%w: publish to %s: %w", blockedit.ErrCollaborator, req.Target, err)
	}

	err = s.sessionService.UpdateProject(ctx, scope.OwnerId, scope.ProjectId, func(p *entity.ProjectState) {
		if req.Target == publish.TargetGitHub {
			p.Repo = site.Slug
		}
		if p.Domain == "" {
			p.SiteURL = result.URL
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("PUBLISH", "Site published", map[string]interface{}{
		"scope":    scope.Key(),
		"target":   result.Target,
		"url":      result.URL,
		"revision": result.Revision,
	})

	s.announce(ctx, scope, result, req.NotifyEmail)

	return &dto.PublishSiteResponse{
		Target:   result.Target,
		URL:      result.URL,
		Revision: result.Revision,
	}, nil
}

// announce emits SITE_PUBLISHED. Without an event bus the notification mail is sent inline.
func (s *publishService) announce(ctx context.Context, scope entity.Scope, result *publish.Result, notifyEmail string) {
	if s.eventPublisher != nil {
		evt := events.New(events.SitePublished, map[string]interface{}{
			"owner_id":     scope.OwnerId,
			"project_id":   scope.ProjectId,
			"target":       result.Target,
			"url":          result.URL,
			"revision":     result.Revision,
			"notify_email": notifyEmail,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("PUBLISH", "Failed to publish SITE_PUBLISHED event", map[string]interface{}{
				"scope": scope.Key(),
				"error": err.Error(),
			})
		} else {
			return
		}
	}

	if notifyEmail == "" || s.emailService == nil {
		return
	}
	if err := s.emailService.SendSitePublished(notifyEmail, scope.ProjectId, result.URL); err != nil {
		s.logger.Warn("PUBLISH", "Failed to send publish notification", map[string]interface{}{
			"scope": scope.Key(),
			"error": err.Error(),
		})
	}
}

func (s *publishService) AttachDomain(ctx context.Context, scope entity.Scope, req *dto.AttachDomainRequest) (*dto.AttachDomainResponse, error) {
	if s.domains == nil {
		return nil, fmt.Errorf("%w: %s", publish.ErrUnknownTarget, publish.TargetGitHub)
	}

	session, err := s.sessionService.Load(ctx, scope.OwnerId)
	if err != nil {
		return nil, err
	}
	project := session.Find(scope.ProjectId)
	if project == nil || project.Repo == "" {
		return nil, publish.ErrNotPublished
	}

	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	if err := s.domains.AttachDomain(ctx, project.Repo, domain); err != nil {
		return nil, fmt.Errorf("%w: attach domain: %w", blockedit.ErrCollaborator, err)
	}

	// The next force push must carry the CNAME too.
	if err := publish.WriteCNAME(filepath.Join(s.siteRoot, scope.Folder()), domain); err != nil {
		return nil, fmt.Errorf("%w: %w", blockedit.ErrStorage, err)
	}

	siteURL := "https://" + domain
	err = s.sessionService.UpdateProject(ctx, scope.OwnerId, scope.ProjectId, func(p *entity.ProjectState) {
		p.Domain = domain
		p.SiteURL = siteURL
	})
	if err != nil {
		return nil, err
	}

	return &dto.AttachDomainResponse{Domain: domain, SiteURL: siteURL}, nil
}
