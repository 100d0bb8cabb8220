package service

import (
	"context"
	"fmt"

	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/pkg/mailer"
	"ai-sitebuilder-be/pkg/events"
	pktNats "ai-sitebuilder-be/pkg/nats"
)

const notificationDurable = "site-notification-worker"

// EventSubscriber registers durable handlers on the external bus. *nats.Subscriber implements it.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType string, durableName string, handler pktNats.EventHandler) error
}

// NotificationService mails the site owner when a SITE_PUBLISHED event arrives.
type NotificationService struct {
	subscriber   EventSubscriber
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotificationService(sub EventSubscriber, emailService mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber:   sub,
		emailService: emailService,
		logger:       log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, events.SitePublished, notificationDurable, s.handleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NotificationService", "Notification service started", map[string]interface{}{"event": events.SitePublished})
	return nil
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	email, _ := payload["notify_email"].(string)
	url, _ := payload["url"].(string)
	projectId, _ := payload["project_id"].(string)

	if email == "" {
		return nil
	}
	if url == "" {
		s.logger.Warn("NotificationService", "Published event without url", map[string]interface{}{"project_id": projectId})
		return nil
	}
	if s.emailService == nil {
		s.logger.Warn("NotificationService", "Mail is not configured, dropping notification", map[string]interface{}{"project_id": projectId})
		return nil
	}

	if err := s.emailService.SendSitePublished(email, projectId, url); err != nil {
		return fmt.Errorf("notify %s: %w", email, err)
	}

	s.logger.Info("NotificationService", "Publish notification sent", map[string]interface{}{
		"project_id": projectId,
		"url":        url,
	})
	return nil
}
