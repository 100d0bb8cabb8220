package service

import (
	"context"
	"encoding/json"
	"errors"

	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/pkg/preview"

	"github.com/ThreeDotsLabs/watermill/message"
)

// PageRenderer screenshots a local HTML file. *preview.Renderer implements it.
type PageRenderer interface {
	Render(ctx context.Context, htmlPath string) ([]preview.Shot, error)
}

// Subscriber is the watermill side the consumer reads from.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type previewConsumerService struct {
	subscriber Subscriber
	topicName  string
	renderer   PageRenderer
	logger     logger.ILogger
}

func NewPreviewConsumerService(
	subscriber Subscriber,
	topicName string,
	renderer PageRenderer,
	logger logger.ILogger,
) IConsumerService {
	return &previewConsumerService{
		subscriber: subscriber,
		topicName:  topicName,
		renderer:   renderer,
		logger:     logger,
	}
}

func (cs *previewConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. Screenshots are best effort.
func (cs *previewConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.SiteAssembledMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Path == "" {
		cs.logger.Error("PREVIEW", "Invalid assembled message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      errString(err),
		})
		return
	}

	shots, err := cs.renderer.Render(ctx, payload.Path)
	if errors.Is(err, preview.ErrBrowserMissing) {
		cs.logger.Warn("PREVIEW", "Skipping preview, no browser installed", map[string]interface{}{
			"path": payload.Path,
		})
		return
	}
	if err != nil {
		cs.logger.Error("PREVIEW", "Failed to render preview", map[string]interface{}{
			"path":  payload.Path,
			"error": err.Error(),
		})
		return
	}

	cs.logger.Info("PREVIEW", "Preview rendered", map[string]interface{}{
		"owner_id":   payload.OwnerId,
		"project_id": payload.ProjectId,
		"shots":      shots,
	})
}

func errString(err error) string {
	if err == nil {
		return "empty path"
	}
	return err.Error()
}
