package service

import (
	"context"
	"encoding/json"

	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/pkg/logger"
	internalWS "ai-sitebuilder-be/internal/websocket"
	"ai-sitebuilder-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	activityDurable = "site-activity-feed"

	ActivitySiteAssembled = "site_assembled"
	ActivitySitePublished = "site_published"
)

// ActivityBroadcaster pushes to an owner's live feed. *websocket.Hub implements it.
type ActivityBroadcaster interface {
	Send(ownerId int64, activity internalWS.Activity)
}

// ActivityService relays assembled and published sites to the owner's open browsers.
// events may be nil, then only local assemblies are relayed.
type ActivityService struct {
	subscriber  Subscriber
	topicName   string
	events      EventSubscriber
	broadcaster ActivityBroadcaster
	logger      logger.ILogger
}

func NewActivityService(
	subscriber Subscriber,
	topicName string,
	events EventSubscriber,
	broadcaster ActivityBroadcaster,
	logger logger.ILogger,
) *ActivityService {
	return &ActivityService{
		subscriber:  subscriber,
		topicName:   topicName,
		events:      events,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *ActivityService) Start(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			s.relayAssembled(msg)
		}
	}()

	if s.events != nil {
		if err := s.events.Subscribe(ctx, events.SitePublished, activityDurable, s.relayPublished); err != nil {
			return err
		}
	}
	return nil
}

func (s *ActivityService) relayAssembled(msg *message.Message) {
	defer msg.Ack()

	var payload dto.SiteAssembledMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Warn("ACTIVITY", "Invalid assembled message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	s.broadcaster.Send(payload.OwnerId, internalWS.Activity{
		Type:      ActivitySiteAssembled,
		ProjectId: payload.ProjectId,
		Data: map[string]interface{}{
			"replaced": payload.Replaced,
			"total":    payload.Total,
		},
	})
}

func (s *ActivityService) relayPublished(_ context.Context, event events.Event) error {
	payload := event.Payload()
	ownerId, ok := ownerIdOf(payload["owner_id"])
	if !ok {
		s.logger.Warn("ACTIVITY", "Published event without owner", map[string]interface{}{"payload": payload})
		return nil
	}
	projectId, _ := payload["project_id"].(string)

	s.broadcaster.Send(ownerId, internalWS.Activity{
		Type:       ActivitySitePublished,
		ProjectId:  projectId,
		OccurredAt: event.Timestamp(),
		Data: map[string]interface{}{
			"target": payload["target"],
			"url":    payload["url"],
		},
	})
	return nil
}

// ownerIdOf accepts the numeric shapes an owner id takes after a JSON round trip.
func ownerIdOf(v interface{}) (int64, bool) {
	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	case float64:
		return int64(id), id == float64(int64(id))
	default:
		return 0, false
	}
}
