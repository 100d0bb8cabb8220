package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ai-sitebuilder-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "site_activity"

// Activity is one entry of an owner's live feed.
type Activity struct {
	Type       string                 `json:"type"`
	ProjectId  string                 `json:"project_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	OwnerId int64           `json:"owner_id"`
	Message json.RawMessage `json:"message"`
}

type Hub struct {
	// Registered clients: OwnerId -> connections (multi-tab)
	clients map[int64][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis fan-out to other instances, nil on a single instance
	rdb    redis.UniversalClient
	origin string

	logger logger.ILogger
}

func NewHub(rdb redis.UniversalClient, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64][]*Client),
		rdb:        rdb,
		origin:     uuid.NewString(),
		logger:     log,
	}
}

// Run owns client registration until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OwnerId] = append(h.clients[client.OwnerId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"owner_id": client.OwnerId})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.OwnerId]
			for i, c := range clients {
				if c == client {
					h.clients[client.OwnerId] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.OwnerId]) == 0 {
				delete(h.clients, client.OwnerId)
				h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"owner_id": client.OwnerId})
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers an activity to the owner's connections here and on every other instance.
func (h *Hub) Send(ownerId int64, activity Activity) {
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(activity)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode activity", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(ownerId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.origin, OwnerId: ownerId, Message: data})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to fan out activity", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Connected reports how many local connections the owner has.
func (h *Hub) Connected(ownerId int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerId])
}

// deliver never blocks; a client with a full buffer misses the message.
func (h *Hub) deliver(ownerId int64, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[ownerId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"owner_id": ownerId})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.origin {
			continue
		}
		h.deliver(payload.OwnerId, payload.Message)
	}
}
