package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// clusterEvent is the envelope published to Redis. Origin identifies the
// publishing hub so it can skip its own events on the way back in.
type clusterEvent struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub fans activity events out to a user's connected clients. One user
// may hold several connections (multi-device); Redis carries events to
// clients connected on other instances.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, may be nil
	rdb *redis.Client

	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						// Sole close of Send. Senders that give up on a
						// client only enqueue it here, so a client
						// unregistered twice is closed once.
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendActivity delivers an activity event to every connection the user
// holds, locally and through Redis for other instances.
func (h *Hub) SendActivity(userID uuid.UUID, event dto.ActivityEvent) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "activity",
		"data": event,
	})

	h.deliverLocal(userID, data)

	// Always publish: the same user may be connected elsewhere.
	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEvent{
			Origin:       h.instanceId,
			TargetUserID: userID.String(),
			Message:      data,
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

// deliverLocal pushes a message to the user's local connections. A
// client with a full buffer is handed to the unregister path, which
// owns closing its channel.
func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[userID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleClusterEvent([]byte(msg.Payload))
	}
}

// handleClusterEvent delivers a Redis-carried event to local clients.
// Events this hub published are skipped, they were already delivered.
func (h *Hub) handleClusterEvent(raw []byte) {
	var event clusterEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.logger.Warn("Hub", "Malformed cluster event", map[string]interface{}{"error": err.Error()})
		return
	}
	if event.Origin == h.instanceId {
		return
	}

	uid, err := uuid.Parse(event.TargetUserID)
	if err != nil {
		return
	}

	h.deliverLocal(uid, event.Message)
}
