package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"jobmatch-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Message is the frame pushed to connected clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterEnvelope struct {
	TargetUserId string          `json:"target_user_id"`
	Origin       string          `json:"origin"`
	Message      json.RawMessage `json:"message"`
}

// Hub keeps the open status streams of this replica, keyed by user. When a
// Redis client is configured every Send is also relayed to the other replicas
// over a pub/sub channel, so a user connected elsewhere still gets the update.
type Hub struct {
	clients    map[uuid.UUID][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	rdb     *redis.Client
	channel string
	origin  string
	logger  logger.ILogger
}

func NewHub(rdb *redis.Client, channel string, log logger.ILogger) *Hub {
	if channel == "" {
		channel = "matching_status_events"
	}
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		channel:    channel,
		origin:     uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserId] = append(h.clients[client.UserId], client)
			h.mu.Unlock()
			h.logger.Debug("HUB", "Client registered", map[string]interface{}{"user_id": client.UserId.String()})
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Send delivers data to every local connection of userId and relays it to
// the other replicas.
func (h *Hub) Send(userId uuid.UUID, messageType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		h.logger.Warn("HUB", "Failed to encode message", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(userId, payload)

	if h.rdb != nil {
		envelope, _ := json.Marshal(clusterEnvelope{
			TargetUserId: userId.String(),
			Origin:       h.origin,
			Message:      payload,
		})
		if err := h.rdb.Publish(context.Background(), h.channel, envelope).Err(); err != nil {
			h.logger.Warn("HUB", "Failed to relay message", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ConnectedUsers reports how many distinct users have an open stream here.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliverLocal(userId uuid.UUID, payload []byte) {
	// The read lock keeps remove from closing a channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userId] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("HUB", "Send buffer full, dropping client", map[string]interface{}{"user_id": userId.String()})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.UserId]
	for i, c := range clients {
		if c == client {
			h.clients[client.UserId] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserId]) == 0 {
		delete(h.clients, client.UserId)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userId, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, userId)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var envelope clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				h.logger.Warn("HUB", "Malformed relay message", map[string]interface{}{"error": err.Error()})
				continue
			}
			if envelope.Origin == h.origin {
				continue
			}
			userId, err := uuid.Parse(envelope.TargetUserId)
			if err != nil {
				continue
			}
			h.deliverLocal(userId, envelope.Message)
		}
	}
}
