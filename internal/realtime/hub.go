package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

const moderatorPrefix = "mod:"

// ModeratorRoom is the room key of an event's moderator channel. It carries
// raw questions and unfiltered synthesis results that the public room must not see.
func ModeratorRoom(eventID string) string {
	return moderatorPrefix + eventID
}

// Hub maintains event_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling when configured.
type Hub struct {
	// eventID -> map[clientID]*Client
	events   map[string]map[string]*Client
	subs     map[string]func() // cancel Redis subscription per event
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishEvent(eventID string, event string, payload []byte) error
}

// RedisSubscriber subscribes to event channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeEvent(eventID string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. Nil Redis bridges keep delivery local.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		events:   make(map[string]map[string]*Client),
		subs:     make(map[string]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to its room. Starts the Redis subscription for the room if first client.
func (h *Hub) Register(c *Client) {
	room := c.room()
	h.mu.Lock()
	if h.events[room] == nil {
		h.events[room] = make(map[string]*Client)
		if h.redisSub != nil {
			eventID := room
			cancel, err := h.redisSub.SubscribeEvent(eventID, func(event string, payload []byte) {
				h.BroadcastToEvent(eventID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[eventID] = cancel
			} else {
				h.logger.Warn("redis subscribe failed", zap.String("event_id", eventID), zap.Error(err))
			}
		}
	}
	h.events[room][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined event", zap.String("client_id", c.ID), zap.String("room", room))
}

// Unregister removes a client from its room. Cancels the Redis subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	room := c.room()
	h.mu.Lock()
	if m, ok := h.events[room]; ok {
		if _, present := m[c.ID]; present {
			delete(m, c.ID)
			close(c.send)
		}
		if len(m) == 0 {
			delete(h.events, room)
			if cancel, ok := h.subs[room]; ok {
				cancel()
				delete(h.subs, room)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left event", zap.String("client_id", c.ID), zap.String("room", room))
}

// BroadcastToEvent sends a message to all clients in an event room (local only).
func (h *Hub) BroadcastToEvent(eventID string, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal realtime payload", zap.String("event", event), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.events[eventID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// PublishToEvent delivers an event once to every instance. With Redis, the
// subscriber callback performs the broadcast, including on this instance.
func (h *Hub) PublishToEvent(eventID string, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal realtime payload", zap.String("event", event), zap.Error(err))
		return
	}
	if h.redis != nil {
		if err := h.redis.PublishEvent(eventID, event, data); err != nil {
			h.logger.Warn("redis publish failed, broadcasting locally", zap.String("event_id", eventID), zap.Error(err))
			h.BroadcastToEvent(eventID, event, json.RawMessage(data))
		}
		return
	}
	h.BroadcastToEvent(eventID, event, json.RawMessage(data))
}

// PublishToModerators delivers an event to the event's moderator channel only.
func (h *Hub) PublishToModerators(eventID string, event string, payload interface{}) {
	h.PublishToEvent(ModeratorRoom(eventID), event, payload)
}

// AudienceCount returns the number of connected clients in an event room.
func (h *Hub) AudienceCount(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events[eventID])
}
