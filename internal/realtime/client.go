package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // audience feed is public; CORS is enforced on the HTTP API
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection in an event room.
type Client struct {
	ID      string
	EventID string
	UserID  string
	// Moderator puts the client in the event's moderator room instead of the public one.
	Moderator bool
	JoinedAt time.Time
	hub      *Hub
	conn     *websocket.Conn
	send     chan WSMessage
	logger   *zap.Logger
}

func (c *Client) room() string {
	if c.Moderator {
		return ModeratorRoom(c.EventID)
	}
	return c.EventID
}

// ServeWs handles GET /ws?event_id=[&token=][&channel=moderator]. The public
// feed needs no token; the moderator channel needs one that canModerate accepts.
func ServeWs(hub *Hub, logger *zap.Logger, identify func(token string) (auth.Identity, error), canModerate func(id auth.Identity, eventID string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Query("event_id")
		if eventID == "" {
			response.BadRequest(c, "event_id required")
			return
		}
		if strings.HasPrefix(eventID, moderatorPrefix) {
			response.BadRequest(c, "invalid event_id")
			return
		}
		var id auth.Identity
		if token := c.Query("token"); token != "" && identify != nil {
			var err error
			if id, err = identify(token); err != nil {
				response.Unauthorized(c, "invalid token")
				return
			}
		}
		moderator := false
		switch c.Query("channel") {
		case "", "audience":
		case "moderator":
			if id.UserID == "" {
				response.Unauthorized(c, "token required")
				return
			}
			if canModerate == nil || !canModerate(id, eventID) {
				response.Forbidden(c, "moderator access required")
				return
			}
			moderator = true
		default:
			response.BadRequest(c, "invalid channel")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:        uuid.New().String(),
			EventID:   eventID,
			UserID:    id.UserID,
			Moderator: moderator,
			JoinedAt:  time.Now(),
			hub:       hub,
			conn:      conn,
			send:      make(chan WSMessage, 256),
			logger:    logger,
		}
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

// readPump only keeps the connection alive and answers join; the feed is server-to-client.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		if msg.Event == "join" && !c.Moderator {
			c.hub.PublishToEvent(c.EventID, "audience_count", map[string]int{
				"count": c.hub.AudienceCount(c.EventID),
			})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// AudienceCount handles GET /api/events/:event_id/audience_count.
func AudienceCount(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Param("event_id")
		response.OK(c, gin.H{"event_id": eventID, "count": hub.AudienceCount(eventID)})
	}
}
