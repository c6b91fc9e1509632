// Package realtime serves the /ws endpoint: session rooms over gorilla
// websocket carrying the event envelope from package wire.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	appsvc "productivity-chatbot/internal/app"
	"productivity-chatbot/internal/pkg/logging"
	"productivity-chatbot/internal/wire"
)

const connectedMessage = "Connected to chatbot successfully!"

// Processor turns one inbound chat message into a reply.
type Processor interface {
	Chat(ctx context.Context, input appsvc.ChatInput) (*wire.ChatReply, error)
}

type Options struct {
	ReadLimit         int64
	PingInterval      time.Duration
	PongWait          time.Duration
	MessagesPerSecond float64
	Burst             int
	AllowedOrigins    []string
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 * 1024
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongWait {
		o.PingInterval = o.PongWait * 9 / 10
	}
	if o.MessagesPerSecond <= 0 {
		o.MessagesPerSecond = 5
	}
	if o.Burst <= 0 {
		o.Burst = 10
	}
	return o
}

// Hub tracks live connections and the session rooms they joined. Events for
// a room go to every member.
type Hub struct {
	processor Processor
	opts      Options
	upgrader  websocket.Upgrader
	origins   map[string]struct{}
	logger    zerolog.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

func NewHub(processor Processor, opts Options) *Hub {
	h := &Hub{
		processor: processor,
		opts:      opts.withDefaults(),
		origins:   make(map[string]struct{}, len(opts.AllowedOrigins)),
		logger:    logging.Component("realtime"),
		clients:   make(map[*Client]struct{}),
		rooms:     make(map[string]map[*Client]struct{}),
	}
	for _, o := range opts.AllowedOrigins {
		h.origins[o] = struct{}{}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// non-browser clients
		return true
	}
	_, ok := h.origins[origin]
	return ok
}

// Serve upgrades the request and runs the connection until it closes. The
// connection joins the room named by the session_id query parameter, or a
// fresh one when absent.
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
		limiter:   rate.NewLimiter(rate.Limit(h.opts.MessagesPerSecond), h.opts.Burst),
		logger:    h.logger.With().Str("session_id", sessionID).Logger(),
	}
	h.register(client)
	h.join(client, sessionID)
	h.sendTo(client, wire.EventConnected, wire.Connected{SessionID: sessionID, Message: connectedMessage})
	client.logger.Debug().Msg("client connected")

	go client.writePump()
	client.readPump(c.Request.Context())
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Emit sends an event to every connection in room.
func (h *Hub) Emit(room, event string, data interface{}) {
	payload, ok := h.encode(event, data)
	if !ok {
		return
	}
	var slow []*Client
	h.mu.RLock()
	for c := range h.rooms[room] {
		if !c.enqueue(payload) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range slow {
		c.logger.Warn().Msg("send buffer full, dropping connection")
		h.unregister(c)
	}
}

func (h *Hub) sendTo(c *Client, event string, data interface{}) {
	payload, ok := h.encode(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	_, live := h.clients[c]
	queued := live && c.enqueue(payload)
	h.mu.RUnlock()
	if live && !queued {
		h.unregister(c)
	}
}

func (h *Hub) encode(event string, data interface{}) ([]byte, bool) {
	env, err := wire.NewEnvelope(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("encode event failed")
		return nil, false
	}
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("encode envelope failed")
		return nil, false
	}
	return payload, true
}

// Count reports the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize reports how many connections joined room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		_ = c.conn.Close()
		h.unregister(c)
	}
}
