package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	appsvc "productivity-chatbot/internal/app"
	"productivity-chatbot/internal/wire"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

const (
	msgEmpty       = "Message cannot be empty"
	msgBadFrame    = "Invalid message format"
	msgRateLimited = "Too many messages, slow down"
	msgFailed      = "Failed to process message"
)

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

// enqueue must be called with the hub lock held.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
		c.logger.Debug().Msg("client disconnected")
	}()

	pongWait := c.hub.opts.PongWait
	c.conn.SetReadLimit(c.hub.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}

		var env wire.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.hub.sendTo(c, wire.EventError, wire.ErrorPayload{Message: msgBadFrame})
			continue
		}
		if !c.limiter.Allow() {
			c.hub.sendTo(c, wire.EventError, wire.ErrorPayload{Message: msgRateLimited})
			continue
		}
		c.dispatch(ctx, env)
	}
}

func (c *Client) dispatch(ctx context.Context, env wire.Envelope) {
	switch env.Event {
	case wire.EventMessage:
		c.handleMessage(ctx, env)
	case wire.EventJoinRoom:
		var room wire.Room
		if err := env.Decode(&room); err != nil || room.SessionID == "" {
			return
		}
		c.hub.join(c, room.SessionID)
		c.hub.sendTo(c, wire.EventJoined, room)
	case wire.EventLeaveRoom:
		var room wire.Room
		if err := env.Decode(&room); err != nil || room.SessionID == "" {
			return
		}
		c.hub.leave(c, room.SessionID)
		c.hub.sendTo(c, wire.EventLeft, room)
	default:
		c.logger.Debug().Str("event", env.Event).Msg("ignore unknown event")
	}
}

func (c *Client) handleMessage(ctx context.Context, env wire.Envelope) {
	var req wire.ChatRequest
	if len(env.Data) > 0 {
		if err := env.Decode(&req); err != nil {
			c.hub.sendTo(c, wire.EventError, wire.ErrorPayload{Message: msgBadFrame})
			return
		}
	}
	if strings.TrimSpace(req.Message) == "" {
		c.hub.sendTo(c, wire.EventError, wire.ErrorPayload{Message: msgEmpty})
		return
	}
	room := req.SessionID
	if room == "" {
		room = c.sessionID
	}

	c.hub.Emit(room, wire.EventTyping, wire.Typing{Typing: true})
	reply, err := c.hub.processor.Chat(ctx, appsvc.ChatInput{
		Message:   req.Message,
		SessionID: room,
		UserID:    req.UserID,
	})
	c.hub.Emit(room, wire.EventTyping, wire.Typing{Typing: false})
	if err != nil {
		c.logger.Error().Err(err).Msg("process message failed")
		text := msgFailed
		if errors.Is(err, appsvc.ErrMessageEmpty) {
			text = msgEmpty
		}
		c.hub.sendTo(c, wire.EventError, wire.ErrorPayload{Message: text})
		return
	}
	c.hub.Emit(room, wire.EventMessage, reply)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Warn().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
