// Package channel is the client side of the realtime connection: one
// websocket per session driven by an explicit state machine.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"productivity-chatbot/internal/pkg/logging"
	"productivity-chatbot/internal/wire"
)

var (
	ErrNotConnected   = errors.New("not connected to server")
	ErrConnectTimeout = errors.New("connection attempt timed out")
)

const defaultConnectTimeout = 5 * time.Second

// Handler receives inbound events. Callbacks run on the read goroutine,
// except OnState which runs wherever the transition happened.
type Handler struct {
	OnConnected   func(wire.Connected)
	OnMessage     func(wire.ChatReply)
	OnTyping      func(bool)
	OnServerError func(string)
	OnState       func(Transition)
}

type Channel struct {
	endpoint       string
	connectTimeout time.Duration
	dialer         *websocket.Dialer
	logger         zerolog.Logger

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	handler Handler

	writeMu sync.Mutex
}

type Option func(*Channel)

func WithConnectTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.connectTimeout = d
		}
	}
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) {
		c.dialer = d
	}
}

// New builds a channel for serverURL (http, https, ws or wss) tagged with
// sessionID. Nothing is dialed until Connect.
func New(serverURL, sessionID string, opts ...Option) (*Channel, error) {
	endpoint, err := Endpoint(serverURL, sessionID)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		endpoint:       endpoint,
		connectTimeout: defaultConnectTimeout,
		dialer:         websocket.DefaultDialer,
		logger:         logging.Component("channel").With().Str("session_id", sessionID).Logger(),
		state:          Disconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint maps the server base URL onto its /ws endpoint.
func Endpoint(serverURL, sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return "", fmt.Errorf("parse server url failed: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("session_id", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Channel) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) Connected() bool {
	return c.State() == Connected
}

// fire applies event and reports the transition to the handler. The
// attach hook runs under the lock when the transition is accepted.
func (c *Channel) fire(event Event, attach func()) (Transition, bool) {
	c.mu.Lock()
	t, ok := Next(c.state, event)
	if ok {
		c.state = t.To
		if attach != nil {
			attach()
		}
	}
	onState := c.handler.OnState
	c.mu.Unlock()

	if !ok {
		return t, false
	}
	c.logger.Debug().Str("from", t.From.String()).Str("event", event.String()).Str("to", t.To.String()).Msg("state transition")
	if onState != nil {
		onState(t)
	}
	return t, true
}

// Connect dials the server unless a connection is already up or in
// progress. The attempt is bounded by the connect timeout.
func (c *Channel) Connect(ctx context.Context) error {
	if _, ok := c.fire(EventConnect, nil); !ok {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, c.endpoint, nil)
	if err != nil {
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			c.fire(EventTimeout, nil)
			c.logger.Warn().Err(err).Msg("connect timed out")
			return ErrConnectTimeout
		}
		c.fire(EventTransportError, nil)
		c.logger.Warn().Err(err).Msg("connect failed")
		return fmt.Errorf("dial %s failed: %w", c.endpoint, err)
	}

	if _, ok := c.fire(EventOpened, func() { c.conn = conn }); !ok {
		// Disconnect won the race
		_ = conn.Close()
		return nil
	}
	go c.readLoop(conn)
	return nil
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := c.conn == conn
			if current {
				c.conn = nil
			}
			c.mu.Unlock()
			_ = conn.Close()
			if !current {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.fire(EventClosed, nil)
				return
			}
			c.logger.Warn().Err(err).Msg("connection lost")
			c.fire(EventTransportError, nil)
			return
		}

		var env wire.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn().Err(err).Msg("drop malformed frame")
			continue
		}
		c.dispatch(env)
	}
}

func (c *Channel) dispatch(env wire.Envelope) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()

	switch env.Event {
	case wire.EventMessage:
		var reply wire.ChatReply
		if err := env.Decode(&reply); err != nil {
			c.logger.Warn().Err(err).Msg("drop malformed message event")
			return
		}
		if h.OnMessage != nil {
			h.OnMessage(reply)
		}
	case wire.EventTyping:
		var typing wire.Typing
		if err := env.Decode(&typing); err != nil {
			c.logger.Warn().Err(err).Msg("drop malformed typing event")
			return
		}
		if h.OnTyping != nil {
			h.OnTyping(typing.Typing)
		}
	case wire.EventError:
		var payload wire.ErrorPayload
		if err := env.Decode(&payload); err != nil {
			c.logger.Warn().Err(err).Msg("drop malformed error event")
			return
		}
		if h.OnServerError != nil {
			h.OnServerError(payload.Message)
		}
	case wire.EventConnected:
		var connected wire.Connected
		if err := env.Decode(&connected); err != nil {
			return
		}
		if h.OnConnected != nil {
			h.OnConnected(connected)
		}
	default:
		c.logger.Debug().Str("event", env.Event).Msg("ignore event")
	}
}

// Send transmits one user message. Nothing is queued: when the channel is
// not connected the message is rejected with ErrNotConnected.
func (c *Channel) Send(message, sessionID string, userID uint) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == Connected && conn != nil
	c.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	env, err := wire.NewEnvelope(wire.EventMessage, wire.ChatRequest{
		Message:   message,
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(env); err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	return nil
}

// Disconnect closes the connection on request; no notice is raised.
func (c *Channel) Disconnect() error {
	var conn *websocket.Conn
	c.fire(EventDisconnect, func() {
		conn = c.conn
		c.conn = nil
	})
	if conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return conn.Close()
}
