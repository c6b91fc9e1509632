// Package widget is the chat client controller. It owns the application
// state and wires the realtime channel, renderer, history store and
// analytics fetcher to an injected View.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"productivity-chatbot/internal/client/analytics"
	"productivity-chatbot/internal/client/channel"
	"productivity-chatbot/internal/client/history"
	"productivity-chatbot/internal/client/renderer"
	"productivity-chatbot/internal/client/restchat"
	"productivity-chatbot/internal/client/session"
	"productivity-chatbot/internal/pkg/logging"
	"productivity-chatbot/internal/wire"
)

const (
	NoticeEmptyMessage = "Please enter a message"
	NoticeNotConnected = "Not connected to server"
	NoticeCleared      = "Chat history cleared"
)

var ErrEmptyMessage = errors.New("message is empty")

// View is everything the controller draws on.
type View interface {
	renderer.Display
	SetStatus(state channel.State)
	SetTyping(typing bool)
	Notify(severity channel.Severity, text string)
	ShowAnalytics(panel analytics.Panel)
}

// Transport is the realtime side, satisfied by *channel.Channel.
type Transport interface {
	Connect(ctx context.Context) error
	Send(message, sessionID string, userID uint) error
	State() channel.State
	Disconnect() error
}

type AnalyticsSource interface {
	Fetch(ctx context.Context, userID uint) (*analytics.Report, error)
}

// Poster sends a message over plain HTTP.
type Poster interface {
	Chat(ctx context.Context, req wire.ChatRequest) (*wire.ChatReply, error)
}

// State is the whole of the client's mutable state.
type State struct {
	Session    session.Session
	Connection channel.State
	Typing     bool
	Messages   []history.Message
}

type Config struct {
	Session   session.Session
	View      View
	Transport Transport
	Store     *history.Store
	Analytics AnalyticsSource
	// Poster is used instead of Transport when HTTPOnly is set.
	Poster   Poster
	HTTPOnly bool
}

type Widget struct {
	view      View
	transport Transport
	renderer  *renderer.Renderer
	analytics AnalyticsSource
	poster    Poster
	httpOnly  bool
	logger    zerolog.Logger

	mu    sync.Mutex
	state State
}

func New(cfg Config) *Widget {
	w := &Widget{
		view:      cfg.View,
		transport: cfg.Transport,
		renderer:  renderer.New(cfg.View, cfg.Store, cfg.Session.ID),
		analytics: cfg.Analytics,
		poster:    cfg.Poster,
		httpOnly:  cfg.HTTPOnly,
		logger:    logging.Component("widget").With().Str("session_id", cfg.Session.ID).Logger(),
		state: State{
			Session:    cfg.Session,
			Connection: channel.Disconnected,
		},
	}
	return w
}

// Handler routes channel events into the controller.
func (w *Widget) Handler() channel.Handler {
	return channel.Handler{
		OnMessage:     w.OnMessage,
		OnTyping:      w.OnTyping,
		OnServerError: w.OnServerError,
		OnState:       w.OnStateChange,
	}
}

// Start restores saved history and, unless running HTTP only, connects.
// A failed connect is not an error: the channel already notified the view.
func (w *Widget) Start(ctx context.Context) {
	if n := w.renderer.Restore(ctx); n > 0 {
		w.logger.Debug().Int("messages", n).Msg("history restored")
	}
	if w.httpOnly || w.transport == nil {
		w.view.SetStatus(w.Snapshot().Connection)
		return
	}
	w.view.SetStatus(w.transport.State())
	if err := w.transport.Connect(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("initial connect failed")
	}
}

// Reconnect is the manual retry behind the reconnect command.
func (w *Widget) Reconnect(ctx context.Context) {
	if w.httpOnly || w.transport == nil {
		return
	}
	if err := w.transport.Connect(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("reconnect failed")
	}
}

// Send validates input, renders the user bubble and transmits it. Empty
// input and a missing connection are rejected before anything is sent.
func (w *Widget) Send(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)
	if text == "" {
		w.view.Notify(channel.SeverityWarning, NoticeEmptyMessage)
		return ErrEmptyMessage
	}
	sess := w.Snapshot().Session

	if w.httpOnly {
		return w.sendHTTP(ctx, sess, text)
	}
	if w.transport == nil || w.transport.State() != channel.Connected {
		w.view.Notify(channel.SeverityError, NoticeNotConnected)
		return channel.ErrNotConnected
	}

	bubble := w.renderer.Render(ctx, text, history.SenderUser, nil)
	if err := w.transport.Send(text, sess.ID, sess.UserID); err != nil {
		// the channel can drop between the state check and the write
		w.renderer.Remove(ctx, bubble)
		if errors.Is(err, channel.ErrNotConnected) {
			w.view.Notify(channel.SeverityError, NoticeNotConnected)
		} else {
			w.view.Notify(channel.SeverityError, "Failed to send message")
		}
		return err
	}
	return nil
}

func (w *Widget) sendHTTP(ctx context.Context, sess session.Session, text string) error {
	if w.poster == nil {
		w.view.Notify(channel.SeverityError, NoticeNotConnected)
		return channel.ErrNotConnected
	}
	w.renderer.Render(ctx, text, history.SenderUser, nil)
	w.OnTyping(true)
	reply, err := w.poster.Chat(ctx, wire.ChatRequest{Message: text, SessionID: sess.ID, UserID: sess.UserID})
	w.OnTyping(false)
	if err != nil {
		w.view.Notify(channel.SeverityError, restchat.Message(err))
		return err
	}
	w.OnMessage(*reply)
	return nil
}

// OnMessage renders a bot reply with its classification.
func (w *Widget) OnMessage(reply wire.ChatReply) {
	w.OnTyping(false)
	w.renderer.Render(context.Background(), reply.BotResponse, history.SenderBot, history.MetadataFromReply(reply))
}

func (w *Widget) OnTyping(typing bool) {
	w.mu.Lock()
	changed := w.state.Typing != typing
	w.state.Typing = typing
	w.mu.Unlock()
	if changed {
		w.view.SetTyping(typing)
	}
}

// OnServerError shows the server's text unchanged.
func (w *Widget) OnServerError(text string) {
	w.OnTyping(false)
	w.view.Notify(channel.SeverityError, text)
}

// OnStateChange applies the side effects of a channel transition.
func (w *Widget) OnStateChange(t channel.Transition) {
	w.mu.Lock()
	w.state.Connection = t.To
	w.mu.Unlock()

	if t.Has(channel.EffectRenderStatus) {
		w.view.SetStatus(t.To)
	}
	if t.Has(channel.EffectNotify) && t.Notice != "" {
		w.view.Notify(t.Severity, t.Notice)
	}
	if t.To != channel.Connected {
		w.OnTyping(false)
	}
}

func (w *Widget) ClearHistory(ctx context.Context) {
	w.renderer.Clear(ctx)
	w.view.Notify(channel.SeverityInfo, NoticeCleared)
}

// ShowAnalytics fetches the summary and renders it, or the inline error.
func (w *Widget) ShowAnalytics(ctx context.Context) analytics.Panel {
	var panel analytics.Panel
	if w.analytics == nil {
		panel = analytics.NewPanel(nil, errors.New("analytics unavailable"))
	} else {
		report, err := w.analytics.Fetch(ctx, w.Snapshot().Session.UserID)
		if err != nil {
			w.logger.Warn().Err(err).Msg("fetch analytics failed")
		}
		panel = analytics.NewPanel(report, err)
	}
	w.view.ShowAnalytics(panel)
	return panel
}

// Snapshot returns a copy of the current state.
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	s := w.state
	w.mu.Unlock()
	s.Messages = w.renderer.Messages()
	return s
}

func (w *Widget) Close() error {
	if w.transport == nil {
		return nil
	}
	return w.transport.Disconnect()
}
