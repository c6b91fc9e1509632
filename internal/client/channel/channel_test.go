package channel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productivity-chatbot/internal/wire"
)

type fakeServer struct {
	*httptest.Server
	conns    chan *websocket.Conn
	sessions chan string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{conns: make(chan *websocket.Conn, 4), sessions: make(chan string, 4)}
	upgrader := websocket.Upgrader{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.sessions <- r.URL.Query().Get("session_id")
		fs.conns <- conn
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-fs.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

func push(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	env, err := wire.NewEnvelope(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(env))
}

type recorder struct {
	transitions chan Transition
	messages    chan wire.ChatReply
	typing      chan bool
	errors      chan string
}

func newRecorder() *recorder {
	return &recorder{
		transitions: make(chan Transition, 16),
		messages:    make(chan wire.ChatReply, 4),
		typing:      make(chan bool, 4),
		errors:      make(chan string, 4),
	}
}

func (r *recorder) handler() Handler {
	return Handler{
		OnMessage:     func(m wire.ChatReply) { r.messages <- m },
		OnTyping:      func(v bool) { r.typing <- v },
		OnServerError: func(s string) { r.errors <- s },
		OnState:       func(tr Transition) { r.transitions <- tr },
	}
}

func (r *recorder) nextTransition(t *testing.T) Transition {
	t.Helper()
	select {
	case tr := <-r.transitions:
		return tr
	case <-time.After(2 * time.Second):
		t.Fatal("no transition")
		return Transition{}
	}
}

func TestEndpoint(t *testing.T) {
	got, err := Endpoint("http://localhost:5000/", "s 1")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:5000/ws?session_id=s+1", got)

	got, err = Endpoint("https://chat.example/base", "abc")
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example/base/ws?session_id=abc", got)

	_, err = Endpoint("ftp://x", "abc")
	require.Error(t, err)
}

func TestSendWhileDisconnectedIsRejected(t *testing.T) {
	ch, err := New("http://127.0.0.1:1", "s1")
	require.NoError(t, err)
	assert.ErrorIs(t, ch.Send("hello", "s1", 1), ErrNotConnected)
	assert.Equal(t, Disconnected, ch.State())
}

func TestConnectSendAndReceive(t *testing.T) {
	fs := newFakeServer(t)
	rec := newRecorder()
	ch, err := New(fs.URL, "sess-42")
	require.NoError(t, err)
	ch.SetHandler(rec.handler())

	require.NoError(t, ch.Connect(context.Background()))
	server := fs.accept(t)
	assert.Equal(t, "sess-42", <-fs.sessions)
	assert.True(t, ch.Connected())

	tr := rec.nextTransition(t)
	assert.Equal(t, Connecting, tr.To)
	tr = rec.nextTransition(t)
	assert.Equal(t, Connected, tr.To)
	assert.True(t, tr.Has(EffectNotify))

	require.NoError(t, ch.Send("hello", "sess-42", 7))
	var env wire.Envelope
	require.NoError(t, server.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, server.ReadJSON(&env))
	assert.Equal(t, wire.EventMessage, env.Event)
	var req wire.ChatRequest
	require.NoError(t, env.Decode(&req))
	assert.Equal(t, wire.ChatRequest{Message: "hello", SessionID: "sess-42", UserID: 7}, req)

	push(t, server, wire.EventTyping, wire.Typing{Typing: true})
	assert.True(t, <-rec.typing)
	push(t, server, wire.EventMessage, wire.ChatReply{BotResponse: "hi!", Intent: "greeting"})
	assert.Equal(t, "hi!", (<-rec.messages).BotResponse)
	push(t, server, wire.EventError, wire.ErrorPayload{Message: "Message cannot be empty"})
	assert.Equal(t, "Message cannot be empty", <-rec.errors)

	// a second Connect while connected is a no-op
	require.NoError(t, ch.Connect(context.Background()))
	assert.Equal(t, Connected, ch.State())
}

func TestServerCloseMovesToDisconnected(t *testing.T) {
	fs := newFakeServer(t)
	rec := newRecorder()
	ch, err := New(fs.URL, "s1")
	require.NoError(t, err)
	ch.SetHandler(rec.handler())
	require.NoError(t, ch.Connect(context.Background()))
	server := fs.accept(t)
	rec.nextTransition(t)
	rec.nextTransition(t)

	require.NoError(t, server.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))

	tr := rec.nextTransition(t)
	assert.Equal(t, Disconnected, tr.To)
	assert.Equal(t, "Disconnected from server", tr.Notice)
	assert.ErrorIs(t, ch.Send("x", "s1", 1), ErrNotConnected)
}

func TestAbruptDropMovesToError(t *testing.T) {
	fs := newFakeServer(t)
	rec := newRecorder()
	ch, err := New(fs.URL, "s1")
	require.NoError(t, err)
	ch.SetHandler(rec.handler())
	require.NoError(t, ch.Connect(context.Background()))
	server := fs.accept(t)
	rec.nextTransition(t)
	rec.nextTransition(t)

	require.NoError(t, server.UnderlyingConn().Close())
	tr := rec.nextTransition(t)
	assert.Equal(t, Errored, tr.To)
	assert.True(t, tr.Has(EffectNotify))
}

func TestConnectTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		// accept and never answer the handshake
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	rec := newRecorder()
	ch, err := New("http://"+ln.Addr().String(), "s1", WithConnectTimeout(100*time.Millisecond))
	require.NoError(t, err)
	ch.SetHandler(rec.handler())

	err = ch.Connect(context.Background())
	require.ErrorIs(t, err, ErrConnectTimeout)
	assert.Equal(t, Errored, ch.State())
	rec.nextTransition(t)
	tr := rec.nextTransition(t)
	assert.Equal(t, EventTimeout, tr.Event)
	assert.Equal(t, "Connection timed out", tr.Notice)
}

func TestConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ch, err := New("http://"+addr, "s1")
	require.NoError(t, err)
	err = ch.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConnectTimeout))
	assert.Equal(t, Errored, ch.State())
}

func TestDisconnectIsQuiet(t *testing.T) {
	fs := newFakeServer(t)
	rec := newRecorder()
	ch, err := New(fs.URL, "s1")
	require.NoError(t, err)
	ch.SetHandler(rec.handler())
	require.NoError(t, ch.Connect(context.Background()))
	fs.accept(t)
	rec.nextTransition(t)
	rec.nextTransition(t)

	require.NoError(t, ch.Disconnect())
	tr := rec.nextTransition(t)
	assert.Equal(t, Disconnected, tr.To)
	assert.False(t, tr.Has(EffectNotify))

	select {
	case extra := <-rec.transitions:
		t.Fatalf("unexpected transition %v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}
