package restchat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productivity-chatbot/internal/wire"
)

func TestChatPostsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req wire.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "s1", req.SessionID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(wire.ChatReply{
			SessionID:   req.SessionID,
			UserMessage: req.Message,
			BotResponse: "Hello!",
			Intent:      "greeting",
			Confidence:  0.2,
		})
	}))
	defer srv.Close()

	reply, err := New(srv.URL).Chat(context.Background(), wire.ChatRequest{Message: "hi", SessionID: "s1", UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply.BotResponse)
	assert.Equal(t, "greeting", reply.Intent)
}

func TestChatSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Message cannot be empty"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Chat(context.Background(), wire.ChatRequest{Message: " "})
	require.Error(t, err)
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadRequest, serverErr.Status)
	assert.Equal(t, "Message cannot be empty", Message(err))
}
