// Package restchat posts chat messages over HTTP for clients running
// without the realtime channel.
package restchat

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"productivity-chatbot/internal/wire"
)

// ServerError carries the message of an {"error": ...} response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("chat request failed (HTTP %d): %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	client *resty.Client
}

func New(baseURL string) *Client {
	return NewWithClient(resty.New().SetBaseURL(baseURL))
}

func NewWithClient(client *resty.Client) *Client {
	return &Client{client: client}
}

// Chat sends one message through POST /api/chat.
func (c *Client) Chat(ctx context.Context, req wire.ChatRequest) (*wire.ChatReply, error) {
	var reply wire.ChatReply
	var failure errorBody
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&reply).
		SetError(&failure).
		Post("/api/chat")
	if err != nil {
		return nil, fmt.Errorf("post chat failed: %w", err)
	}
	if resp.IsError() || !resp.IsSuccess() {
		msg := failure.Error
		if msg == "" {
			msg = resp.Status()
		}
		return nil, &ServerError{Status: resp.StatusCode(), Message: msg}
	}
	return &reply, nil
}

// Message returns the text to show for err: the server's own message when
// there is one.
func Message(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	return err.Error()
}
