package channel

import (
	"context"

	"github.com/rs/zerolog"

	"productivity-chatbot/internal/pkg/logging"
)

// Trigger is an outside signal that the connection may be worth retrying.
type Trigger string

const (
	TriggerForeground Trigger = "foreground"
	TriggerOnline     Trigger = "online"
)

type Connector interface {
	State() State
	Connect(ctx context.Context) error
}

// ReconnectPolicy reconnects on foreground or network regained, and only
// when the channel is down. It never retries on its own.
type ReconnectPolicy struct {
	conn   Connector
	logger zerolog.Logger
}

func NewReconnectPolicy(conn Connector) *ReconnectPolicy {
	return &ReconnectPolicy{conn: conn, logger: logging.Component("reconnect")}
}

// Handle reacts to one trigger and reports whether a connect was attempted.
func (p *ReconnectPolicy) Handle(ctx context.Context, trigger Trigger) (bool, error) {
	switch p.conn.State() {
	case Connected, Connecting:
		return false, nil
	}
	p.logger.Info().Str("trigger", string(trigger)).Msg("attempting reconnect")
	return true, p.conn.Connect(ctx)
}

// Run handles triggers until ctx ends or the trigger source closes.
// Failed attempts are logged; the channel already notified the user.
func (p *ReconnectPolicy) Run(ctx context.Context, triggers <-chan Trigger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case trigger, ok := <-triggers:
			if !ok {
				return nil
			}
			if _, err := p.Handle(ctx, trigger); err != nil {
				p.logger.Warn().Err(err).Str("trigger", string(trigger)).Msg("reconnect failed")
			}
		}
	}
}
