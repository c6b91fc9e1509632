package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"productivity-chatbot/internal/model"
	"productivity-chatbot/internal/pkg/logging"
)

// MessageStore is the persistence side of the worker.
type MessageStore interface {
	Create(message *model.Message) error
}

// MessagePersistWorker drains the persist queue into the message table. One
// consumer keeps the user/bot pair of an exchange in publish order.
type MessagePersistWorker struct {
	conn      *amqp.Connection
	store     MessageStore
	queueName string
	logger    zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMessagePersistWorker(conn *amqp.Connection, store MessageStore, queueName string) *MessagePersistWorker {
	return &MessagePersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		logger:    logging.Component("message_worker"),
	}
}

func (w *MessagePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.logger.Warn().Msg("delivery channel closed")
					return
				}
				if err := w.Handle(d.Body); err != nil {
					w.logger.Error().Err(err).Str("queue", w.queueName).Msg("drop message")
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info().Str("queue", w.queueName).Msg("message worker started")
	return nil
}

// Handle decodes one queued message and stores it.
func (w *MessagePersistWorker) Handle(body []byte) error {
	var msg model.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode queued message failed: %w", err)
	}
	if msg.ConversationID == 0 || msg.Sender == "" {
		return fmt.Errorf("queued message is incomplete")
	}
	return w.store.Create(&msg)
}

func (w *MessagePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
