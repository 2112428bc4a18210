package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/clientes-service/internal/queue"
)

type Consumer interface {
	Consume() (<-chan amqp091.Delivery, error)
}

// Worker sends a welcome message for every customer_registered event. A
// failed send is requeued once; a failure on the redelivery is dropped.
type Worker struct {
	consumer   Consumer
	sender     Sender
	template   string
	retryDelay time.Duration
}

// NewWorker builds a worker. An empty template selects DefaultWelcomeTemplate.
func NewWorker(consumer Consumer, sender Sender, template string) *Worker {
	if template == "" {
		template = DefaultWelcomeTemplate
	}
	return &Worker{
		consumer:   consumer,
		sender:     sender,
		template:   template,
		retryDelay: time.Second,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.consumer.Consume()
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	log.Info().Msg("worker started, waiting for messages")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker shutting down")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("rabbitMQ channel closed")
			}
			w.processMessage(ctx, d)
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, d amqp091.Delivery) {
	var msg queue.CustomerRegisteredMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal message")
		d.Reject(false)
		return
	}

	if msg.Email == "" {
		log.Error().Int32("customer_id", msg.CustomerID).Msg("event has no email, dropping")
		d.Reject(false)
		return
	}

	log.Info().Int32("customer_id", msg.CustomerID).Msg("processing customer registered event")

	welcome := NewWelcomeMessage(w.template, msg)

	deliveryID, err := w.sender.SendWelcome(welcome)
	if err != nil {
		w.handleFailure(ctx, d, msg, err)
		return
	}

	log.Info().Int32("customer_id", msg.CustomerID).Str("to", welcome.To).Str("delivery_id", deliveryID).Msg("welcome message sent")
	d.Ack(false)
}

func (w *Worker) handleFailure(ctx context.Context, d amqp091.Delivery, msg queue.CustomerRegisteredMessage, sendErr error) {
	log.Warn().Err(sendErr).Int32("customer_id", msg.CustomerID).Msg("failed to send welcome message")

	if d.Redelivered {
		log.Warn().Int32("customer_id", msg.CustomerID).Msg("already retried, giving up")
		d.Ack(false)
		return
	}

	log.Info().Int32("customer_id", msg.CustomerID).Msg("requeueing for retry")
	// Avoid a tight loop against a failing provider
	select {
	case <-ctx.Done():
	case <-time.After(w.retryDelay):
	}
	d.Nack(false, true)
}
