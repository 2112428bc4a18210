package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const CustomerRegisteredQueue = "customer_registered"

type RabbitMQ struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   amqp091.Queue
}

type CustomerRegisteredMessage struct {
	CustomerID int32  `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// NewRabbitMQ dials the broker, retrying up to attempts times with a 2 second
// delay, and declares the customer_registered queue
func NewRabbitMQ(url string, attempts int) (*RabbitMQ, error) {
	if attempts < 1 {
		attempts = 1
	}

	var conn *amqp091.Connection
	var err error

	for i := 0; i < attempts; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			break
		}
		if i < attempts-1 {
			log.Warn().Err(err).Msgf("failed to connect to RabbitMQ, retrying in 2s (%d/%d)", i+1, attempts)
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to connect to RabbitMQ after retries")
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		log.Error().Err(err).Msg("failed to open channel")
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		CustomerRegisteredQueue, // name
		true,                    // durable
		false,                   // delete when unused
		false,                   // exclusive
		false,                   // no-wait
		nil,                     // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		log.Error().Err(err).Msg("failed to declare queue")
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	log.Info().Str("queue", queue.Name).Msg("connected to RabbitMQ and declared queue")

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

// PublishCustomerRegistered publishes a registration event to the customer_registered queue
func (r *RabbitMQ) PublishCustomerRegistered(customerID int32, name, email string) error {
	body, err := EncodeCustomerRegistered(customerID, name, email)
	if err != nil {
		return err
	}

	err = r.channel.Publish(
		"",           // exchange
		r.queue.Name, // routing key (queue name)
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		log.Error().Err(err).Int32("customer_id", customerID).Msg("failed to publish message")
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Int32("customer_id", customerID).Msg("published customer registered event")
	return nil
}

func EncodeCustomerRegistered(customerID int32, name, email string) ([]byte, error) {
	body, err := json.Marshal(CustomerRegisteredMessage{
		CustomerID: customerID,
		Name:       name,
		Email:      email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return body, nil
}

// Consume returns a channel of deliveries for the customer_registered queue
func (r *RabbitMQ) Consume() (<-chan amqp091.Delivery, error) {
	msgs, err := r.channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack (we will manual ack)
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}
	return msgs, nil
}

// Ping checks if the RabbitMQ connection and channel are open
func (r *RabbitMQ) Ping() error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("connection is closed")
	}
	if r.channel == nil || r.channel.IsClosed() {
		return fmt.Errorf("channel is closed")
	}
	return nil
}

// Close closes the RabbitMQ connection and channel
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close channel")
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close connection")
			return err
		}
	}
	log.Info().Msg("closed RabbitMQ connection")
	return nil
}
