package worker

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/clientes-service/internal/queue"
)

// WelcomeMessage is a rendered welcome notification ready for delivery.
type WelcomeMessage struct {
	CustomerID int32
	To         string
	Body       string
}

// NewWelcomeMessage renders template for the customer in event and addresses
// the result to the registered email.
func NewWelcomeMessage(template string, event queue.CustomerRegisteredMessage) WelcomeMessage {
	return WelcomeMessage{
		CustomerID: event.CustomerID,
		To:         event.Email,
		Body:       RenderWelcome(template, event),
	}
}

type Sender interface {
	SendWelcome(msg WelcomeMessage) (string, error)
}

// MockSender stands in for an email provider. Deliveries succeed with
// probability successRate after a random latency up to maxLatency.
type MockSender struct {
	successRate float64
	maxLatency  time.Duration
}

func NewMockSender(successRate float64) *MockSender {
	return &MockSender{
		successRate: successRate,
		maxLatency:  500 * time.Millisecond,
	}
}

// SendWelcome returns the provider's delivery id on success
func (s *MockSender) SendWelcome(msg WelcomeMessage) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("welcome message for customer %d has no recipient", msg.CustomerID)
	}

	if s.maxLatency > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(s.maxLatency))))
	}

	if rand.Float64() >= s.successRate {
		return "", fmt.Errorf("mock provider error: failed to deliver welcome message to %s", msg.To)
	}

	deliveryID := "welcome-" + uuid.New().String()
	log.Debug().
		Int32("customer_id", msg.CustomerID).
		Str("to", msg.To).
		Int("body_length", len(msg.Body)).
		Str("delivery_id", deliveryID).
		Msg("welcome message accepted by provider")

	return deliveryID, nil
}
