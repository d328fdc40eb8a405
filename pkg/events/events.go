package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/krishisetu/krishisetu/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NopEventBus is used when NATS is not configured (tests, local dev).
type NopEventBus struct{}

func (NopEventBus) Publish(context.Context, string, interface{}) error          { return nil }
func (NopEventBus) Subscribe(string, func(msg *Message)) error                  { return nil }
func (NopEventBus) QueueSubscribe(string, string, func(msg *Message)) error     { return nil }
func (NopEventBus) Close() error                                                { return nil }

// Event subjects
const (
	BookingCreated   = "booking.created"
	BookingAccepted  = "booking.accepted"
	BookingRejected  = "booking.rejected"
	BookingCompleted = "booking.completed"
	BookingCanceled  = "booking.canceled"

	WorkshopRegistered = "workshop.registered"

	FarmerRegistered = "farmer.registered"
)

// Event payloads
type BookingEvent struct {
	BookingID int64     `json:"booking_id"`
	FarmerID  int64     `json:"farmer_id"`
	ExpertID  int64     `json:"expert_id"`
	Status    string    `json:"status"`
	SlotAt    time.Time `json:"slot_at"`
	At        time.Time `json:"at"`
}

type WorkshopRegisteredEvent struct {
	WorkshopID int64     `json:"workshop_id"`
	FarmerID   int64     `json:"farmer_id"`
	At         time.Time `json:"at"`
}

type FarmerRegisteredEvent struct {
	FarmerID int64     `json:"farmer_id"`
	Phone    string    `json:"phone"`
	District string    `json:"district"`
	At       time.Time `json:"at"`
}
