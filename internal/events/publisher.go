// Package events publishes marketplace domain events to kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeListingCreated     = "listing.created"
	TypeListingModerated   = "listing.moderated"
	TypeOfferSubmitted     = "offer.submitted"
	TypeOfferUpdated       = "offer.updated"
	TypeOfferStatusChanged = "offer.status_changed"
)

// Event is the envelope written to the events topic
type Event struct {
	Type       string    `json:"type"`
	EntityID   int64     `json:"entity_id"`
	ActorID    int64     `json:"actor_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates an async producer for topic on broker
func NewKafkaPublisher(broker, topic string) Publisher {
	return &kafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Printf("WARN: failed to deliver %d event(s): %v", len(messages), err)
			}
		},
	}}
}

// Entity is the kind of record an event is about: "offer" for
// "offer.status_changed"
func (e Event) Entity() string {
	kind, _, _ := strings.Cut(e.Type, ".")
	return kind
}

// Key is the partition key. Events about the same entity share it, whatever
// their type, so they land on one partition in order.
func (e Event) Key() string {
	return e.Entity() + ":" + strconv.FormatInt(e.EntityID, 10)
}

// Message builds the kafka message for e
func Message(e Event) (kafka.Message, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(e.Key()),
		Value: data,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := Message(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type nopPublisher struct{}

// NewNopPublisher discards every event. Used when no broker is configured.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                        { return nil }
