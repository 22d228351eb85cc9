// Package events publishes catalog change notifications for downstream
// consumers such as a search index.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"

	"carrental/pkg/rabbitmq"
)

// Event types.
const (
	CarCreated         = "car.created"
	CarUpdated         = "car.updated"
	CarDeleted         = "car.deleted"
	CarsBulkUpdated    = "cars.bulk_updated"
	BrandCreated       = "brand.created"
	BrandUpdated       = "brand.updated"
	BrandDeleted       = "brand.deleted"
	CategoryCreated    = "category.created"
	CategoryUpdated    = "category.updated"
	CategoryDeleted    = "category.deleted"
	CarCategoryAdded   = "car.category_added"
	CarCategoryRemoved = "car.category_removed"
)

// Event describes one change to a catalog document.
type Event struct {
	Type   string                 `json:"type"`
	ID     string                 `json:"id,omitempty"`
	At     time.Time              `json:"at"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// New stamps an event of the given type with the current time.
func New(eventType, id string, fields map[string]interface{}) Event {
	return Event{Type: eventType, ID: id, At: time.Now().UTC(), Fields: fields}
}

// Publisher sends catalog events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// sender is the part of the rabbitmq client the publisher needs.
type sender interface {
	Publish(body []byte) error
}

// AMQPPublisher writes events as JSON to a RabbitMQ queue.
type AMQPPublisher struct {
	client sender
}

// NewAMQPPublisher wraps a connected rabbitmq client.
func NewAMQPPublisher(client *rabbitmq.Client) *AMQPPublisher {
	return &AMQPPublisher{client: client}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshalling event")
	}
	return errors.Wrapf(p.client.Publish(body), "publishing %s", e.Type)
}

// Emit publishes e and logs a failure instead of returning it; a lost event
// never fails the change that produced it.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	grip.Error(message.WrapError(p.Publish(ctx, e), message.Fields{
		"message": "failed to publish catalog event",
		"type":    e.Type,
		"id":      e.ID,
	}))
}

// Decode parses an event delivered from the queue.
func Decode(body []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(body, &e)
	return e, errors.Wrap(err, "decoding event")
}
