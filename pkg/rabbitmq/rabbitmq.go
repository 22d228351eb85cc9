package rabbitmq

import (
	"context"
	"sync"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue receives catalog change events.
const DefaultQueue = "catalog_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string

	// guards channel; publishes come from concurrent request handlers
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// queue events are routed to.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	if err := declare(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	grip.Info(message.Fields{
		"message": "rabbitmq client connected",
		"queue":   cfg.Queue,
	})

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	return errors.Wrapf(err, "failed to declare %s", queue)
}

// Queue returns the name of the queue the client publishes to.
func (c *Client) Queue() string { return c.queue }

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	catcher := grip.NewBasicCatcher()
	if c.channel != nil {
		catcher.Wrap(c.channel.Close(), "failed to close channel")
	}
	if c.conn != nil {
		catcher.Wrap(c.conn.Close(), "failed to close connection")
	}
	return catcher.Resolve()
}

// Publish sends a persistent JSON message to the client's queue.
func (c *Client) Publish(body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	err := c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	return errors.Wrapf(err, "failed to publish to %s", c.queue)
}

// Consume delivers messages from the client's queue to handle until ctx is
// done or the channel closes. Messages are acked when handle succeeds and
// nacked without requeue otherwise.
func (c *Client) Consume(ctx context.Context, handle func(amqp.Delivery) error) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return errors.Wrap(err, "failed to register consumer")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := handle(msg); err != nil {
				grip.Error(message.WrapError(err, message.Fields{
					"message":      "failed to process delivery",
					"queue":        c.queue,
					"delivery_tag": msg.DeliveryTag,
				}))
				grip.Warning(msg.Nack(false, false))
				continue
			}
			grip.Warning(msg.Ack(false))
		}
	}
}
