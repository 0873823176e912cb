// Package queue is a thin AMQP client for the clip stage queues. Each
// pipeline stage consumes from its input queue and publishes the clip id to
// the next stage's queue once its status flag is set.
package queue

import (
	"context"
	"net/url"

	amqp "github.com/rabbitmq/amqp091-go"

	"clipforge/pipeline-go/internal/utils"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	// stage queues already declared on this channel
	declared map[string]bool
}

// Message is one delivery awaiting Ack or Nack. The body is the JSON stage
// payload produced by the upstream job.
type Message struct {
	Body []byte
	ack  func(bool) error
	nack func(bool, bool) error
}

func New(amqpURL string) (*Client, error) {
	utils.Info("queue connect", "url", redactURL(amqpURL))
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch, declared: make(map[string]bool)}, nil
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// ensureQueue declares the stage queue once per connection. Queues are
// durable so a pending clip survives a broker restart.
func (c *Client) ensureQueue(name string) error {
	if c.declared[name] {
		return nil
	}
	utils.Debug("queue declare", "queue", name)
	if _, err := c.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return err
	}
	c.declared[name] = true
	return nil
}

// Publish hands a stage payload to the named queue on the default exchange.
func (c *Client) Publish(ctx context.Context, queueName string, payload []byte) error {
	utils.Info("queue publish", "queue", queueName, "bytes", len(payload))
	if err := c.ensureQueue(queueName); err != nil {
		return err
	}
	return c.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
}

// Pop fetches a single pending message without auto-ack, or nil when the
// queue is empty. Jobs poll rather than hold a consumer so a crashed worker
// never strands an unacked delivery.
func (c *Client) Pop(queueName string) (*Message, error) {
	if err := c.ensureQueue(queueName); err != nil {
		return nil, err
	}
	msg, ok, err := c.ch.Get(queueName, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		utils.Debug("queue empty", "queue", queueName)
		return nil, nil
	}
	utils.Info("queue received", "queue", queueName, "bytes", len(msg.Body))
	return &Message{Body: msg.Body, ack: msg.Ack, nack: msg.Nack}, nil
}

func (m *Message) Ack() error {
	if m == nil || m.ack == nil {
		return nil
	}
	return m.ack(false)
}

// Nack returns the delivery to the broker. requeue=true puts the clip back
// for another worker; false drops it (used when the payload is malformed).
func (m *Message) Nack(requeue bool) error {
	if m == nil || m.nack == nil {
		return nil
	}
	utils.Debug("queue nack", "requeue", requeue)
	return m.nack(false, requeue)
}

func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if parsed.User != nil {
		name := parsed.User.Username()
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(name, "REDACTED")
		} else {
			parsed.User = url.User(name)
		}
	}
	return parsed.String()
}
