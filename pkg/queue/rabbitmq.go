package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"go-interview-worker/internal/domain"
	"go-interview-worker/pkg/logger"
)

// Client wraps one RabbitMQ connection, channel and durable task queue. It
// implements domain.Publisher for the enqueue side and exposes Consume for
// the worker's receive loop.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewClient(url, queueName string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue: declare %s: %w", queueName, err)
	}

	// One unacked message per consumer keeps a slow handler from hoarding
	// deliveries that another worker instance could take.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue: set qos: %w", err)
	}

	return &Client{conn: conn, channel: ch, queue: q}, nil
}

// Publish enqueues a task envelope.
func (c *Client) Publish(ctx context.Context, message *domain.TaskMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		"",           // exchange
		c.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("queue: publish %s: %w", message.ActionType, err)
	}

	logger.Log.Debug("enqueued task message",
		"action_type", message.ActionType,
		"correlation_id", message.CorrelationID,
	)
	return nil
}

// Consume delivers raw message bodies to handle until ctx is canceled.
// Delivery is at-least-once: messages are acked after handle returns,
// regardless of handler outcome, since failed tasks are not auto-retried.
func (c *Client) Consume(ctx context.Context, handle func(ctx context.Context, body []byte)) error {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue: register consumer: %w", err)
	}

	logger.Log.Info("listening for task messages", "queue", c.queue.Name)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("queue: delivery channel closed")
			}
			handle(ctx, d.Body)
			if err := d.Ack(false); err != nil {
				logger.Log.Error("failed to ack delivery", "error", err)
			}
		}
	}
}

func (c *Client) Close() error {
	if err := c.channel.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
