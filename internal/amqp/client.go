package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Client wraps one AMQP connection and channel bound to the recompute queue.
// It implements service.RecomputeEnqueuer on the publishing side.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewClient connects to the broker and declares the exchange, queue, and binding
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key is the queue name on a direct exchange
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// EnqueueBudgetRecompute publishes a budget recompute request
func (c *Client) EnqueueBudgetRecompute(ctx context.Context, userID, categoryID uuid.UUID, date time.Time) error {
	return c.publish(ctx, NewBudgetRecomputeMessage(userID, categoryID, date))
}

// EnqueueProgressRecompute publishes a progress recompute request
func (c *Client) EnqueueProgressRecompute(ctx context.Context, userID uuid.UUID) error {
	return c.publish(ctx, NewProgressRecomputeMessage(userID))
}

func (c *Client) publish(ctx context.Context, msg *RecomputeMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Debug().
		Str("kind", string(msg.Kind)).
		Str("user_id", msg.UserID.String()).
		Str("queue", c.queueName).
		Msg("Published recompute message")

	return nil
}

// Consume delivers recompute messages to handler until ctx is cancelled.
// Handler errors requeue the delivery; undecodable messages are dropped.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, *RecomputeMessage) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log.Info().Str("queue", c.queueName).Msg("Started consuming recompute messages")

	for {
		select {
		case <-ctx.Done():
			log.Info().AnErr("reason", ctx.Err()).Msg("Stopping message consumption")
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := RecomputeMessageFromJSON(delivery.Body)
			if err != nil {
				log.Error().Err(err).Msg("Failed to unmarshal recompute message")
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(ctx, msg); err != nil {
				log.Error().Err(err).
					Str("kind", string(msg.Kind)).
					Str("user_id", msg.UserID.String()).
					Msg("Failed to handle recompute message")
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

// Close closes the channel and connection
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
