package rabbitmq

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer opens deliveries on the notification queue. Each Consume call
// redials when the previous connection has been lost.
type Consumer struct {
	url string
	log *logrus.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewConsumer(url string, log *logrus.Logger) *Consumer {
	return &Consumer{url: url, log: log}
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() || c.channel.IsClosed() {
		c.closeLocked()
		conn, ch, err := open(c.url)
		if err != nil {
			return nil, err
		}
		if err := ch.Qos(10, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("rabbitmq qos: %w", err)
		}
		c.conn, c.channel = conn, ch
	}

	msgs, err := c.channel.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack = false, we ack manually after processing
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	c.log.WithFields(logrus.Fields{"component": "rabbitmq", "queue": QueueName}).Info("consuming notifications")
	return msgs, nil
}

func (c *Consumer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Consumer) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
