package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/notification"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	publishBuffer  = 256
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

var (
	ErrQueueFull       = errors.New("notification buffer full")
	ErrPublisherClosed = errors.New("publisher closed")
)

// session is the part of an AMQP channel the publisher needs.
type session interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// amqpSession owns the connection behind a channel so closing it tears down both.
type amqpSession struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (s *amqpSession) IsClosed() bool {
	return s.conn.IsClosed() || s.Channel.IsClosed()
}

func (s *amqpSession) Close() error {
	_ = s.Channel.Close()
	return s.conn.Close()
}

// Publisher enqueues booking notifications. It implements notification.Notifier.
// Enqueue only buffers; a background goroutine publishes and redials the
// broker when the connection drops.
type Publisher struct {
	mu     sync.RWMutex
	closed bool
	queue  chan notification.Message
	done   chan struct{}

	dial     func() (session, error)
	sess     session
	backoff  time.Duration
	nextDial time.Time

	log *logrus.Entry
}

func NewPublisher(url string, log *logrus.Logger) *Publisher {
	dial := func() (session, error) {
		conn, ch, err := open(url)
		if err != nil {
			return nil, err
		}
		return &amqpSession{Channel: ch, conn: conn}, nil
	}
	return newPublisher(dial, publishBuffer, log)
}

func newPublisher(dial func() (session, error), buffer int, log *logrus.Logger) *Publisher {
	p := &Publisher{
		queue:   make(chan notification.Message, buffer),
		done:    make(chan struct{}),
		dial:    dial,
		backoff: time.Second,
		log:     log.WithField("component", "rabbitmq"),
	}
	go p.run()
	return p
}

// Enqueue buffers msg for publishing and never waits on the broker.
func (p *Publisher) Enqueue(ctx context.Context, msg notification.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		p.publish(msg)
	}
}

// publish sends msg, redialing once if the current session has gone away.
// A message that cannot be sent is logged and dropped.
func (p *Publisher) publish(msg notification.Message) {
	logger := p.log.WithFields(logrus.Fields{"kind": msg.Kind, "booking_id": msg.BookingID})

	body, err := json.Marshal(msg)
	if err != nil {
		logger.WithError(err).Error("failed to marshal notification, dropping")
		return
	}

	for attempt := 0; attempt < 2; attempt++ {
		sess, err := p.session()
		if err != nil {
			logger.WithError(err).Warn("broker unavailable, dropping notification")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err = sess.PublishWithContext(ctx, ExchangeName, string(msg.Kind), false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.EnqueuedAt,
			Body:         body,
		})
		cancel()
		if err == nil {
			logger.Debug("notification published")
			return
		}

		logger.WithError(err).Warn("publish failed, reconnecting")
		p.reset()
	}
	logger.Error("notification dropped after reconnect")
}

// session returns the live session, dialing with exponential backoff when
// there is none.
func (p *Publisher) session() (session, error) {
	if p.sess != nil && !p.sess.IsClosed() {
		return p.sess, nil
	}
	p.reset()

	if now := time.Now(); now.Before(p.nextDial) {
		return nil, fmt.Errorf("rabbitmq redial in %s", p.nextDial.Sub(now).Round(time.Millisecond))
	}

	sess, err := p.dial()
	if err != nil {
		p.nextDial = time.Now().Add(p.backoff)
		if p.backoff < maxBackoff {
			p.backoff *= 2
		}
		return nil, err
	}

	p.sess = sess
	p.backoff = time.Second
	p.nextDial = time.Time{}
	p.log.Info("publisher connected")
	return sess, nil
}

func (p *Publisher) reset() {
	if p.sess != nil {
		_ = p.sess.Close()
		p.sess = nil
	}
}

// Close stops accepting messages, flushes the buffer and closes the session.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	p.reset()
}
