// Package service publishes domain events to RabbitMQ. Errors are
// logged and never reach the booking flow.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/movie-ticket-booking/internal/queue"
)

// Sender publishes events over one open broker connection.
type Sender interface {
	Send(ctx context.Context, event q.BookingConfirmedEvent) error
	Close() error
}

// ConnectFunc opens a new Sender.
type ConnectFunc func() (Sender, error)

// rabbitSender keeps one connection and channel open for the lifetime
// of the publisher.
type rabbitSender struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialRabbit connects to the broker at url and declares the durable
// booking.confirmed queue (idempotent).
func DialRabbit(url string) (Sender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(
		q.BookingConfirmedQueue, // name
		true,                    // durable
		false,                   // autoDelete
		false,                   // exclusive
		false,                   // noWait
		nil,                     // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	return &rabbitSender{conn: conn, ch: ch}, nil
}

// Send publishes event as a persistent message on the default exchange.
func (s *rabbitSender) Send(ctx context.Context, event q.BookingConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		MessageId:    event.RequestID,
		Body:         body,
	}
	return s.ch.PublishWithContext(ctx,
		"",                      // default exchange
		q.BookingConfirmedQueue, // routing key = queue name
		false,                   // mandatory
		false,                   // immediate
		pub,
	)
}

func (s *rabbitSender) Close() error {
	_ = s.ch.Close()
	return s.conn.Close()
}

// BookingPublisher decouples the booking processor from the broker. The
// processor hands events over without waiting; Run publishes them in
// order on its own goroutine over a single connection. When the buffer
// is full new events are dropped and logged rather than slowing
// bookings down.
type BookingPublisher struct {
	events  chan q.BookingConfirmedEvent
	connect ConnectFunc
	timeout time.Duration
	backoff time.Duration
}

// NewBookingPublisher returns a publisher holding up to buffer pending
// events. Each publish attempt is bounded by timeout.
func NewBookingPublisher(buffer int, timeout time.Duration, connect ConnectFunc) *BookingPublisher {
	if buffer < 1 {
		buffer = 1
	}
	return &BookingPublisher{
		events:  make(chan q.BookingConfirmedEvent, buffer),
		connect: connect,
		timeout: timeout,
		backoff: time.Second,
	}
}

// NewRabbitPublisher returns a BookingPublisher that sends to the
// broker at url.
func NewRabbitPublisher(url string, buffer int, timeout time.Duration) *BookingPublisher {
	return NewBookingPublisher(buffer, timeout, func() (Sender, error) { return DialRabbit(url) })
}

// NotifyBookingConfirmed queues ev for publishing without blocking.
func (p *BookingPublisher) NotifyBookingConfirmed(ev q.BookingConfirmedEvent) {
	select {
	case p.events <- ev:
	default:
		log.Printf("rabbitmq: event buffer full, dropping booking.confirmed for request %s", ev.RequestID)
	}
}

// Run publishes queued events until ctx is cancelled. The connection is
// opened on the first event and reused; after a failed publish it is
// reopened and the event retried once before it is dropped.
func (p *BookingPublisher) Run(ctx context.Context) {
	var sender Sender
	defer func() {
		if sender != nil {
			_ = sender.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.events:
			for attempt := 1; ; attempt++ {
				if sender == nil {
					if sender = p.dial(ctx); sender == nil {
						return // cancelled while reconnecting
					}
				}
				pctx, cancel := context.WithTimeout(ctx, p.timeout)
				err := sender.Send(pctx, ev)
				cancel()
				if err == nil {
					break
				}
				log.Printf("rabbitmq: publish request %s failed: %v", ev.RequestID, err)
				_ = sender.Close()
				sender = nil
				if attempt == 2 || ctx.Err() != nil {
					log.Printf("rabbitmq: dropping booking.confirmed for request %s", ev.RequestID)
					break
				}
			}
		}
	}
}

// dial connects with exponential backoff. It returns nil once ctx is
// cancelled.
func (p *BookingPublisher) dial(ctx context.Context) Sender {
	backoff := p.backoff
	for {
		s, err := p.connect()
		if err == nil {
			return s
		}
		log.Printf("rabbitmq: connect failed: %v; retrying in %s", err, backoff)
		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
