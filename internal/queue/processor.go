package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// ErrProcessorStopped is delivered to requests still queued when the
// processor shuts down.
var ErrProcessorStopped = errors.New("booking processor stopped")

// Applier validates and applies one booking request against the shared
// seating state.  repository.BookingRepo satisfies it.
type Applier interface {
	Apply(req model.BookingRequest) (*model.Booking, error)
}

// Notifier receives confirmation events for applied bookings.  It must
// not block: the processor calls it between two queued requests.
type Notifier interface {
	NotifyBookingConfirmed(ev BookingConfirmedEvent)
}

// Processor drains the booking queue on a single goroutine, so at most
// one request is ever being validated or applied.  Each request's
// outcome is delivered on the channel created when it was enqueued.
type Processor struct {
	queue    *Queue
	bookings Applier
	notifier Notifier
	now      func() time.Time
}

// NewProcessor wires a processor to its queue and applier.  notifier
// may be nil.
func NewProcessor(q *Queue, bookings Applier, notifier Notifier) *Processor {
	return &Processor{
		queue:    q,
		bookings: bookings,
		notifier: notifier,
		now:      time.Now,
	}
}

// Enqueue validates req, gives it an ID if it has none and appends it
// to the queue.  The returned channel receives exactly one Outcome.
func (p *Processor) Enqueue(req model.BookingRequest) (<-chan Outcome, error) {
	it, err := p.enqueue(req)
	if err != nil {
		return nil, err
	}
	return it.done, nil
}

func (p *Processor) enqueue(req model.BookingRequest) (*item, error) {
	if err := repository.ValidateBooking(req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Seats = append([]model.Seat(nil), req.Seats...)
	it := &item{req: req, done: make(chan Outcome, 1), enqueuedAt: p.now()}
	if !p.queue.push(it) {
		return nil, ErrProcessorStopped
	}
	return it, nil
}

// Submit enqueues req and waits for its outcome.  If ctx ends while the
// request is still waiting in the queue, the request is withdrawn and
// will never be applied.  If the worker has already taken it, Submit
// keeps waiting and returns the real outcome, so a caller is never told
// a booking failed when it was applied.
func (p *Processor) Submit(ctx context.Context, req model.BookingRequest) (*model.Booking, error) {
	it, err := p.enqueue(req)
	if err != nil {
		return nil, err
	}
	select {
	case o := <-it.done:
		return o.Booking, o.Err
	case <-ctx.Done():
		if it.abandon() {
			return nil, ctx.Err()
		}
		o := <-it.done
		return o.Booking, o.Err
	}
}

// Run processes queued requests until ctx is cancelled.  Every wake-up
// drains the queue completely before waiting again.  Requests left in
// the queue at shutdown are rejected with ErrProcessorStopped.
func (p *Processor) Run(ctx context.Context) error {
	defer p.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.queue.ready:
			if err := p.drain(ctx); err != nil {
				return err
			}
		}
	}
}

func (p *Processor) drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		it, ok := p.queue.pop()
		if !ok {
			return nil
		}
		p.process(it)
	}
}

func (p *Processor) process(it *item) {
	if !it.take() {
		log.Printf("booking-processor: request %s withdrawn by its submitter after %s", it.req.ID, p.now().Sub(it.enqueuedAt))
		return
	}
	booking, err := p.apply(it.req)
	it.resolve(Outcome{Booking: booking, Err: err})

	wait := p.now().Sub(it.enqueuedAt)
	if err != nil {
		log.Printf("booking-processor: request %s rejected after %s: %v", it.req.ID, wait, err)
		return
	}
	log.Printf("booking-processor: request %s applied after %s: movie=%d theater=%d room=%d seats=%d",
		it.req.ID, wait, booking.MovieID, booking.TheaterID, booking.RoomID, len(booking.Seats))
	if p.notifier != nil {
		p.notifier.NotifyBookingConfirmed(NewBookingConfirmedEvent(booking, p.now()))
	}
}

// apply keeps a panicking request from taking the worker down with it.
func (p *Processor) apply(req model.BookingRequest) (booking *model.Booking, err error) {
	defer func() {
		if r := recover(); r != nil {
			booking, err = nil, fmt.Errorf("booking request %s: panic: %v", req.ID, r)
		}
	}()
	return p.bookings.Apply(req)
}

func (p *Processor) shutdown() {
	for _, it := range p.queue.close() {
		it.resolve(Outcome{Err: ErrProcessorStopped})
	}
}
