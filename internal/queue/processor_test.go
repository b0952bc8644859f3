package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

const showtime = "2024-01-01T10:00"

// setup registers a theater with one rows x cols room and a movie in it.
func setup(t *testing.T, rows, cols int) (*repository.BookingRepo, *repository.TheaterRepo, model.BookingRequest) {
	t.Helper()
	s := repository.NewStore()
	theaters := repository.NewTheaterRepo(s)
	movies := repository.NewMovieRepo(s)
	th, err := theaters.Create(repository.TheaterInput{
		Name: "Grand", Location: "Downtown",
		Rooms: []repository.RoomInput{{Name: "Room 1", Capacity: &model.Capacity{Rows: rows, Columns: cols}, Showtimes: []string{showtime}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	m, err := movies.Create(repository.MovieInput{
		Title: "Inception", Actor: "Leonardo DiCaprio", Actress: "Elliot Page",
		Duration: 148, TheaterID: th.ID, RoomID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	base := model.BookingRequest{MovieID: m.ID, TheaterID: th.ID, RoomID: 1, Showtime: showtime}
	return repository.NewBookingRepo(s), theaters, base
}

func withSeats(base model.BookingRequest, seats ...model.Seat) model.BookingRequest {
	base.Seats = seats
	return base
}

// start runs p until the test ends and waits for it to stop.
func start(t *testing.T, p *Processor) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func await(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

type recordingApplier struct {
	mu   sync.Mutex
	seen []string
	next Applier
}

func (r *recordingApplier) Apply(req model.BookingRequest) (*model.Booking, error) {
	r.mu.Lock()
	r.seen = append(r.seen, req.ID)
	r.mu.Unlock()
	return r.next.Apply(req)
}

func TestProcessorAppliesInSubmissionOrder(t *testing.T) {
	bookings, _, base := setup(t, 4, 4)
	rec := &recordingApplier{next: bookings}
	q := NewQueue()
	p := NewProcessor(q, rec, nil)

	// Enqueue before the worker starts so all requests are waiting.
	ids := []string{"a", "b", "c", "d"}
	outs := make([]<-chan Outcome, len(ids))
	for i, id := range ids {
		req := withSeats(base, model.Seat{Row: i, Col: 0})
		req.ID = id
		ch, err := p.Enqueue(req)
		if err != nil {
			t.Fatal(err)
		}
		outs[i] = ch
	}
	if q.Len() != len(ids) {
		t.Fatalf("Len = %d, want %d", q.Len(), len(ids))
	}
	start(t, p)

	for i, ch := range outs {
		o := await(t, ch)
		if o.Err != nil {
			t.Fatalf("request %s: %v", ids[i], o.Err)
		}
		if o.Booking.RequestID != ids[i] || o.Booking.Seats[0].Row != i {
			t.Fatalf("request %s got booking %+v", ids[i], o.Booking)
		}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i, id := range ids {
		if rec.seen[i] != id {
			t.Fatalf("applied order = %v, want %v", rec.seen, ids)
		}
	}
}

func TestProcessorSameSeatTwice(t *testing.T) {
	bookings, theaters, base := setup(t, 2, 2)
	p := NewProcessor(NewQueue(), bookings, nil)
	seat := model.Seat{Row: 1, Col: 1}
	first, err := p.Enqueue(withSeats(base, seat))
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Enqueue(withSeats(base, seat))
	if err != nil {
		t.Fatal(err)
	}
	start(t, p)

	if o := await(t, first); o.Err != nil {
		t.Fatalf("first request: %v", o.Err)
	}
	o := await(t, second)
	var seatErr *model.SeatError
	if !errors.Is(o.Err, model.ErrSeatAlreadyBooked) || !errors.As(o.Err, &seatErr) || seatErr.Row != 1 || seatErr.Col != 1 {
		t.Fatalf("second request err = %v, want already booked at 1,1", o.Err)
	}
	g, err := theaters.Seating(base.TheaterID, base.RoomID)
	if err != nil {
		t.Fatal(err)
	}
	if n := g.BookedCount(); n != 1 {
		t.Fatalf("booked cells = %d, want 1", n)
	}
}

func TestProcessorConcurrentSubmitters(t *testing.T) {
	bookings, _, base := setup(t, 1, 1)
	p := NewProcessor(NewQueue(), bookings, nil)
	start(t, p)

	const n = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, booked int
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Submit(context.Background(), withSeats(base, model.Seat{Row: 0, Col: 0}))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, model.ErrSeatAlreadyBooked):
				booked++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || booked != n-1 {
		t.Fatalf("ok=%d booked=%d, want 1 and %d", ok, booked, n-1)
	}
}

func TestEnqueueRejectsInvalidInput(t *testing.T) {
	q := NewQueue()
	p := NewProcessor(q, nil, nil)
	if _, err := p.Enqueue(model.BookingRequest{MovieID: 1, TheaterID: 1, RoomID: 1, Showtime: showtime}); !errors.Is(err, repository.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if q.Len() != 0 {
		t.Fatal("invalid request reached the queue")
	}
}

func TestEnqueueAssignsIDAndCopiesSeats(t *testing.T) {
	q := NewQueue()
	p := NewProcessor(q, nil, nil)
	seats := []model.Seat{{Row: 0, Col: 0}}
	if _, err := p.Enqueue(model.BookingRequest{MovieID: 1, TheaterID: 1, RoomID: 1, Showtime: showtime, Seats: seats}); err != nil {
		t.Fatal(err)
	}
	seats[0].Row = 7
	it, ok := q.pop()
	if !ok {
		t.Fatal("queue is empty")
	}
	if it.req.ID == "" {
		t.Fatal("request was not given an id")
	}
	if it.req.Seats[0].Row != 0 {
		t.Fatal("queued request shares the caller's seat slice")
	}
}

func TestProcessorShutdownRejectsPending(t *testing.T) {
	bookings, _, base := setup(t, 2, 2)
	q := NewQueue()
	p := NewProcessor(q, bookings, nil)
	pending, err := p.Enqueue(withSeats(base, model.Seat{Row: 0, Col: 0}))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	// Either the worker got to it before noticing the cancellation or it
	// was rejected at shutdown; it must not be left hanging.
	o := await(t, pending)
	if o.Err != nil && !errors.Is(o.Err, ErrProcessorStopped) {
		t.Fatalf("pending outcome = %v", o.Err)
	}
	if _, err := p.Enqueue(withSeats(base, model.Seat{Row: 1, Col: 1})); !errors.Is(err, ErrProcessorStopped) {
		t.Fatalf("Enqueue after shutdown = %v, want ErrProcessorStopped", err)
	}
}

type panicApplier struct{}

func (panicApplier) Apply(model.BookingRequest) (*model.Booking, error) { panic("boom") }

func TestProcessorSurvivesPanic(t *testing.T) {
	bookings, _, base := setup(t, 2, 2)
	calls := 0
	p := NewProcessor(NewQueue(), applierFunc(func(req model.BookingRequest) (*model.Booking, error) {
		calls++
		if calls == 1 {
			return panicApplier{}.Apply(req)
		}
		return bookings.Apply(req)
	}), nil)
	start(t, p)

	if _, err := p.Submit(context.Background(), withSeats(base, model.Seat{Row: 0, Col: 0})); err == nil {
		t.Fatal("panicking request reported success")
	}
	if _, err := p.Submit(context.Background(), withSeats(base, model.Seat{Row: 0, Col: 0})); err != nil {
		t.Fatalf("request after panic: %v", err)
	}
}

type applierFunc func(model.BookingRequest) (*model.Booking, error)

func (f applierFunc) Apply(req model.BookingRequest) (*model.Booking, error) { return f(req) }

type notifierFunc func(BookingConfirmedEvent)

func (f notifierFunc) NotifyBookingConfirmed(ev BookingConfirmedEvent) { f(ev) }

func TestProcessorNotifiesOnSuccessOnly(t *testing.T) {
	bookings, _, base := setup(t, 2, 2)
	events := make(chan BookingConfirmedEvent, 4)
	p := NewProcessor(NewQueue(), bookings, notifierFunc(func(ev BookingConfirmedEvent) { events <- ev }))
	start(t, p)

	req := withSeats(base, model.Seat{Row: 0, Col: 1}, model.Seat{Row: 1, Col: 0})
	req.ID = "req-1"
	if _, err := p.Submit(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Submit(context.Background(), withSeats(base, model.Seat{Row: 0, Col: 1})); err == nil {
		t.Fatal("double booking accepted")
	}

	ev := <-events
	if ev.RequestID != "req-1" || ev.BookedTickets != 2 || ev.MovieTitle != "Inception" {
		t.Fatalf("event = %+v", ev)
	}
	if len(ev.SeatLabels) != 2 || ev.SeatLabels[0] != "R1S2" || ev.SeatLabels[1] != "R2S1" {
		t.Fatalf("seat labels = %v", ev.SeatLabels)
	}
	select {
	case extra := <-events:
		t.Fatalf("rejected request produced event %+v", extra)
	default:
	}
}

func TestSubmitWithdrawsWaitingRequest(t *testing.T) {
	bookings, theaters, base := setup(t, 2, 2)
	q := NewQueue()
	p := NewProcessor(q, bookings, nil)
	seat := model.Seat{Row: 0, Col: 0}

	// No worker yet: the request is still waiting when the deadline hits.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Submit(ctx, withSeats(base, seat)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	start(t, p)

	// The retry must not collide with the withdrawn request.
	if _, err := p.Submit(context.Background(), withSeats(base, seat)); err != nil {
		t.Fatalf("retry after timeout: %v", err)
	}
	g, err := theaters.Seating(base.TheaterID, base.RoomID)
	if err != nil {
		t.Fatal(err)
	}
	if n := g.BookedCount(); n != 1 {
		t.Fatalf("booked cells = %d, want 1", n)
	}
	if q.Len() != 0 {
		t.Fatalf("Len = %d, want 0", q.Len())
	}
}

func TestSubmitReturnsOutcomeOnceTaken(t *testing.T) {
	bookings, _, base := setup(t, 2, 2)
	started := make(chan struct{})
	release := make(chan struct{})
	p := NewProcessor(NewQueue(), applierFunc(func(req model.BookingRequest) (*model.Booking, error) {
		close(started)
		<-release
		return bookings.Apply(req)
	}), nil)
	start(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		b   *model.Booking
		err error
	}
	res := make(chan result, 1)
	go func() {
		b, err := p.Submit(ctx, withSeats(base, model.Seat{Row: 1, Col: 0}))
		res <- result{b, err}
	}()

	<-started
	cancel()
	close(release)

	select {
	case r := <-res:
		if r.err != nil || r.b == nil || r.b.BookedTickets != 1 {
			t.Fatalf("Submit = %+v, %v; want the applied booking", r.b, r.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Submit did not return")
	}
}
