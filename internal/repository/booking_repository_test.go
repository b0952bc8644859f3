package repository

import (
	"errors"
	"testing"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func TestApplyBooksSeatsAndCounts(t *testing.T) {
	f := newFixture(t)
	b, err := f.bookings.Apply(f.request(model.Seat{Row: 0, Col: 0}, model.Seat{Row: 0, Col: 1}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if b.BookedTickets != 2 || len(b.Seats) != 2 || b.TheaterName != "Grand" || b.MovieTitle != "Inception" {
		t.Fatalf("booking = %+v", b)
	}
	g := f.grid(t)
	for c := 0; c < 2; c++ {
		if free, _ := g.IsFree(0, c); free {
			t.Fatalf("seat 0,%d still free", c)
		}
		if free, _ := g.IsFree(1, c); !free {
			t.Fatalf("seat 1,%d booked", c)
		}
	}
	if got := f.bookedTickets(t); got != 2 {
		t.Fatalf("bookedTickets = %d, want 2", got)
	}

	_, err = f.bookings.Apply(f.request(model.Seat{Row: 0, Col: 0}))
	var seatErr *model.SeatError
	if !errors.Is(err, model.ErrSeatAlreadyBooked) || !errors.As(err, &seatErr) || seatErr.Row != 0 || seatErr.Col != 0 {
		t.Fatalf("rebooking err = %v, want SeatAlreadyBooked at 0,0", err)
	}
	if got := f.bookedTickets(t); got != 2 {
		t.Fatalf("bookedTickets after rejection = %d, want 2", got)
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	cases := []struct {
		name  string
		seats []model.Seat
		want  error
		row   int
	}{
		{"out of bounds after a free seat", []model.Seat{{Row: 1, Col: 1}, {Row: 5, Col: 0}}, model.ErrSeatOutOfBounds, 5},
		{"booked after a free seat", []model.Seat{{Row: 1, Col: 1}, {Row: 0, Col: 0}}, model.ErrSeatAlreadyBooked, 0},
		{"negative column", []model.Seat{{Row: 0, Col: -1}}, model.ErrSeatOutOfBounds, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if _, err := f.bookings.Apply(f.request(model.Seat{Row: 0, Col: 0})); err != nil {
				t.Fatal(err)
			}
			before := f.grid(t).Snapshot()
			version := f.store.Version()

			_, err := f.bookings.Apply(f.request(tc.seats...))
			var seatErr *model.SeatError
			if !errors.Is(err, tc.want) || !errors.As(err, &seatErr) || seatErr.Row != tc.row {
				t.Fatalf("err = %v, want %v at row %d", err, tc.want, tc.row)
			}
			after := f.grid(t).Snapshot()
			for r := range before {
				for c := range before[r] {
					if before[r][c] != after[r][c] {
						t.Fatalf("seat %d,%d changed by a rejected request", r, c)
					}
				}
			}
			if got := f.bookedTickets(t); got != 1 {
				t.Fatalf("bookedTickets = %d, want 1", got)
			}
			if f.store.Version() != version {
				t.Fatal("rejected request bumped the store version")
			}
		})
	}
}

func TestApplyResolutionOrder(t *testing.T) {
	f := newFixture(t)
	// A second theater whose room 1 has no movie: the movie must match
	// the theater and room, not just its id.
	if _, err := f.theaters.Create(TheaterInput{
		Name: "Other", Location: "Uptown",
		Rooms: []RoomInput{{Name: "Room 1", Capacity: &model.Capacity{Rows: 1, Columns: 1}, Showtimes: []string{showtime}}},
	}); err != nil {
		t.Fatal(err)
	}

	seat := model.Seat{Row: 0, Col: 0}
	cases := []struct {
		name string
		edit func(*model.BookingRequest)
		want error
	}{
		{"theater first", func(r *model.BookingRequest) { r.TheaterID = 9; r.RoomID = 9; r.Showtime = "x" }, ErrTheaterNotFound},
		{"then room", func(r *model.BookingRequest) { r.RoomID = 9; r.Showtime = "x" }, ErrRoomNotFound},
		{"then movie triple", func(r *model.BookingRequest) { r.TheaterID = 2; r.Showtime = "x" }, ErrMovieNotFound},
		{"then showtime", func(r *model.BookingRequest) { r.Showtime = "2024-01-01T12:00"; r.Seats = []model.Seat{{Row: 9, Col: 9}} }, ErrInvalidShowtime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.request(seat)
			tc.edit(&req)
			if _, err := f.bookings.Apply(req); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if free, _ := f.grid(t).IsFree(0, 0); !free {
		t.Fatal("failed lookups booked a seat")
	}
}

func TestApplyDuplicateSeatInOneRequest(t *testing.T) {
	f := newFixture(t)
	seat := model.Seat{Row: 1, Col: 1}
	b, err := f.bookings.Apply(f.request(seat, seat))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if b.BookedTickets != 2 {
		t.Fatalf("bookedTickets = %d, want 2 (each listed seat counts)", b.BookedTickets)
	}
	if n := f.grid(t).BookedCount(); n != 1 {
		t.Fatalf("booked cells = %d, want 1", n)
	}
}

func TestValidateBooking(t *testing.T) {
	valid := model.BookingRequest{MovieID: 1, TheaterID: 1, RoomID: 1, Showtime: showtime, Seats: []model.Seat{{Row: 0, Col: 0}}}
	if err := ValidateBooking(valid); err != nil {
		t.Fatalf("valid request: %v", err)
	}
	for name, edit := range map[string]func(*model.BookingRequest){
		"no movie":    func(r *model.BookingRequest) { r.MovieID = 0 },
		"no theater":  func(r *model.BookingRequest) { r.TheaterID = 0 },
		"no room":     func(r *model.BookingRequest) { r.RoomID = 0 },
		"no showtime": func(r *model.BookingRequest) { r.Showtime = "" },
		"no seats":    func(r *model.BookingRequest) { r.Seats = nil },
		"empty seats": func(r *model.BookingRequest) { r.Seats = []model.Seat{} },
	} {
		req := valid
		edit(&req)
		if err := ValidateBooking(req); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}
