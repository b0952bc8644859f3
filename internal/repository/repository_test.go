package repository

import (
	"testing"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const showtime = "2024-01-01T10:00"

// fixture registers one theater with a 2x2 room and one movie in it.
type fixture struct {
	store    *Store
	theaters *TheaterRepo
	movies   *MovieRepo
	bookings *BookingRepo
	theater  *model.Theater
	movie    *model.Movie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := NewStore()
	f := &fixture{
		store:    s,
		theaters: NewTheaterRepo(s),
		movies:   NewMovieRepo(s),
		bookings: NewBookingRepo(s),
	}
	th, err := f.theaters.Create(TheaterInput{
		Name:     "Grand",
		Location: "Downtown",
		Rooms: []RoomInput{{
			Name:      "Room 1",
			Capacity:  &model.Capacity{Rows: 2, Columns: 2},
			Showtimes: []string{showtime},
		}},
	})
	if err != nil {
		t.Fatalf("create theater: %v", err)
	}
	m, err := f.movies.Create(MovieInput{
		Title: "Inception", Actor: "Leonardo DiCaprio", Actress: "Elliot Page",
		Duration: 148, TheaterID: th.ID, RoomID: 1,
	})
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}
	f.theater, f.movie = th, m
	return f
}

func (f *fixture) request(seats ...model.Seat) model.BookingRequest {
	return model.BookingRequest{
		MovieID:   f.movie.ID,
		TheaterID: f.theater.ID,
		RoomID:    1,
		Showtime:  showtime,
		Seats:     seats,
	}
}

func (f *fixture) bookedTickets(t *testing.T) int {
	t.Helper()
	m, err := f.movies.GetByID(f.movie.ID)
	if err != nil {
		t.Fatal(err)
	}
	return m.BookedTickets
}

func (f *fixture) grid(t *testing.T) *model.SeatingGrid {
	t.Helper()
	g, err := f.theaters.Seating(f.theater.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	return g
}
