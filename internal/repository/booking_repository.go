package repository

import (
	"fmt"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// BookingRepo applies booking requests to the seating grids.  Apply is
// meant to be called from a single goroutine (the booking processor);
// the store lock only keeps readers from seeing a half-applied request.
type BookingRepo struct {
	store *Store
}

// NewBookingRepo constructs a BookingRepo over the given store.
func NewBookingRepo(s *Store) *BookingRepo {
	return &BookingRepo{store: s}
}

// ValidateBooking checks that every field of the request is present.
// It runs before a request is queued.
func ValidateBooking(req model.BookingRequest) error {
	if req.MovieID <= 0 || req.TheaterID <= 0 || req.RoomID <= 0 || strings.TrimSpace(req.Showtime) == "" {
		return fmt.Errorf("%w: movieId, theaterId, roomId and showtime are required", ErrInvalidInput)
	}
	if len(req.Seats) == 0 {
		return fmt.Errorf("%w: at least one seat is required", ErrInvalidInput)
	}
	return nil
}

// Apply resolves the theater, room, movie and showtime of the request,
// checks every seat and only then books them all.  On any error no
// seat and no counter changes.
//
// A seat listed twice in one request passes the check (it is free
// before anything is booked) and is counted twice in BookedTickets.
func (r *BookingRepo) Apply(req model.BookingRequest) (*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	theater, ok := r.store.theaterByID(req.TheaterID)
	if !ok {
		return nil, ErrTheaterNotFound
	}
	room, ok := theater.Room(req.RoomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	var movie *model.Movie
	for _, m := range r.store.movies {
		if m.ID == req.MovieID && m.TheaterID == req.TheaterID && m.RoomID == req.RoomID {
			movie = m
			break
		}
	}
	if movie == nil {
		return nil, fmt.Errorf("%w in the selected theater/room", ErrMovieNotFound)
	}
	if !room.HasShowtime(req.Showtime) {
		return nil, ErrInvalidShowtime
	}

	for _, s := range req.Seats {
		free, err := room.Seating.IsFree(s.Row, s.Col)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, &model.SeatError{Row: s.Row, Col: s.Col, Err: model.ErrSeatAlreadyBooked}
		}
	}

	booked := make(map[model.Seat]bool, len(req.Seats))
	for _, s := range req.Seats {
		if booked[s] {
			continue
		}
		if err := room.Seating.Book(s.Row, s.Col); err != nil {
			// unreachable after the pre-check above
			return nil, err
		}
		booked[s] = true
	}
	movie.BookedTickets += len(req.Seats)
	r.store.touch()

	return &model.Booking{
		RequestID:     req.ID,
		MovieID:       movie.ID,
		MovieTitle:    movie.Title,
		TheaterID:     theater.ID,
		TheaterName:   theater.Name,
		RoomID:        room.ID,
		RoomName:      room.Name,
		Showtime:      req.Showtime,
		Seats:         append([]model.Seat(nil), req.Seats...),
		BookedTickets: movie.BookedTickets,
	}, nil
}
