// Package queue holds the serialized booking queue and the messages
// exchanged over the message broker once a booking is applied.
package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// BookingConfirmedEvent is published when a booking request has been
// applied.  It contains enough information for downstream consumers to
// log, notify or trigger analytics without querying the service.
type BookingConfirmedEvent struct {
	RequestID     string   `json:"request_id"`
	MovieID       int      `json:"movie_id"`
	MovieTitle    string   `json:"movie_title"`
	TheaterID     int      `json:"theater_id"`
	TheaterName   string   `json:"theater_name"`
	RoomID        int      `json:"room_id"`
	RoomName      string   `json:"room_name"`
	Showtime      string   `json:"showtime"`
	SeatLabels    []string `json:"seats"`
	BookedTickets int      `json:"booked_tickets"`
	ConfirmedAt   string   `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event for an applied booking.
func NewBookingConfirmedEvent(b *model.Booking, at time.Time) BookingConfirmedEvent {
	labels := make([]string, len(b.Seats))
	for i, s := range b.Seats {
		labels[i] = SeatLabel(s)
	}
	return BookingConfirmedEvent{
		RequestID:     b.RequestID,
		MovieID:       b.MovieID,
		MovieTitle:    b.MovieTitle,
		TheaterID:     b.TheaterID,
		TheaterName:   b.TheaterName,
		RoomID:        b.RoomID,
		RoomName:      b.RoomName,
		Showtime:      b.Showtime,
		SeatLabels:    labels,
		BookedTickets: b.BookedTickets,
		ConfirmedAt:   at.UTC().Format(time.RFC3339),
	}
}

// SeatLabel formats a seat the way the seating visualization numbers
// it: rows and seats counted from 1.
func SeatLabel(s model.Seat) string {
	return fmt.Sprintf("R%dS%d", s.Row+1, s.Col+1)
}
