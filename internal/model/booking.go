package model

import (
	"encoding/json"
	"errors"
)

// ErrIncompleteSeat is returned when a seat in a request body lacks its
// row or its col.
var ErrIncompleteSeat = errors.New("each seat needs a row and a col")

// Seat addresses one seat of a seating grid by zero-based row and column.
type Seat struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// UnmarshalJSON requires both coordinates, so {} is not read as seat
// (0, 0).
func (s *Seat) UnmarshalJSON(b []byte) error {
	var raw struct {
		Row *int `json:"row"`
		Col *int `json:"col"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Row == nil || raw.Col == nil {
		return ErrIncompleteSeat
	}
	s.Row, s.Col = *raw.Row, *raw.Col
	return nil
}

// BookingRequest is a request to book seats for a movie showtime.  It
// only lives while it waits in the booking queue and is processed.
type BookingRequest struct {
	ID        string `json:"id"`
	MovieID   int    `json:"movieId"`
	TheaterID int    `json:"theaterId"`
	RoomID    int    `json:"roomId"`
	Showtime  string `json:"showtime"`
	Seats     []Seat `json:"seats"`
}

// Booking is the result of an applied booking request.
type Booking struct {
	RequestID     string `json:"requestId"`
	MovieID       int    `json:"movieId"`
	MovieTitle    string `json:"movieTitle"`
	TheaterID     int    `json:"theaterId"`
	TheaterName   string `json:"theaterName"`
	RoomID        int    `json:"roomId"`
	RoomName      string `json:"roomName"`
	Showtime      string `json:"showtime"`
	Seats         []Seat `json:"bookedSeats"`
	BookedTickets int    `json:"bookedTickets"`
}
