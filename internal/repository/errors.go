// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking processor and the HTTP handlers to distinguish between
// different failure scenarios. Seat-level failures live in the model
// package next to the seating grid that produces them.
package repository

import "errors"

// ErrInvalidInput is returned when a request is missing required
// fields or carries malformed values. Nothing is mutated when it is
// returned. Handlers should translate this into an HTTP 400 response.
var ErrInvalidInput = errors.New("invalid input")

// ErrTheaterNotFound is returned when a theater lookup fails.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrRoomNotFound is returned when a room does not exist in the
// selected theater.
var ErrRoomNotFound = errors.New("room not found in the selected theater")

// ErrMovieNotFound is returned when no movie matches. For bookings the
// movie must match the movie, theater and room IDs together.
var ErrMovieNotFound = errors.New("movie not found")

// ErrInvalidShowtime is returned when a showtime is not offered by the
// room.
var ErrInvalidShowtime = errors.New("invalid showtime")
