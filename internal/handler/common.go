package handler // handler defines http handlers

import (
	"context"  // context.DeadlineExceeded and Canceled from waiting submitters
	"errors"   // errors.Is / errors.As against repository sentinels
	"net/http" // http status codes
	"strconv"  // strconv parses path parameters

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/movie-ticket-booking/internal/model"      // seat errors
	"github.com/iliyamo/movie-ticket-booking/internal/queue"      // processor shutdown error
	"github.com/iliyamo/movie-ticket-booking/internal/repository" // lookup and validation errors
)

// errorKind maps a sentinel error to the HTTP status and the machine
// readable kind reported in the response body.
type errorKind struct {
	err    error
	status int
	kind   string
}

var errorKinds = []errorKind{
	{repository.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{repository.ErrTheaterNotFound, http.StatusNotFound, "theater_not_found"},
	{repository.ErrRoomNotFound, http.StatusNotFound, "room_not_found"},
	{repository.ErrMovieNotFound, http.StatusNotFound, "movie_not_found"},
	{repository.ErrInvalidShowtime, http.StatusNotFound, "invalid_showtime"},
	{model.ErrSeatOutOfBounds, http.StatusBadRequest, "seat_out_of_bounds"},
	{model.ErrSeatAlreadyBooked, http.StatusBadRequest, "seat_already_booked"},
	{queue.ErrProcessorStopped, http.StatusServiceUnavailable, "unavailable"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "timeout"},
	{context.Canceled, http.StatusServiceUnavailable, "canceled"},
}

// writeError renders err as {"error": kind, "message": text}.  Seat
// errors also carry the offending row and col.  Unknown errors become a
// 500 without leaking their text.
func writeError(c echo.Context, err error) error {
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		body := echo.Map{"error": k.kind, "message": err.Error()}
		var seatErr *model.SeatError
		if errors.As(err, &seatErr) {
			body["row"] = seatErr.Row
			body["col"] = seatErr.Col
		}
		return c.JSON(k.status, body)
	}
	c.Logger().Errorf("unhandled error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "internal server error"})
}

// invalidBody is returned when the request body cannot be decoded.
func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": "Invalid input data"})
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
