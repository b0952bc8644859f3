package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// Submitter queues a booking request and waits for its outcome.
// queue.Processor satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req model.BookingRequest) (*model.Booking, error)
}

// BookingHandler accepts seat bookings and hands them to the booking
// queue.  Requests are processed one at a time in arrival order; the
// handler only waits for its own request's outcome.
type BookingHandler struct {
	Bookings Submitter
	Timeout  time.Duration
}

// NewBookingHandler constructs a BookingHandler.  timeout bounds how
// long a client waits for its request to reach the front of the queue.
func NewBookingHandler(bookings Submitter, timeout time.Duration) *BookingHandler {
	if bookings == nil {
		panic("nil submitter passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Timeout: timeout}
}

// BookTicket handles POST /api/book-ticket.
func (h *BookingHandler) BookTicket(c echo.Context) error {
	var req model.BookingRequest
	if err := c.Bind(&req); err != nil {
		if errors.Is(err, model.ErrIncompleteSeat) {
			return writeError(c, fmt.Errorf("%w: %v", repository.ErrInvalidInput, model.ErrIncompleteSeat))
		}
		return invalidBody(c)
	}
	req.ID = c.Response().Header().Get(echo.HeaderXRequestID)

	ctx := c.Request().Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	booking, err := h.Bookings.Submit(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Tickets booked successfully",
		"requestId":     booking.RequestID,
		"bookedSeats":   booking.Seats,
		"bookedTickets": booking.BookedTickets,
	})
}
