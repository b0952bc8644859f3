package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/render"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// TheaterHandler serves theater registration, listing and the seating
// views of a room.
type TheaterHandler struct {
	Theaters *repository.TheaterRepo
}

// NewTheaterHandler constructs a TheaterHandler and panics if the
// repository is nil.
func NewTheaterHandler(theaters *repository.TheaterRepo) *TheaterHandler {
	if theaters == nil {
		panic("nil repository passed to NewTheaterHandler")
	}
	return &TheaterHandler{Theaters: theaters}
}

// CreateTheater handles POST /api/theaters.
func (h *TheaterHandler) CreateTheater(c echo.Context) error {
	var in repository.TheaterInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	t, err := h.Theaters.Create(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Theater added successfully",
		"theater": t,
	})
}

// ListTheaters handles GET /api/theaters.
func (h *TheaterHandler) ListTheaters(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Theaters.List())
}

// GetTheater handles GET /api/theaters/:id.
func (h *TheaterHandler) GetTheater(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, repository.ErrTheaterNotFound)
	}
	t, err := h.Theaters.GetByID(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// GetSeating handles GET /api/theaters/:id/rooms/:roomId/seating and
// returns every seat as {x: col, y: row, value: 0|1}.
func (h *TheaterHandler) GetSeating(c echo.Context) error {
	theaterID, ok := pathID(c, "id")
	if !ok {
		return writeError(c, repository.ErrTheaterNotFound)
	}
	roomID, ok := pathID(c, "roomId")
	if !ok {
		return writeError(c, repository.ErrRoomNotFound)
	}
	grid, err := h.Theaters.Seating(theaterID, roomID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, render.Points(grid))
}

// GetSeatingText handles GET /api/theaters/:id/rooms/:roomId/seating/text
// and draws the room as rows of O (free) and X (booked).
func (h *TheaterHandler) GetSeatingText(c echo.Context) error {
	theaterID, ok := pathID(c, "id")
	if !ok {
		return writeError(c, repository.ErrTheaterNotFound)
	}
	roomID, ok := pathID(c, "roomId")
	if !ok {
		return writeError(c, repository.ErrRoomNotFound)
	}
	grid, err := h.Theaters.Seating(theaterID, roomID)
	if err != nil {
		return writeError(c, err)
	}
	return c.String(http.StatusOK, render.Text(grid))
}
