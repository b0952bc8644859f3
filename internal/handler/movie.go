package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// MovieHandler serves movie registration and the movie listings.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

// NewMovieHandler constructs a MovieHandler and panics if the
// repository is nil.
func NewMovieHandler(movies *repository.MovieRepo) *MovieHandler {
	if movies == nil {
		panic("nil repository passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: movies}
}

// CreateMovie handles POST /api/movies.
func (h *MovieHandler) CreateMovie(c echo.Context) error {
	var in repository.MovieInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	m, err := h.Movies.Create(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Movie added successfully",
		"movie":   m,
	})
}

// ListMovies handles GET /api/movies.  ?title= filters by a
// case-insensitive substring and ?sortBy=popularity puts the most
// popular movies first.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	q := repository.MovieQuery{
		Title:            c.QueryParam("title"),
		SortByPopularity: strings.EqualFold(c.QueryParam("sortBy"), "popularity"),
	}
	return c.JSON(http.StatusOK, h.Movies.List(q))
}

// GetTickets handles GET /api/movies/tickets?title= and returns the
// number of tickets booked for the movie with that exact title.
func (h *MovieHandler) GetTickets(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": "Movie title is required"})
	}
	m, err := h.Movies.FindByTitle(title)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":         m.Title,
		"bookedTickets": m.BookedTickets,
	})
}

// GetPopular handles GET /api/movies/popular.
func (h *MovieHandler) GetPopular(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Movies.Popular())
}
