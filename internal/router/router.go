package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/movie-ticket-booking/internal/handler" // handlers implementing each endpoint
)

// RegisterRoutes registers operational routes on the provided Echo
// instance.  At the moment it only exposes a health check reporting the
// booking queue depth.
func RegisterRoutes(e *echo.Echo, q handler.Depth) {
	// Load balancers and monitoring systems poll this endpoint.
	e.GET("/healthz", handler.Health(q))
}

// RegisterTheaters registers theater management and seating routes under
// /api.  cache wraps the read-only endpoints.
func RegisterTheaters(e *echo.Echo, h *handler.TheaterHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api/theaters")
	g.POST("", h.CreateTheater)
	g.GET("", h.ListTheaters, cache)
	g.GET("/:id", h.GetTheater, cache)
	// Seating views are pure reads of the current grid.
	g.GET("/:id/rooms/:roomId/seating", h.GetSeating, cache)
	g.GET("/:id/rooms/:roomId/seating/text", h.GetSeatingText, cache)
}

// RegisterMovies registers movie routes under /api/movies.  The static
// paths /tickets and /popular take precedence over any parameter route.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api/movies")
	g.POST("", h.CreateMovie)
	g.GET("", h.ListMovies, cache)
	g.GET("/tickets", h.GetTickets, cache)
	g.GET("/popular", h.GetPopular, cache)
}

// RegisterBooking registers the booking endpoint.  limit throttles
// clients before their requests reach the booking queue.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, limit echo.MiddlewareFunc) {
	e.POST("/api/book-ticket", h.BookTicket, limit)
}
