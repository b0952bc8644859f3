package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Depth reports how many booking requests are waiting.  queue.Queue
// satisfies it.
type Depth interface {
	Len() int
}

// Health returns a health-check handler used by load balancers and
// monitoring systems to verify that the service is running.  It also
// reports the booking queue depth so a growing backlog is visible.
func Health(q Depth) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "queue_depth": q.Len()})
	}
}
