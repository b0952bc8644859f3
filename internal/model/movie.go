package model

import "time"

// MovieStatus is the lifecycle state of a movie.  It only moves
// forward: pending, then started, then done.
type MovieStatus string

const (
	StatusPending MovieStatus = "pending"
	StatusStarted MovieStatus = "started"
	StatusDone    MovieStatus = "done"
)

// Movie is a film scheduled in a room of a theater.
//
// Fields:
//  ID            – global sequential identifier.
//  TheaterID     – theater the movie plays in (immutable).
//  RoomID        – room within that theater (immutable).
//  Duration      – running time in minutes.
//  Popularity    – ranking score, 0 when not supplied.
//  Status        – lifecycle state advanced by the lifecycle ticker.
//  BookedTickets – seats booked so far; only ever grows.
//  Showtime      – room showtime the movie is scheduled for.
//  StartsAt      – Showtime parsed as a timestamp; zero when it cannot be parsed.
type Movie struct {
	ID            int         `json:"id"`
	Title         string      `json:"title"`
	Actor         string      `json:"actor"`
	Actress       string      `json:"actress"`
	Duration      int         `json:"duration"`
	TheaterID     int         `json:"theaterId"`
	RoomID        int         `json:"roomId"`
	Popularity    float64     `json:"popularity"`
	Status        MovieStatus `json:"status"`
	BookedTickets int         `json:"bookedTickets"`
	Showtime      string      `json:"showtime"`
	StartsAt      time.Time   `json:"-"`
}

// EndsAt returns when the movie finishes.
func (m *Movie) EndsAt() time.Time {
	return m.StartsAt.Add(time.Duration(m.Duration) * time.Minute)
}

// Scheduled reports whether the movie has a parsed start time.
func (m *Movie) Scheduled() bool { return !m.StartsAt.IsZero() }

// NextStatus returns the status a movie should move to at now, and
// whether it moves at all.  At most one step is taken per call: a
// pending movie that is already past its end first becomes started and
// reaches done on a later call.
func NextStatus(m Movie, now time.Time) (MovieStatus, bool) {
	if !m.Scheduled() {
		return m.Status, false
	}
	switch m.Status {
	case StatusPending:
		if !now.Before(m.StartsAt) {
			return StatusStarted, true
		}
	case StatusStarted:
		if !now.Before(m.EndsAt()) {
			return StatusDone, true
		}
	}
	return m.Status, false
}

// showtimeLayouts lists the formats tried when a showtime is turned into
// a timestamp.  Layouts without a zone are read as UTC.
var showtimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseShowtime converts a showtime identifier into a timestamp.  The
// second result is false for identifiers that are not timestamps.
func ParseShowtime(s string) (time.Time, bool) {
	for _, layout := range showtimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
