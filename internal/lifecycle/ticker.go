// Package lifecycle advances movies from pending to started to done as
// wall-clock time passes their showtime and end time.
package lifecycle

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/clock"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// DefaultInterval is how often movies are rescanned.
const DefaultInterval = time.Minute

// Advancer applies one lifecycle step to every movie that is due.
// repository.MovieRepo satisfies it.
type Advancer interface {
	AdvanceStatuses(now time.Time) []repository.Transition
}

// Ticker rescans all movies on a fixed interval.  A movie can lag
// behind its true state by up to one interval; a step that was due
// during a missed interval is applied on the next tick.
type Ticker struct {
	movies   Advancer
	clock    clock.Clock
	interval time.Duration
}

// NewTicker returns a Ticker firing every interval (DefaultInterval
// when interval is not positive).
func NewTicker(movies Advancer, c clock.Clock, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{movies: movies, clock: c, interval: interval}
}

// Tick runs one scan at the clock's current time.
func (t *Ticker) Tick() []repository.Transition {
	transitions := t.movies.AdvanceStatuses(t.clock.Now())
	for _, tr := range transitions {
		log.Printf("lifecycle: movie %d (%q) %s -> %s", tr.MovieID, tr.Title, tr.From, tr.To)
	}
	return transitions
}

// Run scans once immediately and then on every interval until ctx is
// cancelled.  It never touches the booking queue.
func (t *Ticker) Run(ctx context.Context) {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	t.Tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}
