package repository

import (
	"sync"
	"sync/atomic"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Store is the process-wide state shared by the repositories, the
// booking processor and the lifecycle ticker.  It starts empty and is
// never persisted: a restart begins with no theaters and no movies.
//
// Readers get copies of the entities; only the repositories in this
// package touch the originals, and only while holding mu.
type Store struct {
	mu       sync.RWMutex
	theaters []*model.Theater
	movies   []*model.Movie

	// version increases on every mutation so read caches can key on it.
	version atomic.Uint64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Version returns a counter that changes whenever theaters, movies or
// seating change.
func (s *Store) Version() uint64 { return s.version.Load() }

func (s *Store) touch() { s.version.Add(1) }

// theaterByID must be called with mu held.
func (s *Store) theaterByID(id int) (*model.Theater, bool) {
	for _, t := range s.theaters {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

func cloneRoom(r *model.Room) *model.Room {
	out := *r
	out.Showtimes = append([]string(nil), r.Showtimes...)
	out.Seating = r.Seating.Clone()
	return &out
}

func cloneTheater(t *model.Theater) *model.Theater {
	out := *t
	out.Rooms = make([]*model.Room, len(t.Rooms))
	for i, r := range t.Rooms {
		out.Rooms[i] = cloneRoom(r)
	}
	return &out
}
