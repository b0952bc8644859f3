package repository

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MovieInput is the payload used to register a movie.  Showtime is
// optional and defaults to the first showtime of the room.
type MovieInput struct {
	Title      string   `json:"title"`
	Actor      string   `json:"actor"`
	Actress    string   `json:"actress"`
	Duration   int      `json:"duration"`
	TheaterID  int      `json:"theaterId"`
	RoomID     int      `json:"roomId"`
	Popularity *float64 `json:"popularity"`
	Showtime   string   `json:"showtime"`
}

// MovieView is a movie joined with the names of its theater and room
// and the showtimes of that room.
type MovieView struct {
	model.Movie
	Theater   string   `json:"theater"`
	Room      string   `json:"room"`
	Showtimes []string `json:"showtimes"`
}

// MovieQuery filters and orders the movie listing.
type MovieQuery struct {
	Title            string // case-insensitive substring; empty matches all
	SortByPopularity bool   // most popular first
}

// Transition records a lifecycle step applied to a movie.
type Transition struct {
	MovieID int
	Title   string
	From    model.MovieStatus
	To      model.MovieStatus
}

// MovieRepo registers movies, lists them and advances their lifecycle.
type MovieRepo struct {
	store *Store
}

// NewMovieRepo constructs a MovieRepo over the given store.
func NewMovieRepo(s *Store) *MovieRepo {
	return &MovieRepo{store: s}
}

func validateMovie(in MovieInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "", strings.TrimSpace(in.Actor) == "", strings.TrimSpace(in.Actress) == "":
		return fmt.Errorf("%w: title, actor and actress are required", ErrInvalidInput)
	case in.Duration <= 0:
		return fmt.Errorf("%w: duration must be a positive number of minutes", ErrInvalidInput)
	case in.TheaterID <= 0 || in.RoomID <= 0:
		return fmt.Errorf("%w: theaterId and roomId are required", ErrInvalidInput)
	case in.Popularity != nil && *in.Popularity < 0:
		return fmt.Errorf("%w: popularity cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Create registers a movie in an existing theater room.  The movie
// starts pending with no booked tickets.
func (r *MovieRepo) Create(in MovieInput) (*model.Movie, error) {
	if err := validateMovie(in); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.theaterByID(in.TheaterID)
	if !ok {
		return nil, ErrTheaterNotFound
	}
	room, ok := t.Room(in.RoomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	showtime := in.Showtime
	if showtime == "" {
		if len(room.Showtimes) > 0 {
			showtime = room.Showtimes[0]
		}
	} else if !room.HasShowtime(showtime) {
		return nil, ErrInvalidShowtime
	}

	m := &model.Movie{
		ID:        len(r.store.movies) + 1,
		Title:     in.Title,
		Actor:     in.Actor,
		Actress:   in.Actress,
		Duration:  in.Duration,
		TheaterID: in.TheaterID,
		RoomID:    in.RoomID,
		Status:    model.StatusPending,
		Showtime:  showtime,
	}
	if in.Popularity != nil {
		m.Popularity = *in.Popularity
	}
	if startsAt, ok := model.ParseShowtime(showtime); ok {
		m.StartsAt = startsAt
	}
	r.store.movies = append(r.store.movies, m)
	r.store.touch()

	out := *m
	return &out, nil
}

// List returns enriched movies matching q.
func (r *MovieRepo) List(q MovieQuery) []MovieView {
	needle := strings.ToLower(strings.TrimSpace(q.Title))

	r.store.mu.RLock()
	out := make([]MovieView, 0, len(r.store.movies))
	for _, m := range r.store.movies {
		if needle != "" && !strings.Contains(strings.ToLower(m.Title), needle) {
			continue
		}
		v := MovieView{Movie: *m, Theater: "Unknown Theater", Room: "Unknown Room", Showtimes: []string{}}
		if t, ok := r.store.theaterByID(m.TheaterID); ok {
			v.Theater = t.Name
			if room, ok := t.Room(m.RoomID); ok {
				v.Room = room.Name
				v.Showtimes = append([]string(nil), room.Showtimes...)
			}
		}
		out = append(out, v)
	}
	r.store.mu.RUnlock()

	if q.SortByPopularity {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Popularity > out[j].Popularity })
	}
	return out
}

// Popular returns all movies, most popular first.  The stored order is
// left untouched.
func (r *MovieRepo) Popular() []model.Movie {
	r.store.mu.RLock()
	out := make([]model.Movie, len(r.store.movies))
	for i, m := range r.store.movies {
		out[i] = *m
	}
	r.store.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Popularity > out[j].Popularity })
	return out
}

// FindByTitle returns the first movie whose title equals title, ignoring case.
func (r *MovieRepo) FindByTitle(title string) (*model.Movie, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, m := range r.store.movies {
		if strings.EqualFold(m.Title, title) {
			out := *m
			return &out, nil
		}
	}
	return nil, ErrMovieNotFound
}

// GetByID returns a copy of a movie.
func (r *MovieRepo) GetByID(id int) (*model.Movie, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, m := range r.store.movies {
		if m.ID == id {
			out := *m
			return &out, nil
		}
	}
	return nil, ErrMovieNotFound
}

// AdvanceStatuses moves every movie at most one lifecycle step for the
// time now and reports the steps taken.  Only Status is written.
func (r *MovieRepo) AdvanceStatuses(now time.Time) []Transition {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []Transition
	for _, m := range r.store.movies {
		next, ok := model.NextStatus(*m, now)
		if !ok {
			continue
		}
		out = append(out, Transition{MovieID: m.ID, Title: m.Title, From: m.Status, To: next})
		m.Status = next
	}
	if len(out) > 0 {
		r.store.touch()
	}
	return out
}
