package repository

import (
	"fmt"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// RoomInput describes a room submitted with a new theater.  Capacity
// and Showtimes are pointers/slices so that a missing field can be told
// apart from an empty one.
type RoomInput struct {
	Name      string          `json:"name"`
	Capacity  *model.Capacity `json:"capacity"`
	Showtimes []string        `json:"showtimes"`
}

// TheaterInput is the payload used to register a theater.
type TheaterInput struct {
	Name     string      `json:"name"`
	Location string      `json:"location"`
	Rooms    []RoomInput `json:"rooms"`
}

// TheaterRepo registers theaters and reads them back.
type TheaterRepo struct {
	store *Store
}

// NewTheaterRepo constructs a TheaterRepo over the given store.
func NewTheaterRepo(s *Store) *TheaterRepo {
	return &TheaterRepo{store: s}
}

func validateTheater(in TheaterInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Location) == "" || in.Rooms == nil {
		return fmt.Errorf("%w: name, location and rooms are required", ErrInvalidInput)
	}
	for i, r := range in.Rooms {
		if strings.TrimSpace(r.Name) == "" || r.Capacity == nil || r.Showtimes == nil {
			return fmt.Errorf("%w: room %d needs name, capacity and showtimes", ErrInvalidInput, i+1)
		}
		if r.Capacity.Rows <= 0 || r.Capacity.Columns <= 0 {
			return fmt.Errorf("%w: room %d capacity must have positive rows and columns", ErrInvalidInput, i+1)
		}
	}
	return nil
}

// Create validates the input and registers a new theater.  Theater IDs
// are sequential starting at 1; room IDs are the 1-based position of
// the room in the submitted list.  Every room starts with an empty
// seating grid.  The returned theater is a copy.
func (r *TheaterRepo) Create(in TheaterInput) (*model.Theater, error) {
	if err := validateTheater(in); err != nil {
		return nil, err
	}
	rooms := make([]*model.Room, len(in.Rooms))
	for i, ri := range in.Rooms {
		rooms[i] = model.NewRoom(i+1, ri.Name, *ri.Capacity, ri.Showtimes)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t := &model.Theater{
		ID:       len(r.store.theaters) + 1,
		Name:     in.Name,
		Location: in.Location,
		Rooms:    rooms,
	}
	r.store.theaters = append(r.store.theaters, t)
	r.store.touch()
	return cloneTheater(t), nil
}

// List returns copies of all theaters in registration order.
func (r *TheaterRepo) List() []*model.Theater {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*model.Theater, len(r.store.theaters))
	for i, t := range r.store.theaters {
		out[i] = cloneTheater(t)
	}
	return out
}

// GetByID returns a copy of one theater or ErrTheaterNotFound.
func (r *TheaterRepo) GetByID(id int) (*model.Theater, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.theaterByID(id)
	if !ok {
		return nil, ErrTheaterNotFound
	}
	return cloneTheater(t), nil
}

// Seating returns a copy of a room's seating grid.
func (r *TheaterRepo) Seating(theaterID, roomID int) (*model.SeatingGrid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.theaterByID(theaterID)
	if !ok {
		return nil, ErrTheaterNotFound
	}
	room, ok := t.Room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Seating.Clone(), nil
}
