package model

// Capacity describes the seating layout of a room.
type Capacity struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Room is a screening room inside a theater.  A room's ID is its
// 1-based position in the list submitted with the theater, so the same
// room ID exists in every theater that has that many rooms.
//
// Fields:
//  ID        – 1-based position within the owning theater.
//  Name      – display name of the room.
//  Capacity  – rows and columns of the seating grid.
//  Showtimes – opaque showtime identifiers accepted for bookings.
//  Seating   – booked/free state of every seat.
type Room struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Capacity  Capacity     `json:"capacity"`
	Showtimes []string     `json:"showtimes"`
	Seating   *SeatingGrid `json:"seating"`
}

// NewRoom builds a room with an empty seating grid sized to capacity.
func NewRoom(id int, name string, capacity Capacity, showtimes []string) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		Capacity:  capacity,
		Showtimes: append([]string(nil), showtimes...),
		Seating:   NewSeatingGrid(capacity.Rows, capacity.Columns),
	}
}

// HasShowtime reports whether showtime is one of the room's showtimes.
func (r *Room) HasShowtime(showtime string) bool {
	for _, s := range r.Showtimes {
		if s == showtime {
			return true
		}
	}
	return false
}

// Theater owns an ordered list of rooms.
type Theater struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Rooms    []*Room `json:"rooms"`
}

// Room returns the room with the given theater-local ID.
func (t *Theater) Room(id int) (*Room, bool) {
	for _, r := range t.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}
