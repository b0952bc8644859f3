package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSeatOutOfBounds is returned when a row or column falls outside
// the grid of a room.
var ErrSeatOutOfBounds = errors.New("seat out of bounds")

// ErrSeatAlreadyBooked is returned when a seat has already been booked.
var ErrSeatAlreadyBooked = errors.New("seat already booked")

// SeatError reports which seat a seat-level failure refers to.  It
// unwraps to ErrSeatOutOfBounds or ErrSeatAlreadyBooked so callers can
// use errors.Is on the kind and errors.As to recover the coordinates.
type SeatError struct {
	Row int
	Col int
	Err error
}

func (e *SeatError) Error() string {
	switch {
	case errors.Is(e.Err, ErrSeatOutOfBounds):
		return fmt.Sprintf("Seat at row %d and col %d is out of bounds", e.Row, e.Col)
	case errors.Is(e.Err, ErrSeatAlreadyBooked):
		return fmt.Sprintf("Seat at row %d and col %d is already booked", e.Row, e.Col)
	}
	return fmt.Sprintf("seat at row %d and col %d: %v", e.Row, e.Col, e.Err)
}

func (e *SeatError) Unwrap() error { return e.Err }

// SeatingGrid records which seats of a room are booked.  Its
// dimensions are fixed when the room is created and a booked seat is
// never released.
type SeatingGrid struct {
	rows  int
	cols  int
	cells [][]bool
}

// NewSeatingGrid allocates a rows x cols grid with every seat free.
func NewSeatingGrid(rows, cols int) *SeatingGrid {
	cells := make([][]bool, rows)
	for r := range cells {
		cells[r] = make([]bool, cols)
	}
	return &SeatingGrid{rows: rows, cols: cols, cells: cells}
}

// Rows returns the number of seat rows.
func (g *SeatingGrid) Rows() int { return g.rows }

// Cols returns the number of seats per row.
func (g *SeatingGrid) Cols() int { return g.cols }

// InBounds reports whether (row, col) addresses a seat of the grid.
func (g *SeatingGrid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// IsFree reports whether the seat is still available.
func (g *SeatingGrid) IsFree(row, col int) (bool, error) {
	if !g.InBounds(row, col) {
		return false, &SeatError{Row: row, Col: col, Err: ErrSeatOutOfBounds}
	}
	return !g.cells[row][col], nil
}

// Book marks the seat as taken.
func (g *SeatingGrid) Book(row, col int) error {
	free, err := g.IsFree(row, col)
	if err != nil {
		return err
	}
	if !free {
		return &SeatError{Row: row, Col: col, Err: ErrSeatAlreadyBooked}
	}
	g.cells[row][col] = true
	return nil
}

// Snapshot returns a copy of the grid that callers may keep.
func (g *SeatingGrid) Snapshot() [][]bool {
	out := make([][]bool, g.rows)
	for r := range g.cells {
		out[r] = append([]bool(nil), g.cells[r]...)
	}
	return out
}

// Clone returns an independent copy of the grid.
func (g *SeatingGrid) Clone() *SeatingGrid {
	return &SeatingGrid{rows: g.rows, cols: g.cols, cells: g.Snapshot()}
}

// BookedCount returns how many seats are booked.
func (g *SeatingGrid) BookedCount() int {
	n := 0
	for _, row := range g.cells {
		for _, booked := range row {
			if booked {
				n++
			}
		}
	}
	return n
}

// MarshalJSON renders the grid as rows of 0 (free) and 1 (booked).
func (g *SeatingGrid) MarshalJSON() ([]byte, error) {
	out := make([][]int, g.rows)
	for r, row := range g.cells {
		out[r] = make([]int, len(row))
		for c, booked := range row {
			if booked {
				out[r][c] = 1
			}
		}
	}
	return json.Marshal(out)
}
