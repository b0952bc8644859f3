// Package render turns a seating grid into read-only views: a flat list
// of points for charting and a text map for terminals.  Neither view
// mutates the grid.
package render

import (
	"strconv"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Point is one seat in the flat projection: X is the column, Y the row
// and Value 1 when the seat is booked.
type Point struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Value int `json:"value"`
}

// Points lists every seat row by row, left to right.
func Points(g *model.SeatingGrid) []Point {
	cells := g.Snapshot()
	out := make([]Point, 0, g.Rows()*g.Cols())
	for y, row := range cells {
		for x, booked := range row {
			p := Point{X: x, Y: y}
			if booked {
				p.Value = 1
			}
			out = append(out, p)
		}
	}
	return out
}

// Text draws the grid with O for a free seat and X for a booked one,
// one line per row followed by its 1-based row number.
func Text(g *model.SeatingGrid) string {
	var b strings.Builder
	b.WriteString("Seating Arrangement:\n")
	for y, row := range g.Snapshot() {
		marks := make([]string, len(row))
		for x, booked := range row {
			marks[x] = "O"
			if booked {
				marks[x] = "X"
			}
		}
		b.WriteString(strings.Join(marks, " "))
		b.WriteString("  Row ")
		b.WriteString(strconv.Itoa(y + 1))
		b.WriteByte('\n')
	}
	return b.String()
}
