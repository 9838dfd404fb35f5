package game

import (
	"fmt"

	"github.com/Nityasav/wyldstoneja/pkg/config"
)

// Point represents a coordinate on the game board
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add offsets p by d
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Direction is one of the four axis-aligned moves
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d < Up || d > Right {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// MarshalText encodes the direction by name
func (d Direction) MarshalText() ([]byte, error) {
	if d < Up || d > Right {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText decodes a direction name
func (d *Direction) UnmarshalText(b []byte) error {
	parsed, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("invalid direction %q", string(b))
	}
	*d = parsed
	return nil
}

// ParseDirection maps "up", "down", "left" and "right" to a Direction
func ParseDirection(s string) (Direction, bool) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), true
		}
	}
	return Up, false
}

// Delta returns the one-cell offset for the direction (y grows downward)
func (d Direction) Delta() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	case Right:
		return Point{X: 1, Y: 0}
	}
	return Point{}
}

// Opposite returns the reversed direction
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// NextHead moves head one cell in dir
func NextHead(head Point, dir Direction) Point {
	return head.Add(dir.Delta())
}

// Wrap maps any position onto the board, including negative coordinates
func Wrap(p Point) Point {
	n := config.GridSize
	return Point{
		X: ((p.X % n) + n) % n,
		Y: ((p.Y % n) + n) % n,
	}
}

// InBounds reports whether p lies on the board
func InBounds(p Point) bool {
	return p.X >= 0 && p.X < config.GridSize && p.Y >= 0 && p.Y < config.GridSize
}

// Manhattan returns the taxicab distance between a and b
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// InitialChain returns the 3-segment chain centered on the board, head first
func InitialChain() []Point {
	mid := config.GridSize / 2
	chain := make([]Point, config.InitialLength)
	for i := range chain {
		chain[i] = Point{X: mid, Y: mid + i}
	}
	return chain
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
