package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate addresses a room in the 3D world grid
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Origin is where every new player starts
var Origin = Coordinate{}

// Key returns the canonical storage key for the coordinate ("x,y,z")
func (c Coordinate) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y) + "," + strconv.Itoa(c.Z)
}

// String implements fmt.Stringer
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Add returns the coordinate offset by the given delta
func (c Coordinate) Add(d Coordinate) Coordinate {
	return Coordinate{X: c.X + d.X, Y: c.Y + d.Y, Z: c.Z + d.Z}
}

// Step returns the neighbouring coordinate in the given direction
func (c Coordinate) Step(dir Direction) Coordinate {
	return c.Add(dir.Delta())
}

// ParseCoordinate parses any reasonable textual form of an integer triple.
// "1,2,3", "(1, 2, 3)", "[1,2,3]" and "1 2 3" all resolve to the same value,
// so their keys always collide.
func ParseCoordinate(s string) (Coordinate, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.Trim(trimmed, "()[]{}")
	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 3 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}

	var parts [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
		}
		parts[i] = n
	}
	return Coordinate{X: parts[0], Y: parts[1], Z: parts[2]}, nil
}

// Direction is a canonical movement direction
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions lists every direction in display order
var Directions = []Direction{North, South, East, West, Up, Down}

var directionDeltas = map[Direction]Coordinate{
	North: {Y: 1},
	South: {Y: -1},
	East:  {X: 1},
	West:  {X: -1},
	Up:    {Z: 1},
	Down:  {Z: -1},
}

var directionAliases = map[string]Direction{
	"n": North, "north": North,
	"s": South, "south": South,
	"e": East, "east": East,
	"w": West, "west": West,
	"u": Up, "up": Up,
	"d": Down, "down": Down,
}

// ParseDirection resolves a full direction name or single-letter shorthand
func ParseDirection(s string) (Direction, bool) {
	dir, ok := directionAliases[strings.ToLower(strings.TrimSpace(s))]
	return dir, ok
}

// Delta returns the coordinate offset for one step in this direction
func (d Direction) Delta() Coordinate {
	return directionDeltas[d]
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	}
	return ""
}
