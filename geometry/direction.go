package geometry

import "strings"

// Direction is a bit set over the four compass sides.
type Direction uint8

const (
	North Direction = 1 << iota
	South
	East
	West
)

// Directions in N, S, E, W order.
var Directions = [4]Direction{North, South, East, West}

func (d Direction) Has(o Direction) bool { return d&o != 0 }

// Vertical reports whether d is North or South.
func (d Direction) Vertical() bool { return d == North || d == South }

// Index maps a single direction to 0..3 in N, S, E, W order.
func (d Direction) Index() int {
	switch d {
	case North:
		return 0
	case South:
		return 1
	case East:
		return 2
	case West:
		return 3
	}
	return -1
}

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
	}
	return 0
}

// Sign is +1 for North/East and -1 for South/West.
func (d Direction) Sign() float64 {
	if d == North || d == East {
		return 1
	}
	return -1
}

func (d Direction) String() string {
	if d == 0 {
		return ""
	}
	var b strings.Builder
	for i, name := range [4]string{"N", "S", "E", "W"} {
		if d.Has(Directions[i]) {
			if b.Len() > 0 {
				b.WriteByte('|')
			}
			b.WriteString(name)
		}
	}
	return b.String()
}
