package score

import (
	"fmt"
	"strings"
)

// Cell is one side's score inside a standard game.
type Cell int

const (
	Love Cell = iota
	Fifteen
	Thirty
	Forty
	Advantage
)

// Persisted snapshots use these exact strings, do not change them.
var cellNames = [...]string{"0", "15", "30", "40", "AD"}

func (c Cell) String() string {
	if c < Love || c > Advantage {
		return fmt.Sprintf("Cell(%d)", int(c))
	}
	return cellNames[c]
}

func ParseCell(s string) (Cell, error) {
	s = strings.TrimSpace(s)
	for i, name := range cellNames {
		if s == name {
			return Cell(i), nil
		}
	}
	return Love, fmt.Errorf("unknown game score %q", s)
}

type Side int

const (
	Home Side = iota
	Away
)

func (s Side) Opponent() Side {
	if s == Home {
		return Away
	}
	return Home
}

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "away"
}

func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return Home, nil
	case "away":
		return Away, nil
	}
	return Home, fmt.Errorf("unknown side %q", s)
}
