package score

import (
	"slices"
	"strconv"
)

// Game is the point-level score currently in play. It is either a
// StandardGame or a Tiebreak.
type Game interface {
	Display() (home, away string)
	isGame()
}

type StandardGame struct {
	Home Cell
	Away Cell
}

func (StandardGame) isGame() {}

func (g StandardGame) Get(s Side) Cell {
	if s == Home {
		return g.Home
	}
	return g.Away
}

func (g StandardGame) With(s Side, c Cell) StandardGame {
	if s == Home {
		g.Home = c
	} else {
		g.Away = c
	}
	return g
}

func (g StandardGame) Display() (string, string) {
	return g.Home.String(), g.Away.String()
}

type Tiebreak struct {
	Home    int
	Away    int
	Target  int
	MinLead int
}

func NewTiebreak(f Format) Tiebreak {
	return Tiebreak{Target: f.TiebreakTarget, MinLead: f.TiebreakMinLead}
}

func (Tiebreak) isGame() {}

func (t Tiebreak) Points(s Side) int {
	if s == Home {
		return t.Home
	}
	return t.Away
}

func (t Tiebreak) Add(s Side) Tiebreak {
	if s == Home {
		t.Home++
	} else {
		t.Away++
	}
	return t
}

// WonBy reports whether s has reached the target with the required lead.
func (t Tiebreak) WonBy(s Side) bool {
	own, opp := t.Points(s), t.Points(s.Opponent())
	return own >= t.Target && own-opp >= t.MinLead
}

func (t Tiebreak) Display() (string, string) {
	return strconv.Itoa(t.Home), strconv.Itoa(t.Away)
}

// Set counts games won by each side.
type Set struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func (s Set) Games(side Side) int {
	if side == Home {
		return s.Home
	}
	return s.Away
}

func (s Set) Add(side Side) Set {
	if side == Home {
		s.Home++
	} else {
		s.Away++
	}
	return s
}

// Moment is the complete score of a match at one point in time. It is
// the unit of persistence and of undo/redo.
type Moment struct {
	Sets        []Set
	CurrentSet  Set
	CurrentGame Game
	MatchHome   int
	MatchAway   int
}

func NewMoment() Moment {
	return Moment{CurrentGame: StandardGame{}}
}

// Clone returns a copy that shares no memory with m.
func (m Moment) Clone() Moment {
	m.Sets = slices.Clone(m.Sets)
	return m
}

func (m Moment) MatchScore(s Side) int {
	if s == Home {
		return m.MatchHome
	}
	return m.MatchAway
}

func (m Moment) InTiebreak() bool {
	_, ok := m.CurrentGame.(Tiebreak)
	return ok
}

func (m Moment) Summary() Summary {
	var sum Summary
	if m.CurrentGame != nil {
		sum.Game.Home, sum.Game.Away = m.CurrentGame.Display()
	}
	sum.Set = Tally{Home: m.CurrentSet.Home, Away: m.CurrentSet.Away}
	sum.Match = Tally{Home: m.MatchHome, Away: m.MatchAway}
	return sum
}

// Summary is the score shape shown to clients.
type Summary struct {
	Game  GameScore `json:"game"`
	Set   Tally     `json:"set"`
	Match Tally     `json:"match"`
}

type GameScore struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

type Tally struct {
	Home int `json:"home"`
	Away int `json:"away"`
}
