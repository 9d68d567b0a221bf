package score

import (
	"errors"
	"fmt"
)

var ErrInvalidFormat = errors.New("invalid match format")

// Format holds the rules a match is played under.
type Format struct {
	BestOf          int  `json:"best_of"`
	GamesPerSet     int  `json:"games_per_set"`
	Advantage       bool `json:"advantage"`
	TiebreakTarget  int  `json:"tiebreak_target"`
	TiebreakMinLead int  `json:"tiebreak_min_lead"`
}

func DefaultFormat() Format {
	return Format{
		BestOf:          3,
		GamesPerSet:     6,
		Advantage:       true,
		TiebreakTarget:  7,
		TiebreakMinLead: 2,
	}
}

// WithDefaults fills every zero numeric field from DefaultFormat.
// Advantage is kept as given.
func (f Format) WithDefaults() Format {
	d := DefaultFormat()
	if f.BestOf == 0 {
		f.BestOf = d.BestOf
	}
	if f.GamesPerSet == 0 {
		f.GamesPerSet = d.GamesPerSet
	}
	if f.TiebreakTarget == 0 {
		f.TiebreakTarget = d.TiebreakTarget
	}
	if f.TiebreakMinLead == 0 {
		f.TiebreakMinLead = d.TiebreakMinLead
	}
	return f
}

func (f Format) Validate() error {
	if f.BestOf < 1 || f.BestOf%2 == 0 {
		return fmt.Errorf("%w: best of %d must be a positive odd number", ErrInvalidFormat, f.BestOf)
	}
	if f.GamesPerSet < 1 {
		return fmt.Errorf("%w: games per set must be positive, got %d", ErrInvalidFormat, f.GamesPerSet)
	}
	if f.TiebreakTarget < 1 || f.TiebreakMinLead < 1 {
		return fmt.Errorf("%w: tiebreak target and lead must be positive", ErrInvalidFormat)
	}
	return nil
}

// SetsToWin is the majority of BestOf, i.e. ceil(BestOf/2).
func (f Format) SetsToWin() int {
	return f.BestOf/2 + 1
}

// IsTiebreak reports whether a set at this score is decided by a tiebreak.
func (f Format) IsTiebreak(s Set) bool {
	return s.Home == f.GamesPerSet && s.Away == f.GamesPerSet
}
