// Package snapshot converts match scores to and from their flat storage
// shape.
package snapshot

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/AdamBeresnev/courtside/internal/match"
	"github.com/AdamBeresnev/courtside/internal/score"
)

var ErrMalformedRecord = errors.New("malformed match snapshot")

// Record is a score.Moment flattened for storage. Game scores are strings
// so a standard game can carry "AD"; during a tiebreak they hold integers.
// The record does not say which kind of game was active, that follows from
// the current set score.
type Record struct {
	GameHome  string      `db:"current_game_home" json:"current_game_home"`
	GameAway  string      `db:"current_game_away" json:"current_game_away"`
	SetHome   int         `db:"current_set_home" json:"current_set_home"`
	SetAway   int         `db:"current_set_away" json:"current_set_away"`
	MatchHome int         `db:"match_score_home" json:"match_score_home"`
	MatchAway int         `db:"match_score_away" json:"match_score_away"`
	Sets      []SetRecord `db:"-" json:"sets"`
}

// SetRecord is a completed set. Numbers start at 1.
type SetRecord struct {
	Number    int `db:"set_number" json:"set_number"`
	HomeGames int `db:"home_games" json:"home_games"`
	AwayGames int `db:"away_games" json:"away_games"`
}

func ToRecord(m score.Moment) Record {
	rec := Record{
		SetHome:   m.CurrentSet.Home,
		SetAway:   m.CurrentSet.Away,
		MatchHome: m.MatchHome,
		MatchAway: m.MatchAway,
	}
	if m.CurrentGame != nil {
		rec.GameHome, rec.GameAway = m.CurrentGame.Display()
	} else {
		rec.GameHome, rec.GameAway = score.Love.String(), score.Love.String()
	}

	for i, s := range m.Sets {
		rec.Sets = append(rec.Sets, SetRecord{Number: i + 1, HomeGames: s.Home, AwayGames: s.Away})
	}
	return rec
}

// FromRecord rebuilds a moment from rec and the sets completed before it.
// The current game is a tiebreak iff both current set scores equal the
// format's games per set.
func FromRecord(rec Record, priorSets []score.Set, f score.Format) (score.Moment, error) {
	f = f.WithDefaults()
	if rec.SetHome < 0 || rec.SetAway < 0 || rec.MatchHome < 0 || rec.MatchAway < 0 {
		return score.Moment{}, fmt.Errorf("%w: negative score", ErrMalformedRecord)
	}

	m := score.Moment{
		Sets:       slices.Clone(priorSets),
		CurrentSet: score.Set{Home: rec.SetHome, Away: rec.SetAway},
		MatchHome:  rec.MatchHome,
		MatchAway:  rec.MatchAway,
	}

	if f.IsTiebreak(m.CurrentSet) {
		tb := score.NewTiebreak(f)
		var err error
		if tb.Home, err = parsePoints(rec.GameHome); err != nil {
			return score.Moment{}, err
		}
		if tb.Away, err = parsePoints(rec.GameAway); err != nil {
			return score.Moment{}, err
		}
		m.CurrentGame = tb
		return m, nil
	}

	home, err := score.ParseCell(rec.GameHome)
	if err != nil {
		return score.Moment{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	away, err := score.ParseCell(rec.GameAway)
	if err != nil {
		return score.Moment{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	m.CurrentGame = score.StandardGame{Home: home, Away: away}
	return m, nil
}

func parsePoints(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: tiebreak score %q", ErrMalformedRecord, s)
	}
	return n, nil
}

// SetsFromRecords orders set rows by number and converts them.
func SetsFromRecords(recs []SetRecord) []score.Set {
	if len(recs) == 0 {
		return nil
	}
	sorted := slices.Clone(recs)
	slices.SortFunc(sorted, func(a, b SetRecord) int { return a.Number - b.Number })

	sets := make([]score.Set, 0, len(sorted))
	for _, r := range sorted {
		sets = append(sets, score.Set{Home: r.HomeGames, Away: r.AwayGames})
	}
	return sets
}

// Decode rebuilds a moment using the sets carried inside rec.
func Decode(rec Record, f score.Format) (score.Moment, error) {
	return FromRecord(rec, SetsFromRecords(rec.Sets), f)
}

// Restore returns an engine that continues from rec. Undo history does
// not survive persistence.
func Restore(cfg match.Config, rec Record) (*match.Engine, error) {
	m, err := Decode(rec, cfg.Format)
	if err != nil {
		return nil, err
	}
	return match.Resume(cfg, m), nil
}
