package match

import (
	"errors"
	"fmt"

	"github.com/AdamBeresnev/courtside/internal/score"
)

var (
	ErrInvalidPlayer = errors.New("player is not part of this match")
	ErrNotStarted    = errors.New("match has not been started")
)

type Config struct {
	Home   string
	Away   string
	Format score.Format
}

// Engine applies points to a match score and keeps a linear undo/redo
// history of whole moments. It is not safe for concurrent use.
type Engine struct {
	home    string
	away    string
	format  score.Format
	started bool

	moment score.Moment
	undo   []score.Moment
	redo   []score.Moment
}

func New(cfg Config) *Engine {
	return &Engine{
		home:   cfg.Home,
		away:   cfg.Away,
		format: cfg.Format.WithDefaults(),
	}
}

// Resume returns a started engine positioned at m, with empty history.
func Resume(cfg Config, m score.Moment) *Engine {
	e := New(cfg)
	e.moment = m.Clone()
	e.started = true
	return e
}

// Start resets the engine to 0-0 and discards all history.
func (e *Engine) Start() {
	e.moment = score.NewMoment()
	e.undo = nil
	e.redo = nil
	e.started = true
}

func (e *Engine) Home() string         { return e.home }
func (e *Engine) Away() string         { return e.away }
func (e *Engine) Format() score.Format { return e.format }
func (e *Engine) Started() bool        { return e.started }

func (e *Engine) Player(s score.Side) string {
	if s == score.Home {
		return e.home
	}
	return e.away
}

func (e *Engine) sideOf(player string) (score.Side, bool) {
	switch player {
	case e.home:
		return score.Home, true
	case e.away:
		return score.Away, true
	}
	return score.Home, false
}

// Moment returns a copy of the current score.
func (e *Engine) Moment() score.Moment {
	return e.moment.Clone()
}

func (e *Engine) Summary() score.Summary {
	return e.moment.Summary()
}

func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// Winner reports the side that has taken a majority of the sets. The
// engine never stops scoring on its own; callers check this.
func (e *Engine) Winner() (score.Side, bool) {
	need := e.format.SetsToWin()
	switch {
	case e.moment.MatchHome >= need:
		return score.Home, true
	case e.moment.MatchAway >= need:
		return score.Away, true
	}
	return score.Home, false
}

// Point awards the next point to player.
func (e *Engine) Point(player string) error {
	side, ok := e.sideOf(player)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPlayer, player)
	}
	return e.PointTo(side)
}

func (e *Engine) PointTo(side score.Side) error {
	if !e.started {
		return ErrNotStarted
	}

	e.undo = append(e.undo, e.moment.Clone())
	e.redo = nil

	switch g := e.moment.CurrentGame.(type) {
	case score.Tiebreak:
		e.tiebreakPoint(g, side)
	case score.StandardGame:
		e.gamePoint(g, side)
	default:
		e.moment.CurrentGame = score.StandardGame{}
		e.gamePoint(score.StandardGame{}, side)
	}
	return nil
}

func (e *Engine) gamePoint(g score.StandardGame, s score.Side) {
	own, opp := g.Get(s), g.Get(s.Opponent())

	switch {
	case own < score.Forty:
		e.moment.CurrentGame = g.With(s, own+1)
	case own == score.Advantage, opp < score.Forty:
		e.winGame(s)
	case opp == score.Forty:
		if e.format.Advantage {
			e.moment.CurrentGame = g.With(s, score.Advantage)
		} else {
			e.winGame(s)
		}
	default:
		// opponent had the advantage, back to deuce
		e.moment.CurrentGame = score.StandardGame{Home: score.Forty, Away: score.Forty}
	}
}

func (e *Engine) tiebreakPoint(t score.Tiebreak, s score.Side) {
	t = t.Add(s)
	e.moment.CurrentGame = t
	if t.WonBy(s) {
		e.winGame(s)
	}
}

func (e *Engine) winGame(s score.Side) {
	set := e.moment.CurrentSet.Add(s)
	e.moment.CurrentSet = set
	e.moment.CurrentGame = score.StandardGame{}

	won, lost := set.Games(s), set.Games(s.Opponent())
	gps := e.format.GamesPerSet
	if (won >= gps && won-lost >= 2) || won == gps+1 {
		e.moment.Sets = append(e.moment.Sets, set)
		e.moment.CurrentSet = score.Set{}
		if s == score.Home {
			e.moment.MatchHome++
		} else {
			e.moment.MatchAway++
		}
		return
	}

	if e.format.IsTiebreak(set) {
		e.moment.CurrentGame = score.NewTiebreak(e.format)
	}
}

// Undo restores the moment before the last point. It is a no-op when
// there is nothing to undo.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	e.redo = append(e.redo, e.moment)
	e.moment = e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	return true
}

func (e *Engine) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	e.undo = append(e.undo, e.moment)
	e.moment = e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	return true
}
