package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AdamBeresnev/courtside/internal/bracket"
	"github.com/AdamBeresnev/courtside/internal/live"
	"github.com/AdamBeresnev/courtside/internal/match"
	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/AdamBeresnev/courtside/internal/snapshot"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WinnerAdvancer moves the winner of a finished tournament match on in
// the bracket.
type WinnerAdvancer interface {
	AdvanceWinner(ctx context.Context, nodeID uuid.UUID, winnerID uuid.UUID) (*bracket.Node, error)
}

// MatchService scores matches. The engine of a match in play is kept in
// memory together with its undo history; every change is stored as a new
// snapshot so a restart resumes from the last score.
type MatchService struct {
	db        *sqlx.DB
	store     *store.MatchStore
	advancer  WinnerAdvancer
	publisher Publisher

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// session serializes every operation on one match.
type session struct {
	mu     sync.Mutex
	match  *match.Match
	engine *match.Engine
	seq    int
}

// NewMatchService creates the service. advancer and publisher may be nil.
func NewMatchService(db *sqlx.DB, store *store.MatchStore, advancer WinnerAdvancer, publisher Publisher) *MatchService {
	return &MatchService{
		db:        db,
		store:     store,
		advancer:  advancer,
		publisher: publisher,
		sessions:  make(map[uuid.UUID]*session),
	}
}

type MatchInput struct {
	Home   string       `json:"home"`
	Away   string       `json:"away"`
	Format score.Format `json:"format"`
}

type MatchView struct {
	Match *match.Match   `json:"match"`
	Score *score.Summary `json:"score,omitempty"`
}

func (s *MatchService) CreateMatch(ctx context.Context, input MatchInput) (uuid.UUID, error) {
	home, away := utils.StringOrNil(input.Home), utils.StringOrNil(input.Away)
	if home == nil || away == nil {
		return uuid.Nil, fmt.Errorf("%w: both player names are required", ErrInvalidInput)
	}
	if *home == *away {
		return uuid.Nil, fmt.Errorf("%w: player names must differ", ErrInvalidInput)
	}

	format := input.Format.WithDefaults()
	if err := format.Validate(); err != nil {
		return uuid.Nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	m := match.Match{
		ID:          uuid.New(),
		HomeName:    *home,
		AwayName:    *away,
		BestOf:      format.BestOf,
		GamesPerSet: format.GamesPerSet,
		Advantage:   format.Advantage,
		Status:      match.StatusPending,
	}
	if err := s.store.CreateMatch(ctx, tx, &m); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create match: %w", err)
	}

	return m.ID, tx.Commit()
}

// StartMatch starts scoring and stores the opening 0-0 snapshot.
func (s *MatchService) StartMatch(ctx context.Context, id uuid.UUID) (score.Summary, error) {
	ss := s.session(id)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.engine != nil {
		return score.Summary{}, ErrMatchAlreadyStarted
	}

	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return score.Summary{}, err
	}

	_, err = s.store.LatestMoment(ctx, id)
	switch {
	case err == nil:
		return score.Summary{}, ErrMatchAlreadyStarted
	case !errors.Is(err, store.ErrNotFound):
		return score.Summary{}, err
	}

	engine := match.New(m.Config())
	engine.Start()

	ss.match, ss.engine, ss.seq = m, engine, 0
	if err := s.persist(ctx, ss); err != nil {
		ss.engine = nil
		return score.Summary{}, err
	}

	slog.Info("match started", "match_id", id, "home", m.HomeName, "away", m.AwayName)
	summary := engine.Summary()
	s.publish(id, summary)
	return summary, nil
}

// Point awards the next point to side.
func (s *MatchService) Point(ctx context.Context, id uuid.UUID, side score.Side) (score.Summary, error) {
	return s.mutate(ctx, id, func(e *match.Engine) (bool, error) {
		return true, e.PointTo(side)
	})
}

// PointByName awards the next point to the player with the given name.
func (s *MatchService) PointByName(ctx context.Context, id uuid.UUID, player string) (score.Summary, error) {
	return s.mutate(ctx, id, func(e *match.Engine) (bool, error) {
		return true, e.Point(player)
	})
}

func (s *MatchService) Undo(ctx context.Context, id uuid.UUID) (score.Summary, error) {
	return s.mutate(ctx, id, func(e *match.Engine) (bool, error) {
		return e.Undo(), nil
	})
}

func (s *MatchService) Redo(ctx context.Context, id uuid.UUID) (score.Summary, error) {
	return s.mutate(ctx, id, func(e *match.Engine) (bool, error) {
		return e.Redo(), nil
	})
}

// Score returns the current score of a started match.
func (s *MatchService) Score(ctx context.Context, id uuid.UUID) (score.Summary, error) {
	ss := s.session(id)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := s.load(ctx, id, ss); err != nil {
		return score.Summary{}, err
	}
	return ss.engine.Summary(), nil
}

// GetMatch returns the stored match and, once started, its score.
func (s *MatchService) GetMatch(ctx context.Context, id uuid.UUID) (*MatchView, error) {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &MatchView{Match: m}
	summary, err := s.Score(ctx, id)
	switch {
	case err == nil:
		view.Score = &summary
	case !errors.Is(err, ErrMatchNotStarted):
		return nil, err
	}
	return view, nil
}

// History returns every stored score of a match, oldest first.
func (s *MatchService) History(ctx context.Context, id uuid.UUID) ([]score.Summary, error) {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	moments, err := s.store.ListMoments(ctx, id)
	if err != nil {
		return nil, err
	}

	format := m.Config().Format
	history := make([]score.Summary, 0, len(moments))
	for _, moment := range moments {
		decoded, err := snapshot.Decode(moment.Record, format)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", moment.Seq, err)
		}
		history = append(history, decoded.Summary())
	}
	return history, nil
}

func (s *MatchService) session(id uuid.UUID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.sessions[id]
	if !ok {
		ss = &session{}
		s.sessions[id] = ss
	}
	return ss
}

// load restores the engine of a match from its latest snapshot unless it
// is already in memory. Must be called with ss.mu held.
func (s *MatchService) load(ctx context.Context, id uuid.UUID, ss *session) error {
	if ss.engine != nil {
		return nil
	}

	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return err
	}

	latest, err := s.store.LatestMoment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrMatchNotStarted
	}
	if err != nil {
		return err
	}

	engine, err := snapshot.Restore(m.Config(), latest.Record)
	if err != nil {
		return fmt.Errorf("failed to restore match %s: %w", id, err)
	}

	ss.match, ss.engine, ss.seq = m, engine, latest.Seq
	return nil
}

// mutate applies change to the engine of a match and stores the result.
// change reports whether the score moved; if not nothing is written.
func (s *MatchService) mutate(ctx context.Context, id uuid.UUID, change func(*match.Engine) (bool, error)) (score.Summary, error) {
	ss := s.session(id)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := s.load(ctx, id, ss); err != nil {
		return score.Summary{}, err
	}
	if _, done := ss.engine.Winner(); done {
		return ss.engine.Summary(), ErrMatchFinished
	}

	changed, err := change(ss.engine)
	if err != nil {
		return score.Summary{}, err
	}
	if !changed {
		return ss.engine.Summary(), nil
	}

	if err := s.persist(ctx, ss); err != nil {
		// The in-memory engine is ahead of storage now; reload on next use
		ss.engine = nil
		return score.Summary{}, err
	}

	summary := ss.engine.Summary()
	s.publish(id, summary)

	if winner, done := ss.engine.Winner(); done {
		s.finish(ctx, ss, winner)
	}
	return summary, nil
}

// persist stores the current score as the next snapshot. Must be called
// with ss.mu held.
func (s *MatchService) persist(ctx context.Context, ss *session) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	seq := ss.seq + 1
	if _, err := s.store.AppendMoment(ctx, tx, ss.match.ID, seq, snapshot.ToRecord(ss.engine.Moment())); err != nil {
		if errors.Is(err, store.ErrStaleSnapshot) {
			slog.Warn("match snapshot conflict", "match_id", ss.match.ID, "seq", seq)
		}
		return err
	}

	status, winnerSide := match.StatusInProgress, (*string)(nil)
	if winner, done := ss.engine.Winner(); done {
		status, winnerSide = match.StatusFinished, utils.Ptr(winner.String())
	}
	if status != ss.match.Status {
		if err := s.store.UpdateMatchResult(ctx, tx, ss.match.ID, status, winnerSide); err != nil {
			return fmt.Errorf("failed to update match status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	ss.seq = seq
	ss.match.Status = status
	ss.match.WinnerSide = winnerSide
	return nil
}

// finish reports the winner of a bracket match to the tournament. A
// failure is logged rather than returned since the point itself is
// already stored; the node can still be advanced by hand.
func (s *MatchService) finish(ctx context.Context, ss *session, winner score.Side) {
	slog.Info("match finished", "match_id", ss.match.ID, "winner", ss.engine.Player(winner))

	if s.advancer == nil || ss.match.NodeID == nil {
		return
	}
	winnerID := ss.match.PlayerID(winner)
	if winnerID == nil {
		return
	}

	if _, err := s.advancer.AdvanceWinner(ctx, *ss.match.NodeID, *winnerID); err != nil {
		slog.Error("failed to advance match winner",
			"match_id", ss.match.ID,
			"node_id", *ss.match.NodeID,
			"error", err)
	}
}

func (s *MatchService) publish(id uuid.UUID, summary score.Summary) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(id.String(), live.ScoreUpdated, summary)
}
