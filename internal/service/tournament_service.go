package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/AdamBeresnev/courtside/internal/bracket"
	"github.com/AdamBeresnev/courtside/internal/live"
	"github.com/AdamBeresnev/courtside/internal/match"
	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Publisher delivers live updates to subscribers of a room.
type Publisher interface {
	Publish(room, msgType string, payload any)
}

type TournamentService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	matches   *store.MatchStore
	publisher Publisher

	// Random seeds for unseeded players. *rand.Rand is not safe for
	// concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewTournamentService creates the service. publisher and rng may be nil;
// a nil rng draws seeds from the global source.
func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, matches *store.MatchStore, publisher Publisher, rng *rand.Rand) *TournamentService {
	return &TournamentService{db: db, store: store, matches: matches, publisher: publisher, rng: rng}
}

type TournamentInput struct {
	Name        string       `json:"name"`
	CommunityID *uuid.UUID   `json:"community_id,omitempty"`
	Format      score.Format `json:"format"`
}

type TournamentData struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Players    []bracket.Player    `json:"players"`
	Nodes      []*bracket.Node     `json:"nodes"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, input TournamentInput) (uuid.UUID, error) {
	name := utils.StringOrNil(input.Name)
	if name == nil {
		return uuid.Nil, fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
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

	tournament := bracket.Tournament{
		ID:          uuid.New(),
		CommunityID: input.CommunityID,
		Name:        *name,
		Status:      bracket.TournamentDraft,
		BestOf:      format.BestOf,
		GamesPerSet: format.GamesPerSet,
		Advantage:   format.Advantage,
	}
	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	return tournament.ID, tx.Commit()
}

// RegisterPlayers adds players to a tournament whose bracket has not been
// generated yet.
func (s *TournamentService) RegisterPlayers(ctx context.Context, tournamentID uuid.UUID, inputs []PlayerInput) ([]bracket.Player, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != bracket.TournamentDraft {
		return nil, ErrBracketLocked
	}

	players := make([]bracket.Player, 0, len(inputs))
	for _, input := range inputs {
		name := utils.StringOrNil(input.Name)
		if name == nil {
			return nil, fmt.Errorf("%w: player name is required", ErrInvalidInput)
		}
		players = append(players, bracket.Player{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         *name,
			Seed:         input.Seed,
		})
	}

	if err := s.store.CreatePlayers(ctx, tx, players); err != nil {
		return nil, err
	}

	return players, tx.Commit()
}

// GenerateBracket seeds the registered players and builds the bracket,
// replacing any previous one. It is refused once a real match has been
// played.
func (s *TournamentService) GenerateBracket(ctx context.Context, tournamentID uuid.UUID) (*bracket.Result, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == bracket.TournamentCompleted {
		return nil, ErrBracketLocked
	}

	existing, err := s.store.GetNodesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bracket: %w", err)
	}
	for _, n := range existing {
		if !n.IsBye && (n.Status != bracket.MatchPending || n.MatchID != nil) {
			return nil, ErrBracketLocked
		}
	}

	players, err := s.store.GetPlayersTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}

	result, err := s.build(tournamentID, players)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteNodes(ctx, tx, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to delete previous bracket: %w", err)
	}
	if err := s.store.UpdatePlayerSeeds(ctx, tx, result.Players); err != nil {
		return nil, fmt.Errorf("failed to store seeds: %w", err)
	}
	if err := s.store.CreateNodes(ctx, tx, result.Nodes()); err != nil {
		return nil, fmt.Errorf("failed to store bracket: %w", err)
	}
	if err := s.store.UpdateTournamentStatus(ctx, tx, tournamentID, bracket.TournamentStarted); err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("bracket generated",
		"tournament_id", tournamentID,
		"players", len(result.Players),
		"size", result.Size,
		"byes", result.Byes())
	s.publish(tournamentID, result.Nodes())
	return result, nil
}

func (s *TournamentService) build(tournamentID uuid.UUID, players []bracket.Player) (*bracket.Result, error) {
	if s.rng == nil {
		return bracket.Build(tournamentID, players, nil)
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return bracket.Build(tournamentID, players, s.rng)
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	var data TournamentData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.store.GetTournament(ctx, id)
		data.Tournament = t
		return err
	})
	g.Go(func() error {
		players, err := s.store.GetPlayers(ctx, id)
		data.Players = players
		return err
	})
	g.Go(func() error {
		nodes, err := s.store.GetNodes(ctx, id)
		data.Nodes = nodes
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// AdvanceWinner decides a node and moves the winner on. It returns the
// node the winner moved into, or nil when the final was decided and the
// tournament is complete.
func (s *TournamentService) AdvanceWinner(ctx context.Context, nodeID uuid.UUID, winnerID uuid.UUID) (*bracket.Node, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	target, err := s.store.GetNodeTx(ctx, tx, nodeID)
	if err != nil {
		return nil, err
	}

	nodes, err := s.store.GetNodesTx(ctx, tx, target.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bracket: %w", err)
	}
	for _, n := range nodes {
		if n.ID == nodeID {
			target = n
			break
		}
	}

	if target.Status != bracket.MatchFinished && !target.Ready() {
		return nil, ErrNodeNotReady
	}

	next, err := target.Advance(winnerID)
	if err != nil {
		if errors.Is(err, bracket.ErrDoubleAdvancement) {
			slog.Error("bracket advancement conflict",
				"tournament_id", target.TournamentID,
				"node_id", nodeID,
				"winner_id", winnerID,
				"error", err)
		}
		return nil, err
	}

	if err := s.store.UpdateNode(ctx, tx, target); err != nil {
		return nil, fmt.Errorf("failed to update node: %w", err)
	}

	if next != nil {
		if err := s.store.UpdateNode(ctx, tx, next); err != nil {
			return nil, fmt.Errorf("failed to update next node: %w", err)
		}
	} else {
		if err := s.store.SetChampion(ctx, tx, target.TournamentID, winnerID); err != nil {
			return nil, fmt.Errorf("failed to complete tournament: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if next == nil {
		slog.Info("tournament completed", "tournament_id", target.TournamentID, "champion_id", winnerID)
	} else {
		slog.Info("winner advanced",
			"tournament_id", target.TournamentID,
			"node_id", nodeID,
			"next_node_id", next.ID,
			"winner_id", winnerID)
	}
	s.publish(target.TournamentID, nodes)
	return next, nil
}

// StartNodeMatch creates the scoring match for a node once both players
// are known. Calling it again returns the existing match.
func (s *TournamentService) StartNodeMatch(ctx context.Context, nodeID uuid.UUID) (uuid.UUID, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	node, err := s.store.GetNodeTx(ctx, tx, nodeID)
	if err != nil {
		return uuid.Nil, err
	}
	if node.MatchID != nil {
		return *node.MatchID, nil
	}
	if node.Status == bracket.MatchFinished {
		return uuid.Nil, bracket.ErrAlreadyDecided
	}
	if !node.Ready() {
		return uuid.Nil, ErrNodeNotReady
	}

	tournament, err := s.store.GetTournamentTx(ctx, tx, node.TournamentID)
	if err != nil {
		return uuid.Nil, err
	}
	players, err := s.store.GetPlayersTx(ctx, tx, node.TournamentID)
	if err != nil {
		return uuid.Nil, err
	}
	names := make(map[uuid.UUID]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	format := tournament.Format()
	m := match.Match{
		ID:           uuid.New(),
		NodeID:       &node.ID,
		HomeName:     names[*node.HomeID],
		AwayName:     names[*node.AwayID],
		HomePlayerID: node.HomeID,
		AwayPlayerID: node.AwayID,
		BestOf:       format.BestOf,
		GamesPerSet:  format.GamesPerSet,
		Advantage:    format.Advantage,
		Status:       match.StatusPending,
	}
	if err := s.matches.CreateMatch(ctx, tx, &m); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create match: %w", err)
	}

	node.MatchID = &m.ID
	node.Status = bracket.MatchInProgress
	if err := s.store.UpdateNode(ctx, tx, node); err != nil {
		return uuid.Nil, fmt.Errorf("failed to update node: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	slog.Info("node match created", "tournament_id", node.TournamentID, "node_id", node.ID, "match_id", m.ID)
	return m.ID, nil
}

func (s *TournamentService) publish(tournamentID uuid.UUID, nodes []*bracket.Node) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(tournamentID.String(), live.BracketUpdated, nodes)
}
