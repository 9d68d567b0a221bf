package store

import (
	"context"
	"slices"

	"github.com/AdamBeresnev/courtside/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	getTournamentQuery = "SELECT * FROM tournaments WHERE id = ?"
	getPlayersQuery    = "SELECT * FROM tournament_players WHERE tournament_id = ? ORDER BY seed IS NULL, seed ASC, created_at ASC, name ASC"
	getNodesQuery      = "SELECT * FROM bracket_nodes WHERE tournament_id = ? ORDER BY round_number ASC, match_number ASC"
	getNodeQuery       = "SELECT * FROM bracket_nodes WHERE id = ?"
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, community_id, name, status, best_of, games_per_set, advantage)
        VALUES (:id, :community_id, :name, :status, :best_of, :games_per_set, :advantage)`, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := s.db.GetContext(ctx, &tournament, getTournamentQuery, id); err != nil {
		return nil, notFound(err)
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := tx.GetContext(ctx, &tournament, getTournamentQuery, id); err != nil {
		return nil, notFound(err)
	}
	return &tournament, nil
}

func (s *TournamentStore) UpdateTournamentStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}

// SetChampion records the champion and completes the tournament.
func (s *TournamentStore) SetChampion(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, championID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ?, champion_id = ? WHERE id = ?",
		bracket.TournamentCompleted, championID, id)
	return err
}

func (s *TournamentStore) CreatePlayers(ctx context.Context, tx *sqlx.Tx, players []bracket.Player) error {
	if len(players) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_players (id, tournament_id, name, seed)
            VALUES (:id, :tournament_id, :name, :seed)`, players)
	if isUniqueViolation(err) {
		return bracket.ErrInvalidSeed
	}
	return err
}

func (s *TournamentStore) GetPlayers(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Player, error) {
	var players []bracket.Player
	err := s.db.SelectContext(ctx, &players, getPlayersQuery, tournamentID)
	return players, err
}

func (s *TournamentStore) GetPlayersTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Player, error) {
	var players []bracket.Player
	err := tx.SelectContext(ctx, &players, getPlayersQuery, tournamentID)
	return players, err
}

func (s *TournamentStore) UpdatePlayerSeeds(ctx context.Context, tx *sqlx.Tx, players []bracket.Player) error {
	for _, p := range players {
		if _, err := tx.ExecContext(ctx, "UPDATE tournament_players SET seed = ? WHERE id = ?", p.Seed, p.ID); err != nil {
			if isUniqueViolation(err) {
				return bracket.ErrInvalidSeed
			}
			return err
		}
	}
	return nil
}

// DeleteNodes removes a previously generated bracket.
func (s *TournamentStore) DeleteNodes(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM bracket_nodes WHERE tournament_id = ?", tournamentID)
	return err
}

func (s *TournamentStore) CreateNodes(ctx context.Context, tx *sqlx.Tx, nodes []*bracket.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	// Later rounds first so next_id always points at an existing row
	ordered := slices.Clone(nodes)
	slices.SortStableFunc(ordered, func(a, b *bracket.Node) int {
		return b.RoundNumber - a.RoundNumber
	})

	_, err := tx.NamedExecContext(ctx, `INSERT INTO bracket_nodes (id, tournament_id, round_number, match_number, home_id, away_id, winner_id, status, is_bye, next_id, match_id)
		VALUES (:id, :tournament_id, :round_number, :match_number, :home_id, :away_id, :winner_id, :status, :is_bye, :next_id, :match_id)`, ordered)
	return err
}

// GetNodes loads the bracket of a tournament with its nodes linked.
func (s *TournamentStore) GetNodes(ctx context.Context, tournamentID uuid.UUID) ([]*bracket.Node, error) {
	var nodes []*bracket.Node
	if err := s.db.SelectContext(ctx, &nodes, getNodesQuery, tournamentID); err != nil {
		return nil, err
	}
	return nodes, bracket.Link(nodes)
}

func (s *TournamentStore) GetNodesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]*bracket.Node, error) {
	var nodes []*bracket.Node
	if err := tx.SelectContext(ctx, &nodes, getNodesQuery, tournamentID); err != nil {
		return nil, err
	}
	return nodes, bracket.Link(nodes)
}

func (s *TournamentStore) GetNodeTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Node, error) {
	var node bracket.Node
	if err := tx.GetContext(ctx, &node, getNodeQuery, id); err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

func (s *TournamentStore) UpdateNode(ctx context.Context, tx *sqlx.Tx, node *bracket.Node) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE bracket_nodes SET
		home_id = :home_id,
		away_id = :away_id,
		winner_id = :winner_id,
		status = :status,
		is_bye = :is_bye,
		match_id = :match_id
		WHERE id = :id`, node)
	return err
}
