package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/courtside/internal/match"
	"github.com/AdamBeresnev/courtside/internal/snapshot"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Moment is one persisted snapshot of a match score. Snapshots are append
// only; the one with the highest Seq is the current score.
type Moment struct {
	ID      int64     `db:"id"`
	MatchID uuid.UUID `db:"match_id"`
	Seq     int       `db:"seq"`
	snapshot.Record
	CreatedAt time.Time `db:"created_at"`
}

type setRow struct {
	MomentID int64 `db:"match_moment_id"`
	snapshot.SetRecord
}

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

const (
	getMatchQuery  = "SELECT * FROM matches WHERE id = ?"
	createMatchQry = `INSERT INTO matches (id, node_id, home_name, away_name, home_player_id, away_player_id, best_of, games_per_set, advantage, status)
		VALUES (:id, :node_id, :home_name, :away_name, :home_player_id, :away_player_id, :best_of, :games_per_set, :advantage, :status)`
	insertMomentQuery = `INSERT INTO match_moments (match_id, seq, current_game_home, current_game_away, current_set_home, current_set_away, match_score_home, match_score_away)
		VALUES (:match_id, :seq, :current_game_home, :current_game_away, :current_set_home, :current_set_away, :match_score_home, :match_score_away)`
	insertSetsQuery = `INSERT INTO match_sets (match_moment_id, set_number, home_games, away_games)
		VALUES (:match_moment_id, :set_number, :home_games, :away_games)`
	latestMomentQuery = "SELECT * FROM match_moments WHERE match_id = ? ORDER BY seq DESC LIMIT 1"
	momentSetsQuery   = "SELECT * FROM match_sets WHERE match_moment_id = ? ORDER BY set_number ASC"
)

func (s *MatchStore) CreateMatch(ctx context.Context, tx *sqlx.Tx, m *match.Match) error {
	_, err := tx.NamedExecContext(ctx, createMatchQry, m)
	return err
}

func (s *MatchStore) GetMatch(ctx context.Context, id uuid.UUID) (*match.Match, error) {
	var m match.Match
	if err := s.db.GetContext(ctx, &m, getMatchQuery, id); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *MatchStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*match.Match, error) {
	var m match.Match
	if err := tx.GetContext(ctx, &m, getMatchQuery, id); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *MatchStore) UpdateMatchResult(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status match.Status, winnerSide *string) error {
	_, err := tx.ExecContext(ctx, "UPDATE matches SET status = ?, winner_side = ? WHERE id = ?", status, winnerSide, id)
	return err
}

// AppendMoment stores rec as snapshot number seq of the match. It returns
// ErrStaleSnapshot when that number is already taken, meaning another
// writer got there first.
func (s *MatchStore) AppendMoment(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, seq int, rec snapshot.Record) (int64, error) {
	res, err := tx.NamedExecContext(ctx, insertMomentQuery, Moment{MatchID: matchID, Seq: seq, Record: rec})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrStaleSnapshot
		}
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rec.Sets) > 0 {
		rows := make([]setRow, 0, len(rec.Sets))
		for _, set := range rec.Sets {
			rows = append(rows, setRow{MomentID: id, SetRecord: set})
		}
		if _, err := tx.NamedExecContext(ctx, insertSetsQuery, rows); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// LatestMoment returns the current snapshot of a match with its completed
// sets, or ErrNotFound if the match was never started.
func (s *MatchStore) LatestMoment(ctx context.Context, matchID uuid.UUID) (*Moment, error) {
	var m Moment
	if err := s.db.GetContext(ctx, &m, latestMomentQuery, matchID); err != nil {
		return nil, notFound(err)
	}

	var rows []setRow
	if err := s.db.SelectContext(ctx, &rows, momentSetsQuery, m.ID); err != nil {
		return nil, err
	}
	for _, r := range rows {
		m.Sets = append(m.Sets, r.SetRecord)
	}
	return &m, nil
}

// ListMoments returns every snapshot of a match, oldest first.
func (s *MatchStore) ListMoments(ctx context.Context, matchID uuid.UUID) ([]Moment, error) {
	var moments []Moment
	if err := s.db.SelectContext(ctx, &moments, "SELECT * FROM match_moments WHERE match_id = ? ORDER BY seq ASC", matchID); err != nil {
		return nil, err
	}

	var rows []setRow
	err := s.db.SelectContext(ctx, &rows, `SELECT ms.* FROM match_sets ms
		JOIN match_moments mm ON mm.id = ms.match_moment_id
		WHERE mm.match_id = ?
		ORDER BY ms.match_moment_id ASC, ms.set_number ASC`, matchID)
	if err != nil {
		return nil, err
	}

	sets := make(map[int64][]snapshot.SetRecord)
	for _, r := range rows {
		sets[r.MomentID] = append(sets[r.MomentID], r.SetRecord)
	}
	for i := range moments {
		moments[i].Sets = sets[moments[i].ID]
	}
	return moments, nil
}
