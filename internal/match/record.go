package match

import (
	"time"

	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Match is the stored description of a scored match. Its score lives in
// the snapshots written after every change.
type Match struct {
	ID     uuid.UUID  `db:"id" json:"id"`
	NodeID *uuid.UUID `db:"node_id" json:"node_id"`

	HomeName     string     `db:"home_name" json:"home_name"`
	AwayName     string     `db:"away_name" json:"away_name"`
	HomePlayerID *uuid.UUID `db:"home_player_id" json:"home_player_id"`
	AwayPlayerID *uuid.UUID `db:"away_player_id" json:"away_player_id"`

	BestOf      int  `db:"best_of" json:"best_of"`
	GamesPerSet int  `db:"games_per_set" json:"games_per_set"`
	Advantage   bool `db:"advantage" json:"advantage"`

	Status     Status    `db:"status" json:"status"`
	WinnerSide *string   `db:"winner_side" json:"winner_side"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (m *Match) Config() Config {
	return Config{
		Home: m.HomeName,
		Away: m.AwayName,
		Format: score.Format{
			BestOf:      m.BestOf,
			GamesPerSet: m.GamesPerSet,
			Advantage:   m.Advantage,
		}.WithDefaults(),
	}
}

// PlayerID returns the tournament player on side s, if the match belongs
// to a bracket.
func (m *Match) PlayerID(s score.Side) *uuid.UUID {
	if s == score.Home {
		return m.HomePlayerID
	}
	return m.AwayPlayerID
}
