package bracket

import (
	"time"

	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentStarted   TournamentStatus = "started"
	TournamentCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	CommunityID *uuid.UUID       `db:"community_id" json:"community_id"`
	Name        string           `db:"name" json:"name"`
	Status      TournamentStatus `db:"status" json:"status"`

	// Format every match of the tournament is played under
	BestOf      int  `db:"best_of" json:"best_of"`
	GamesPerSet int  `db:"games_per_set" json:"games_per_set"`
	Advantage   bool `db:"advantage" json:"advantage"`

	ChampionID *uuid.UUID `db:"champion_id" json:"champion_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

func (t *Tournament) Format() score.Format {
	return score.Format{
		BestOf:      t.BestOf,
		GamesPerSet: t.GamesPerSet,
		Advantage:   t.Advantage,
	}.WithDefaults()
}
