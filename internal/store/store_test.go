package store

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/courtside/internal/bracket"
	"github.com/AdamBeresnev/courtside/internal/db"
	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenMemory()
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

func withTx(t *testing.T, database *sqlx.DB, fn func(tx *sqlx.Tx) error) {
	t.Helper()

	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

func seedTournament(t *testing.T, database *sqlx.DB, s *TournamentStore, names ...string) (*bracket.Tournament, []bracket.Player) {
	t.Helper()
	ctx := context.Background()

	tournament := &bracket.Tournament{
		ID:          uuid.New(),
		Name:        "Club Championship",
		Status:      bracket.TournamentDraft,
		BestOf:      3,
		GamesPerSet: 6,
		Advantage:   true,
	}

	var players []bracket.Player
	for i, name := range names {
		p := bracket.Player{ID: uuid.New(), TournamentID: tournament.ID, Name: name}
		if i == 0 {
			p.Seed = utils.Ptr(1)
		}
		players = append(players, p)
	}

	withTx(t, database, func(tx *sqlx.Tx) error {
		if err := s.CreateTournament(ctx, tx, tournament); err != nil {
			return err
		}
		return s.CreatePlayers(ctx, tx, players)
	})
	return tournament, players
}
