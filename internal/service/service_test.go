package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/AdamBeresnev/courtside/internal/db"
	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/AdamBeresnev/courtside/internal/store"
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

type published struct {
	room    string
	msgType string
	payload any
}

type recorder struct {
	mu       sync.Mutex
	messages []published
}

func (r *recorder) Publish(room, msgType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, published{room: room, msgType: msgType, payload: payload})
}

func (r *recorder) count(room, msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.room == room && m.msgType == msgType {
			n++
		}
	}
	return n
}

type services struct {
	db          *sqlx.DB
	tournaments *TournamentService
	matches     *MatchService
	published   *recorder
}

func newServices(t *testing.T) *services {
	t.Helper()

	database := setupTestDB(t)
	rec := &recorder{}
	matchStore := store.NewMatchStore(database)

	tournaments := NewTournamentService(database, store.NewTournamentStore(database), matchStore, rec, rand.New(rand.NewPCG(1, 2)))
	matches := NewMatchService(database, matchStore, tournaments, rec)

	return &services{db: database, tournaments: tournaments, matches: matches, published: rec}
}

// quickFormat is won by the first player to take two games.
var quickFormat = score.Format{BestOf: 1, GamesPerSet: 1, Advantage: true}

func awardPoints(t *testing.T, svc *MatchService, id uuid.UUID, side score.Side, n int) score.Summary {
	t.Helper()

	var summary score.Summary
	for range n {
		var err error
		summary, err = svc.Point(context.Background(), id, side)
		require.NoError(t, err)
	}
	return summary
}
