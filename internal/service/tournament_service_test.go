package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/AdamBeresnev/courtside/internal/bracket"
	"github.com/AdamBeresnev/courtside/internal/live"
	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTournament(t *testing.T, svc *TournamentService, format score.Format, inputs ...PlayerInput) (uuid.UUID, []bracket.Player) {
	t.Helper()
	ctx := context.Background()

	id, err := svc.CreateTournament(ctx, TournamentInput{Name: "Club Championship", Format: format})
	require.NoError(t, err)

	players, err := svc.RegisterPlayers(ctx, id, inputs)
	require.NoError(t, err)
	return id, players
}

func namedPlayers(n int) []PlayerInput {
	inputs := make([]PlayerInput, n)
	for i := range inputs {
		inputs[i] = PlayerInput{Name: fmt.Sprintf("Player %d", i+1)}
	}
	return inputs
}

func seededPlayers(n int) []PlayerInput {
	inputs := namedPlayers(n)
	for i := range inputs {
		inputs[i].Seed = utils.Ptr(i + 1)
	}
	return inputs
}

func TestCreateTournamentValidation(t *testing.T) {
	svc := newServices(t).tournaments
	ctx := context.Background()

	_, err := svc.CreateTournament(ctx, TournamentInput{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateTournament(ctx, TournamentInput{Name: "Open", Format: score.Format{BestOf: 2}})
	assert.ErrorIs(t, err, score.ErrInvalidFormat)

	community := uuid.New()
	id, err := svc.CreateTournament(ctx, TournamentInput{Name: "Open", CommunityID: &community})
	require.NoError(t, err)

	data, err := svc.GetTournament(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Open", data.Tournament.Name)
	assert.Equal(t, bracket.TournamentDraft, data.Tournament.Status)
	assert.Equal(t, &community, data.Tournament.CommunityID)
	assert.Equal(t, score.DefaultFormat().BestOf, data.Tournament.BestOf)
	assert.Empty(t, data.Players)
	assert.Empty(t, data.Nodes)
}

func TestRegisterPlayers(t *testing.T) {
	svc := newServices(t).tournaments
	ctx := context.Background()

	id, err := svc.CreateTournament(ctx, TournamentInput{Name: "Open"})
	require.NoError(t, err)

	_, err = svc.RegisterPlayers(ctx, id, []PlayerInput{{Name: ""}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RegisterPlayers(ctx, id, []PlayerInput{{Name: "Ana", Seed: utils.Ptr(1)}, {Name: "Bea", Seed: utils.Ptr(1)}})
	assert.ErrorIs(t, err, bracket.ErrInvalidSeed)

	_, err = svc.RegisterPlayers(ctx, uuid.New(), namedPlayers(2))
	assert.ErrorIs(t, err, store.ErrNotFound)

	players, err := svc.RegisterPlayers(ctx, id, []PlayerInput{{Name: " Ana "}, {Name: "Bea", Seed: utils.Ptr(2)}})
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Ana", players[0].Name)

	_, err = svc.GenerateBracket(ctx, id)
	require.NoError(t, err)

	_, err = svc.RegisterPlayers(ctx, id, namedPlayers(1))
	assert.ErrorIs(t, err, ErrBracketLocked)
}

func TestGenerateBracket(t *testing.T) {
	testCases := []struct {
		name      string
		players   int
		wantNodes int
		wantByes  int
		wantSize  int
	}{
		{"2 players", 2, 1, 0, 2},
		{"3 players", 3, 3, 1, 4},
		{"4 players", 4, 3, 0, 4},
		{"5 players", 5, 7, 3, 8},
		{"8 players", 8, 7, 0, 8},
		{"13 players", 13, 15, 3, 16},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newServices(t)
			svc := env.tournaments
			ctx := context.Background()

			id, _ := createTournament(t, svc, score.Format{}, namedPlayers(tc.players)...)

			result, err := svc.GenerateBracket(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSize, result.Size)
			assert.Equal(t, tc.wantByes, result.Byes())

			data, err := svc.GetTournament(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, bracket.TournamentStarted, data.Tournament.Status)
			assert.Len(t, data.Nodes, tc.wantNodes)

			seeds := make(map[int]bool)
			for _, p := range data.Players {
				require.NotNil(t, p.Seed, "every player is seeded once the bracket exists")
				seeds[*p.Seed] = true
			}
			assert.Len(t, seeds, tc.players)
			for s := 1; s <= tc.players; s++ {
				assert.True(t, seeds[s], "seed %d missing", s)
			}

			finals := 0
			for _, n := range data.Nodes {
				if n.IsFinal() {
					finals++
				} else {
					assert.NotNil(t, n.Next())
				}
			}
			assert.Equal(t, 1, finals)

			assert.Equal(t, 1, env.published.count(id.String(), live.BracketUpdated))
		})
	}
}

func TestGenerateBracketInsufficientPlayers(t *testing.T) {
	svc := newServices(t).tournaments
	ctx := context.Background()

	for _, n := range []int{0, 1} {
		id, _ := createTournament(t, svc, score.Format{}, namedPlayers(n)...)

		_, err := svc.GenerateBracket(ctx, id)
		assert.ErrorIs(t, err, bracket.ErrInsufficientPlayers)

		data, err := svc.GetTournament(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, bracket.TournamentDraft, data.Tournament.Status)
	}
}

func TestGenerateBracketInvalidSeed(t *testing.T) {
	svc := newServices(t).tournaments

	id, _ := createTournament(t, svc, score.Format{}, PlayerInput{Name: "Ana", Seed: utils.Ptr(5)}, PlayerInput{Name: "Bea"})

	_, err := svc.GenerateBracket(context.Background(), id)
	assert.ErrorIs(t, err, bracket.ErrInvalidSeed)
}

func TestRegenerateBracket(t *testing.T) {
	svc := newServices(t).tournaments
	ctx := context.Background()

	id, _ := createTournament(t, svc, score.Format{}, namedPlayers(6)...)

	first, err := svc.GenerateBracket(ctx, id)
	require.NoError(t, err)

	// Seeds are kept, so the layout is the same with new nodes
	second, err := svc.GenerateBracket(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, first.Final.ID, second.Final.ID)
	for i, n := range second.Rounds[0] {
		assert.Equal(t, first.Rounds[0][i].HomeID, n.HomeID)
		assert.Equal(t, first.Rounds[0][i].AwayID, n.AwayID)
	}

	data, err := svc.GetTournament(ctx, id)
	require.NoError(t, err)
	assert.Len(t, data.Nodes, 7)

	var playable *bracket.Node
	for _, n := range data.Nodes {
		if n.RoundNumber == 1 && n.Ready() {
			playable = n
			break
		}
	}
	require.NotNil(t, playable)

	_, err = svc.StartNodeMatch(ctx, playable.ID)
	require.NoError(t, err)

	_, err = svc.GenerateBracket(ctx, id)
	assert.ErrorIs(t, err, ErrBracketLocked)
}

func TestAdvanceWinner(t *testing.T) {
	svc := newServices(t).tournaments
	ctx := context.Background()

	id, players := createTournament(t, svc, score.Format{}, seededPlayers(4)...)
	seed := func(s int) uuid.UUID { return players[s-1].ID }

	result, err := svc.GenerateBracket(ctx, id)
	require.NoError(t, err)
	require.Len(t, result.Rounds, 2)

	// Seed order 1-4, 3-2
	match1, match2 := result.Rounds[0][0], result.Rounds[0][1]
	final := result.Final
	require.Equal(t, seed(1), *match1.HomeID)
	require.Equal(t, seed(4), *match1.AwayID)
	require.Equal(t, seed(3), *match2.HomeID)
	require.Equal(t, seed(2), *match2.AwayID)

	_, err = svc.AdvanceWinner(ctx, final.ID, seed(1))
	assert.ErrorIs(t, err, ErrNodeNotReady)

	_, err = svc.AdvanceWinner(ctx, match1.ID, seed(2))
	assert.ErrorIs(t, err, bracket.ErrNotInMatch)

	next, err := svc.AdvanceWinner(ctx, match1.ID, seed(1))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, final.ID, next.ID)
	assert.Equal(t, seed(1), *next.HomeID)
	assert.Nil(t, next.AwayID)

	_, err = svc.AdvanceWinner(ctx, match1.ID, seed(1))
	assert.ErrorIs(t, err, bracket.ErrAlreadyDecided)

	next, err = svc.AdvanceWinner(ctx, match2.ID, seed(2))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, seed(2), *next.AwayID)

	next, err = svc.AdvanceWinner(ctx, final.ID, seed(2))
	require.NoError(t, err)
	assert.Nil(t, next)

	data, err := svc.GetTournament(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, data.Tournament.Status)
	require.NotNil(t, data.Tournament.ChampionID)
	assert.Equal(t, seed(2), *data.Tournament.ChampionID)

	for _, n := range data.Nodes {
		assert.Equal(t, bracket.MatchFinished, n.Status)
	}
	assert.True(t, data.Nodes[2].IsWinner(seed(2)))
	assert.True(t, data.Nodes[2].IsLoser(seed(1)))
}

func TestAdvanceIntoByeSlot(t *testing.T) {
	svc := newServices(t).tournaments
	ctx := context.Background()

	id, players := createTournament(t, svc, score.Format{}, seededPlayers(3)...)

	result, err := svc.GenerateBracket(ctx, id)
	require.NoError(t, err)

	// Seed 1 has a bye and already waits in the final
	final := result.Final
	require.NotNil(t, final.HomeID)
	assert.Equal(t, players[0].ID, *final.HomeID)
	assert.Nil(t, final.AwayID)

	_, err = svc.StartNodeMatch(ctx, final.ID)
	assert.ErrorIs(t, err, ErrNodeNotReady)

	next, err := svc.AdvanceWinner(ctx, result.Rounds[0][1].ID, players[2].ID)
	require.NoError(t, err)
	assert.Equal(t, players[0].ID, *next.HomeID)
	assert.Equal(t, players[2].ID, *next.AwayID)
}

func TestNodeMatchAdvancesBracket(t *testing.T) {
	env := newServices(t)
	ctx := context.Background()

	id, players := createTournament(t, env.tournaments, quickFormat, seededPlayers(2)...)

	result, err := env.tournaments.GenerateBracket(ctx, id)
	require.NoError(t, err)
	final := result.Final

	matchID, err := env.tournaments.StartNodeMatch(ctx, final.ID)
	require.NoError(t, err)

	again, err := env.tournaments.StartNodeMatch(ctx, final.ID)
	require.NoError(t, err)
	assert.Equal(t, matchID, again)

	view, err := env.matches.GetMatch(ctx, matchID)
	require.NoError(t, err)
	assert.Equal(t, "Player 1", view.Match.HomeName)
	assert.Equal(t, "Player 2", view.Match.AwayName)
	assert.Equal(t, 1, view.Match.BestOf)
	assert.Equal(t, &final.ID, view.Match.NodeID)

	_, err = env.matches.StartMatch(ctx, matchID)
	require.NoError(t, err)
	summary := awardPoints(t, env.matches, matchID, score.Away, 8)
	assert.Equal(t, 1, summary.Match.Away)

	data, err := env.tournaments.GetTournament(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, data.Tournament.Status)
	require.NotNil(t, data.Tournament.ChampionID)
	assert.Equal(t, players[1].ID, *data.Tournament.ChampionID)
	require.Len(t, data.Nodes, 1)
	assert.Equal(t, bracket.MatchFinished, data.Nodes[0].Status)
}
