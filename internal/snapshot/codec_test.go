package snapshot

import (
	"math/rand/v2"
	"testing"

	"github.com/AdamBeresnev/courtside/internal/match"
	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecord(t *testing.T) {
	m := score.Moment{
		Sets:        []score.Set{{Home: 7, Away: 6}, {Home: 4, Away: 6}},
		CurrentSet:  score.Set{Home: 0, Away: 1},
		CurrentGame: score.StandardGame{Home: score.Forty, Away: score.Thirty},
		MatchHome:   1,
		MatchAway:   1,
	}

	assert.Equal(t, Record{
		GameHome:  "40",
		GameAway:  "30",
		SetHome:   0,
		SetAway:   1,
		MatchHome: 1,
		MatchAway: 1,
		Sets: []SetRecord{
			{Number: 1, HomeGames: 7, AwayGames: 6},
			{Number: 2, HomeGames: 4, AwayGames: 6},
		},
	}, ToRecord(m))
}

func TestFromRecordPicksGameKind(t *testing.T) {
	f := score.DefaultFormat()

	testCases := []struct {
		name     string
		record   Record
		expected score.Game
	}{
		{
			name:     "advantage in a standard game",
			record:   Record{GameHome: "AD", GameAway: "40", SetHome: 5, SetAway: 6},
			expected: score.StandardGame{Home: score.Advantage, Away: score.Forty},
		},
		{
			name:     "tiebreak at six all",
			record:   Record{GameHome: "4", GameAway: "6", SetHome: 6, SetAway: 6},
			expected: score.Tiebreak{Home: 4, Away: 6, Target: 7, MinLead: 2},
		},
		{
			name:     "tiebreak start",
			record:   Record{GameHome: "0", GameAway: "0", SetHome: 6, SetAway: 6},
			expected: score.Tiebreak{Target: 7, MinLead: 2},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := FromRecord(tc.record, nil, f)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, m.CurrentGame)
		})
	}
}

func TestFromRecordUsesFormatGamesPerSet(t *testing.T) {
	f := score.Format{BestOf: 3, GamesPerSet: 4, Advantage: true}

	m, err := FromRecord(Record{GameHome: "3", GameAway: "2", SetHome: 4, SetAway: 4}, nil, f)
	require.NoError(t, err)
	assert.Equal(t, score.Tiebreak{Home: 3, Away: 2, Target: 7, MinLead: 2}, m.CurrentGame)

	// 6-6 is not a tiebreak when sets are played to four
	_, err = FromRecord(Record{GameHome: "3", GameAway: "2", SetHome: 6, SetAway: 6}, nil, f)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestFromRecordMalformed(t *testing.T) {
	f := score.DefaultFormat()
	testCases := []struct {
		name   string
		record Record
	}{
		{"unknown game score", Record{GameHome: "45", GameAway: "0"}},
		{"advantage in tiebreak", Record{GameHome: "AD", GameAway: "3", SetHome: 6, SetAway: 6}},
		{"negative set score", Record{GameHome: "0", GameAway: "0", SetHome: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromRecord(tc.record, nil, f)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestSetsFromRecordsSortsByNumber(t *testing.T) {
	sets := SetsFromRecords([]SetRecord{
		{Number: 2, HomeGames: 3, AwayGames: 6},
		{Number: 1, HomeGames: 6, AwayGames: 4},
	})
	assert.Equal(t, []score.Set{{Home: 6, Away: 4}, {Home: 3, Away: 6}}, sets)
	assert.Nil(t, SetsFromRecords(nil))
}

// Every moment reached by random play must survive a record round trip.
func TestRoundTripReachableMoments(t *testing.T) {
	formats := map[string]score.Format{
		"default":       score.DefaultFormat(),
		"no-ad":         {BestOf: 3, GamesPerSet: 6, Advantage: false},
		"short sets":    {BestOf: 5, GamesPerSet: 3, Advantage: true, TiebreakTarget: 5, TiebreakMinLead: 2},
		"single set":    {BestOf: 1, GamesPerSet: 6, Advantage: true, TiebreakTarget: 10},
		"tight rallies": {BestOf: 3, GamesPerSet: 2, Advantage: true},
	}

	for name, f := range formats {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(7, 11))
			e := match.New(match.Config{Home: "home", Away: "away", Format: f})
			e.Start()

			visitedTiebreak := false
			for i := 0; i < 2000; i++ {
				if _, done := e.Winner(); done {
					e.Start()
				}
				side := score.Home
				if rng.IntN(2) == 1 {
					side = score.Away
				}
				require.NoError(t, e.PointTo(side))

				m := e.Moment()
				visitedTiebreak = visitedTiebreak || m.InTiebreak()

				got, err := FromRecord(ToRecord(m), m.Sets, e.Format())
				require.NoError(t, err)
				require.Equal(t, m, got, "point %d", i)

				decoded, err := Decode(ToRecord(m), e.Format())
				require.NoError(t, err)
				require.Equal(t, m, decoded, "point %d", i)
			}
			assert.True(t, visitedTiebreak, "random play should reach a tiebreak")
		})
	}
}

func TestRestore(t *testing.T) {
	cfg := match.Config{Home: "Jonas", Away: "Bob", Format: score.DefaultFormat()}
	rec := Record{
		GameHome:  "40",
		GameAway:  "30",
		SetHome:   0,
		SetAway:   1,
		MatchHome: 1,
		MatchAway: 1,
		Sets: []SetRecord{
			{Number: 1, HomeGames: 7, AwayGames: 6},
			{Number: 2, HomeGames: 4, AwayGames: 6},
		},
	}

	e, err := Restore(cfg, rec)
	require.NoError(t, err)
	assert.Equal(t, rec, ToRecord(e.Moment()))

	require.NoError(t, e.Point("Jonas"))
	assert.Equal(t, score.Summary{
		Game:  score.GameScore{Home: "0", Away: "0"},
		Set:   score.Tally{Home: 1, Away: 1},
		Match: score.Tally{Home: 1, Away: 1},
	}, e.Summary())
	assert.False(t, e.CanRedo())
}
