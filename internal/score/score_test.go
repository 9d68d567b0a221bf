package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	for _, c := range []Cell{Love, Fifteen, Thirty, Forty, Advantage} {
		got, err := ParseCell(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCell("45")
	assert.Error(t, err)
	assert.Equal(t, "AD", Advantage.String())
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("Away")
	require.NoError(t, err)
	assert.Equal(t, Away, s)
	assert.Equal(t, Home, s.Opponent())

	_, err = ParseSide("middle")
	assert.Error(t, err)
}

func TestMomentCloneDoesNotShareSets(t *testing.T) {
	m := Moment{Sets: make([]Set, 1, 4), CurrentGame: StandardGame{}}
	m.Sets[0] = Set{Home: 6, Away: 2}

	c := m.Clone()
	c.Sets[0].Home = 1
	c.Sets = append(c.Sets, Set{Home: 3, Away: 6})

	assert.Equal(t, []Set{{Home: 6, Away: 2}}, m.Sets)
}

func TestSummary(t *testing.T) {
	m := Moment{
		Sets:        []Set{{Home: 6, Away: 4}},
		CurrentSet:  Set{Home: 2, Away: 1},
		CurrentGame: StandardGame{Home: Advantage, Away: Forty},
		MatchHome:   1,
	}
	assert.Equal(t, Summary{
		Game:  GameScore{Home: "AD", Away: "40"},
		Set:   Tally{Home: 2, Away: 1},
		Match: Tally{Home: 1, Away: 0},
	}, m.Summary())

	m.CurrentGame = Tiebreak{Home: 3, Away: 5, Target: 7, MinLead: 2}
	assert.Equal(t, GameScore{Home: "3", Away: "5"}, m.Summary().Game)
	assert.True(t, m.InTiebreak())
}

func TestFormat(t *testing.T) {
	f := Format{Advantage: false}.WithDefaults()
	assert.Equal(t, 3, f.BestOf)
	assert.Equal(t, 6, f.GamesPerSet)
	assert.False(t, f.Advantage)
	assert.Equal(t, 2, f.SetsToWin())
	assert.NoError(t, f.Validate())

	assert.True(t, f.IsTiebreak(Set{Home: 6, Away: 6}))
	assert.False(t, f.IsTiebreak(Set{Home: 6, Away: 5}))

	assert.ErrorIs(t, Format{BestOf: 4, GamesPerSet: 6, TiebreakTarget: 7, TiebreakMinLead: 2}.Validate(), ErrInvalidFormat)
	assert.Equal(t, 3, Format{BestOf: 5}.SetsToWin())
}
