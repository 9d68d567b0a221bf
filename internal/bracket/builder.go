package bracket

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

var ErrInsufficientPlayers = errors.New("at least 2 players are required to build a bracket")

// Result is a generated bracket. Rounds[0] is the first round and the last
// round holds only the final.
type Result struct {
	Size    int       `json:"size"`
	Players []Player  `json:"players"`
	Rounds  [][]*Node `json:"rounds"`
	Final   *Node     `json:"final"`
}

// Nodes lists every node, round by round.
func (r *Result) Nodes() []*Node {
	var nodes []*Node
	for _, round := range r.Rounds {
		nodes = append(nodes, round...)
	}
	return nodes
}

func (r *Result) Byes() int {
	if len(r.Rounds) == 0 {
		return 0
	}
	count := 0
	for _, n := range r.Rounds[0] {
		if n.IsBye {
			count++
		}
	}
	return count
}

// Build creates the single elimination bracket for players. Unseeded
// players get random seeds from rng first; the input slice is not
// modified, the seeded copy is returned in Result.Players.
//
// First round byes are decided immediately and their player is placed in
// the matching slot of the second round. Later rounds start empty and are
// filled by Node.Advance.
func Build(tournamentID uuid.UUID, players []Player, rng *rand.Rand) (*Result, error) {
	if len(players) < 2 {
		return nil, ErrInsufficientPlayers
	}

	size := BracketSize(len(players))
	order := SeedingOrder(size)

	seeded, err := FillNullSeeds(slices.Clone(players), rng)
	if err != nil {
		return nil, err
	}
	slots := FitPlayersInBracket(seeded, order)

	result := &Result{Size: size, Players: seeded}

	round := make([]*Node, 0, size/2)
	for i := 0; i < len(slots); i += 2 {
		n := newNode(tournamentID, 1, len(round)+1)
		n.HomeID = playerID(slots[i])
		n.AwayID = playerID(slots[i+1])
		resolveBye(n)
		round = append(round, n)
	}
	result.Rounds = append(result.Rounds, round)

	for roundNumber := 2; len(round) > 1; roundNumber++ {
		next := make([]*Node, 0, len(round)/2)
		for i := 0; i < len(round); i += 2 {
			n := newNode(tournamentID, roundNumber, len(next)+1)
			home, away := round[i], round[i+1]
			home.linkTo(n)
			away.linkTo(n)

			if roundNumber == 2 {
				if home.IsBye {
					n.HomeID = home.WinnerID
				}
				if away.IsBye {
					n.AwayID = away.WinnerID
				}
			}
			next = append(next, n)
		}
		result.Rounds = append(result.Rounds, next)
		round = next
	}

	result.Final = round[0]
	return result, nil
}

func newNode(tournamentID uuid.UUID, round, number int) *Node {
	return &Node{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		RoundNumber:  round,
		MatchNumber:  number,
		Status:       MatchPending,
	}
}

func playerID(p *Player) *uuid.UUID {
	if p == nil {
		return nil
	}
	id := p.ID
	return &id
}

// A first round node with a single player is won by that player.
func resolveBye(n *Node) {
	var winner *uuid.UUID
	switch {
	case n.HomeID != nil && n.AwayID == nil:
		winner = n.HomeID
	case n.HomeID == nil && n.AwayID != nil:
		winner = n.AwayID
	default:
		return
	}
	id := *winner
	n.WinnerID = &id
	n.Status = MatchFinished
	n.IsBye = true
}
