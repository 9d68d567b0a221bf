package bracket

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/AdamBeresnev/courtside/internal/utils"
)

var ErrInvalidSeed = errors.New("invalid seed")

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func BracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// SeedingOrder returns the seeds 1..n in bracket order, so pairing
// neighbours gives the first round and seeds 1 and 2 can only meet in the
// final. n must be a power of two, otherwise nil is returned.
//
// Each step doubles the order: a seed s at an even position becomes
// (s, size+1-s), at an odd position (size+1-s, s).
func SeedingOrder(n int) []int {
	if n < 2 || n&(n-1) != 0 {
		return nil
	}

	order := []int{1, 2}
	for len(order) < n {
		size := len(order) * 2
		next := make([]int, 0, size)
		for i, seed := range order {
			if i%2 == 0 {
				next = append(next, seed, size+1-seed)
			} else {
				next = append(next, size+1-seed, seed)
			}
		}
		order = next
	}
	return order
}

// FillNullSeeds gives every unseeded player a seed picked uniformly at
// random from the seeds 1..len(players) nobody holds yet. Players are
// modified in place and returned. A nil rng uses the global source.
func FillNullSeeds(players []Player, rng *rand.Rand) ([]Player, error) {
	n := len(players)
	taken := make(map[int]bool, n)
	for _, p := range players {
		if p.Seed == nil {
			continue
		}
		s := *p.Seed
		if s < 1 || s > n {
			return nil, fmt.Errorf("%w: %s has seed %d, want 1..%d", ErrInvalidSeed, p.Name, s, n)
		}
		if taken[s] {
			return nil, fmt.Errorf("%w: seed %d assigned twice", ErrInvalidSeed, s)
		}
		taken[s] = true
	}

	available := make([]int, 0, n-len(taken))
	for s := 1; s <= n; s++ {
		if !taken[s] {
			available = append(available, s)
		}
	}

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	for i := range players {
		if players[i].Seed != nil {
			continue
		}
		last := len(available) - 1
		players[i].Seed = utils.Ptr(available[last])
		available = available[:last]
	}
	return players, nil
}

// FitPlayersInBracket places each player at the position of its seed in
// order. Positions whose seed nobody holds stay nil (a bye).
func FitPlayersInBracket(players []Player, order []int) []*Player {
	bySeed := make(map[int]*Player, len(players))
	for i := range players {
		if players[i].Seed != nil {
			bySeed[*players[i].Seed] = &players[i]
		}
	}

	slots := make([]*Player, len(order))
	for i, seed := range order {
		slots[i] = bySeed[seed]
	}
	return slots
}
