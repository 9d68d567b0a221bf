package bracket

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoubleAdvancement = errors.New("next match already has both slots filled")
	ErrNotInMatch        = errors.New("winner is not part of this match")
	ErrAlreadyDecided    = errors.New("match has already been decided")
	ErrUnlinked          = errors.New("bracket node is not linked to its next match")
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
)

// Node is one match slot of a single elimination bracket.
type Node struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the bracket for reconstructing the view
	RoundNumber int `db:"round_number" json:"round_number"`
	MatchNumber int `db:"match_number" json:"match_number"`

	HomeID   *uuid.UUID  `db:"home_id" json:"home_id"`
	AwayID   *uuid.UUID  `db:"away_id" json:"away_id"`
	WinnerID *uuid.UUID  `db:"winner_id" json:"winner_id"`
	Status   MatchStatus `db:"status" json:"status"`
	IsBye    bool        `db:"is_bye" json:"is_bye"`

	// Node the winner moves on to, nil for the final
	NextID *uuid.UUID `db:"next_id" json:"next_id"`
	// Scoring match played for this node, if one was started
	MatchID *uuid.UUID `db:"match_id" json:"match_id"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	next *Node
}

func (n *Node) Next() *Node {
	return n.next
}

func (n *Node) IsFinal() bool {
	return n.NextID == nil
}

func (n *Node) Has(id uuid.UUID) bool {
	return (n.HomeID != nil && *n.HomeID == id) || (n.AwayID != nil && *n.AwayID == id)
}

func (n *Node) Ready() bool {
	return n.HomeID != nil && n.AwayID != nil
}

func (n *Node) IsWinner(id uuid.UUID) bool {
	return n.Status == MatchFinished && n.WinnerID != nil && *n.WinnerID == id
}

func (n *Node) IsLoser(id uuid.UUID) bool {
	return n.Status == MatchFinished && n.WinnerID != nil && *n.WinnerID != id && n.Has(id)
}

// Advance decides n in favour of winner and moves the winner into the
// first empty slot of the next node, home before away. It returns the
// next node, or nil when n is the final and winner is the champion.
func (n *Node) Advance(winner uuid.UUID) (*Node, error) {
	if n.Status == MatchFinished {
		return nil, ErrAlreadyDecided
	}
	if !n.Has(winner) {
		return nil, ErrNotInMatch
	}

	next := n.next
	if next == nil && n.NextID != nil {
		return nil, ErrUnlinked
	}

	if next != nil {
		switch {
		case next.HomeID == nil:
			next.HomeID = &winner
		case next.AwayID == nil:
			next.AwayID = &winner
		default:
			return nil, fmt.Errorf("%w: round %d match %d", ErrDoubleAdvancement, next.RoundNumber, next.MatchNumber)
		}
	}

	n.WinnerID = &winner
	n.Status = MatchFinished
	return next, nil
}

// Link connects loaded nodes through their NextID.
func Link(nodes []*Node) error {
	byID := make(map[uuid.UUID]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	for _, n := range nodes {
		if n.NextID == nil {
			n.next = nil
			continue
		}
		next, ok := byID[*n.NextID]
		if !ok {
			return fmt.Errorf("%w: next node %s not found", ErrUnlinked, n.NextID)
		}
		n.next = next
	}
	return nil
}

func (n *Node) linkTo(next *Node) {
	n.next = next
	n.NextID = &next.ID
}
