// queue.go - Landing-slot-ordered pending-move queue.

package ledger

import (
	"errors"
	"sort"
)

// MaxPendingMoves bounds how many shipments may be in flight toward one
// planet. Exceeding it rejects the departure, never silently drops.
const MaxPendingMoves = 32

var (
	ErrQueueFull  = errors.New("ledger: pending-move queue full")
	ErrQueueEmpty = errors.New("ledger: no pending moves")
	ErrNotLanded  = errors.New("ledger: front move has not landed yet")
)

// MoveQueue is the per-planet collection of in-flight shipments, kept
// sorted by ascending landing slot so the earliest landing is always at the
// front. Only the front is ever removed.
type MoveQueue struct {
	GameID     uint64        `json:"game_id"`
	PlanetHash string        `json:"planet_hash"`
	Moves      []PendingMove `json:"moves"`
}

// Insert places the move by binary search on its landing slot. Equal slots
// keep arrival order, so two shipments landing together flush in the order
// they departed.
func (q *MoveQueue) Insert(mv PendingMove) error {
	if len(q.Moves) >= MaxPendingMoves {
		return ErrQueueFull
	}
	i := sort.Search(len(q.Moves), func(i int) bool {
		return q.Moves[i].LandingSlot > mv.LandingSlot
	})
	q.Moves = append(q.Moves, PendingMove{})
	copy(q.Moves[i+1:], q.Moves[i:])
	q.Moves[i] = mv
	return nil
}

// Front returns the earliest-landing move without removing it.
func (q *MoveQueue) Front() (*PendingMove, error) {
	if len(q.Moves) == 0 {
		return nil, ErrQueueEmpty
	}
	return &q.Moves[0], nil
}

// PopFront removes and returns the front move, only once it has landed.
// Never any other index: flush order is structural, not scheduled.
func (q *MoveQueue) PopFront(nowSlot uint64) (*PendingMove, error) {
	if len(q.Moves) == 0 {
		return nil, ErrQueueEmpty
	}
	if q.Moves[0].LandingSlot > nowSlot {
		return nil, ErrNotLanded
	}
	mv := q.Moves[0]
	q.Moves = append(q.Moves[:0], q.Moves[1:]...)
	return &mv, nil
}

// HasLanded reports whether the front move is eligible for flushing.
func (q *MoveQueue) HasLanded(nowSlot uint64) bool {
	return len(q.Moves) > 0 && q.Moves[0].LandingSlot <= nowSlot
}

// Len is the number of in-flight moves.
func (q *MoveQueue) Len() int { return len(q.Moves) }
