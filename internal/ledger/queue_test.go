// queue_test.go - Tests for the pending-move queue.

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueInsertKeepsLandingOrder(t *testing.T) {
	q := &MoveQueue{GameID: 1, PlanetHash: "p"}
	for _, slot := range []uint64{50, 10, 30} {
		require.NoError(t, q.Insert(PendingMove{LandingSlot: slot}))
	}

	var got []uint64
	for _, mv := range q.Moves {
		got = append(got, mv.LandingSlot)
	}
	assert.Equal(t, []uint64{10, 30, 50}, got)
}

func TestQueueEqualSlotsKeepArrivalOrder(t *testing.T) {
	q := &MoveQueue{}
	require.NoError(t, q.Insert(PendingMove{LandingSlot: 20, SourceHash: "first"}))
	require.NoError(t, q.Insert(PendingMove{LandingSlot: 20, SourceHash: "second"}))

	assert.Equal(t, "first", q.Moves[0].SourceHash)
	assert.Equal(t, "second", q.Moves[1].SourceHash)
}

func TestQueuePopFrontGatesOnLanding(t *testing.T) {
	q := &MoveQueue{}
	require.NoError(t, q.Insert(PendingMove{LandingSlot: 30}))
	require.NoError(t, q.Insert(PendingMove{LandingSlot: 10}))

	_, err := q.PopFront(5)
	assert.ErrorIs(t, err, ErrNotLanded)

	mv, err := q.PopFront(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), mv.LandingSlot)
	assert.Equal(t, 1, q.Len())

	// Only the front is ever removable; the remaining entry still gates.
	_, err = q.PopFront(15)
	assert.ErrorIs(t, err, ErrNotLanded)
}

func TestQueuePopEmpty(t *testing.T) {
	q := &MoveQueue{}
	_, err := q.PopFront(100)
	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, err = q.Front()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestQueueBoundedCapacity(t *testing.T) {
	q := &MoveQueue{}
	for i := 0; i < MaxPendingMoves; i++ {
		require.NoError(t, q.Insert(PendingMove{LandingSlot: uint64(i)}))
	}
	err := q.Insert(PendingMove{LandingSlot: 999})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, MaxPendingMoves, q.Len())
}
