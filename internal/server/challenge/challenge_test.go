package challenge

import (
	"sort"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solve places every piece into its own slot.
func solve(t *testing.T, s *Session) {
	t.Helper()
	for _, piece := range s.Pool() {
		require.NoError(t, s.Place(piece, piece))
	}
}

func poolPlusSlots(s *Session) []int {
	tags := s.Pool()
	for _, slot := range s.Slots() {
		if slot.Filled {
			tags = append(tags, slot.Piece)
		}
	}
	sort.Ints(tags)
	return tags
}

func TestNew_InitialState(t *testing.T) {
	s := New(4, 0)

	assert.Equal(t, 4, s.Pieces())
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, s.Pool())
	for _, slot := range s.Slots() {
		assert.False(t, slot.Filled)
	}
	assert.False(t, s.Completed())
}

func TestPlace_CorrectCompletionFiresExactlyOnce(t *testing.T) {
	s := New(4, 0)

	fired := 0
	s.OnSuccess(func() { fired++ })

	solve(t, s)

	assert.True(t, s.Completed())
	assert.Equal(t, 1, fired)

	// terminal: no further placements or resets
	require.ErrorIs(t, s.Place(0, 0), common.ErrChallengeDone)
	require.ErrorIs(t, s.Reset(), common.ErrChallengeDone)
	assert.Equal(t, 1, fired)
}

func TestPlace_DisplacedPieceReturnsToPool(t *testing.T) {
	s := New(4, 0)

	require.NoError(t, s.Place(1, 0))
	require.NoError(t, s.Place(2, 0))

	slots := s.Slots()
	require.True(t, slots[0].Filled)
	assert.Equal(t, 2, slots[0].Piece)

	// piece 1 is back in the pool, nothing lost or duplicated
	assert.Contains(t, s.Pool(), 1)
	assert.Equal(t, []int{0, 1, 2, 3}, poolPlusSlots(s))
}

func TestPlace_Validation(t *testing.T) {
	s := New(4, 0)

	require.Error(t, s.Place(0, -1))
	require.Error(t, s.Place(0, 4))
	require.Error(t, s.Place(-1, 0))
	require.Error(t, s.Place(7, 0))

	require.NoError(t, s.Place(0, 1))
	// already placed, no longer available in the pool
	require.Error(t, s.Place(0, 2))
}

func TestPlace_WrongArrangementDoesNotComplete(t *testing.T) {
	s := New(2, 0)

	fired := 0
	s.OnSuccess(func() { fired++ })

	// both slots filled, both wrong
	require.NoError(t, s.Place(1, 0))
	require.NoError(t, s.Place(0, 1))

	assert.False(t, s.Completed())
	assert.Equal(t, 0, fired)

	// recover via reset, then solve
	require.NoError(t, s.Reset())
	solve(t, s)
	assert.True(t, s.Completed())
	assert.Equal(t, 1, fired)
}

func TestReset_AfterPartialPlacement(t *testing.T) {
	s := New(4, 0)

	require.NoError(t, s.Place(2, 0))
	require.NoError(t, s.Place(3, 1))

	require.NoError(t, s.Reset())

	assert.ElementsMatch(t, []int{0, 1, 2, 3}, s.Pool())
	for _, slot := range s.Slots() {
		assert.False(t, slot.Filled)
	}
	assert.False(t, s.Completed())
}

func TestCompletionDelay_FiresAfterCheck(t *testing.T) {
	s := New(2, 20*time.Millisecond)

	done := make(chan struct{})
	s.OnSuccess(func() { close(done) })

	solve(t, s)
	assert.True(t, s.Completed())

	select {
	case <-done:
		t.Fatal("handler fired before the delay elapsed")
	case <-time.After(5 * time.Millisecond):
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never fired")
	}
}

func TestReset_CancelsPendingCompletion(t *testing.T) {
	s := New(2, 50*time.Millisecond)

	fired := 0
	s.OnSuccess(func() { fired++ })

	solve(t, s)
	require.NoError(t, s.Reset())

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.False(t, s.Completed())

	// the puzzle can still be solved afterwards, with a single notification
	solve(t, s)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, fired)
}

func TestNew_Defaults(t *testing.T) {
	s := New(0, -1)
	assert.Equal(t, DefaultPieces, s.Pieces())
	assert.Len(t, s.Pool(), DefaultPieces)
}
