package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReferee(t *testing.T, rules Rules, starting Player) *Referee {
	t.Helper()
	return NewReferee(newBoard(t, rules), starting)
}

func TestRefereeKeepsTurnOnContinue(t *testing.T) {
	r := newReferee(t, RulesTrail, PlayerA)
	assert.Equal(t, StateContinue, r.Play(South))
	assert.Equal(t, PlayerA, r.Turn())
	assert.Equal(t, MoveSequence{South}, r.TurnLog())
	assert.Nil(t, r.LastTurn())
}

func TestRefereeFlipsTurnAndClearsLog(t *testing.T) {
	r := newReferee(t, RulesBounce, PlayerA)
	require.Equal(t, StateTurnOver, r.Play(South))
	assert.Equal(t, PlayerB, r.Turn())
	assert.Empty(t, r.TurnLog())
	assert.Equal(t, MoveSequence{South}, r.LastTurn())

	require.Equal(t, StateTurnOver, r.Play(East))
	assert.Equal(t, PlayerA, r.Turn())

	require.Equal(t, StateContinue, r.Play(NorthWest))
	require.Equal(t, StateTurnOver, r.Play(NorthEast))
	assert.Equal(t, PlayerB, r.Turn())
	assert.Equal(t, MoveSequence{NorthWest, NorthEast}, r.LastTurn())
}

func TestRefereeIllegalMoveHasNoEffect(t *testing.T) {
	r := newReferee(t, RulesTrail, PlayerB)
	r.Play(South)
	assert.Equal(t, StateIllegal, r.Play(North))
	assert.Equal(t, PlayerB, r.Turn())
	assert.Equal(t, StateContinue, r.Last())
	assert.Equal(t, MoveSequence{South}, r.TurnLog())
}

func TestRefereeStopsAfterGoal(t *testing.T) {
	r := newReferee(t, RulesTrail, PlayerB)
	for i := 0; i < 5; i++ {
		require.Equal(t, StateContinue, r.Play(North))
	}
	require.Equal(t, StateGoalA, r.Play(NorthEast), "own goal by B")
	assert.True(t, r.Over())
	w, ok := r.Winner()
	require.True(t, ok)
	assert.Equal(t, PlayerA, w)
	assert.Equal(t, MoveSequence{North, North, North, North, North, NorthEast}, r.LastTurn())

	assert.Equal(t, StateIllegal, r.Play(South))
	assert.False(t, r.Blocked())
}

func TestRefereeBlockedAfterBoxedIn(t *testing.T) {
	r := newReferee(t, RulesTrail, PlayerA)
	for _, d := range []Direction{NorthWest, NorthWest, NorthWest, North} {
		require.Equal(t, StateContinue, r.Play(d))
	}
	require.Equal(t, StateTurnOver, r.Play(NorthWest))
	assert.Equal(t, PlayerB, r.Turn())
	assert.True(t, r.Blocked())
	assert.False(t, r.Over())
}

func TestSnapshotIsIndependent(t *testing.T) {
	r := newReferee(t, RulesTrail, PlayerA)
	r.Play(South)
	snap := r.Snapshot()
	snap.Play(South)
	snap.Play(South)

	assert.Equal(t, Vertex{X: 4, Y: 6}, r.Board().Ball())
	assert.Equal(t, MoveSequence{South}, r.TurnLog())
	assert.Equal(t, Vertex{X: 4, Y: 8}, snap.Board().Ball())
}

func TestParseDirection(t *testing.T) {
	for i, name := range []string{"n", "NE", "east", "South-East", "s", "sw", "West", "north_west"} {
		d, err := ParseDirection(name)
		require.NoError(t, err, name)
		assert.Equal(t, Direction(i), d, name)
	}
	_, err := ParseDirection("up")
	assert.Error(t, err)

	seq, err := SequenceFromCodes([]int{4, 3, 7})
	require.NoError(t, err)
	assert.Equal(t, MoveSequence{South, SouthEast, NorthWest}, seq)
	assert.Equal(t, []int{4, 3, 7}, seq.Codes())
	_, err = SequenceFromCodes([]int{1, 8})
	assert.Error(t, err)
}
