package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var standard = Dimensions{Width: 8, Height: 10, GoalWidth: 2}

func newBoard(t *testing.T, rules Rules) *Board {
	t.Helper()
	b, err := Build(standard, rules)
	require.NoError(t, err)
	return b
}

// play applies moves and returns the last state, failing on any illegal step.
func play(t *testing.T, b *Board, moves ...Direction) State {
	t.Helper()
	st := StateIllegal
	for i, d := range moves {
		st = b.ApplyMove(d)
		require.NotEqual(t, StateIllegal, st, "move %d (%s) from %s", i, d, b.Ball())
	}
	return st
}

func TestBuildPlacesBallAtCentreWithUnvisitedEdges(t *testing.T) {
	cases := []Dimensions{
		{Width: 8, Height: 10, GoalWidth: 2},
		{Width: 6, Height: 8, GoalWidth: 2},
		{Width: 10, Height: 12, GoalWidth: 4},
		{Width: 4, Height: 2, GoalWidth: 2},
	}
	for _, d := range cases {
		b, err := Build(d, RulesTrail)
		require.NoError(t, err, "%+v", d)
		assert.Equal(t, Vertex{X: d.Width / 2, Y: d.Height / 2}, b.Ball())
		edges := b.Edges()
		require.NotEmpty(t, edges)
		for _, e := range edges {
			assert.False(t, e.Visited, "edge %v-%v", e.A, e.B)
		}
		assert.Empty(t, b.TurnLog())
	}
}

func TestBuildRejectsBadDimensions(t *testing.T) {
	cases := []struct {
		d    Dimensions
		want error
	}{
		{Dimensions{Width: 0, Height: 10, GoalWidth: 2}, ErrInvalidDimension},
		{Dimensions{Width: 8, Height: -2, GoalWidth: 2}, ErrInvalidDimension},
		{Dimensions{Width: 7, Height: 10, GoalWidth: 3}, ErrInvalidGoalWidth},
		{Dimensions{Width: 8, Height: 10, GoalWidth: 8}, ErrInvalidGoalWidth},
		{Dimensions{Width: 8, Height: 10, GoalWidth: 10}, ErrInvalidGoalWidth},
		{Dimensions{Width: 8, Height: 10, GoalWidth: 0}, ErrInvalidGoalWidth},
		{Dimensions{Width: 8, Height: 10, GoalWidth: 3}, ErrInvalidGoalWidth},
		{Dimensions{Width: 7, Height: 10, GoalWidth: 2}, ErrInvalidDimension},
		{Dimensions{Width: 8, Height: 9, GoalWidth: 2}, ErrInvalidDimension},
	}
	for _, tc := range cases {
		b, err := Build(tc.d, RulesTrail)
		assert.Nil(t, b, "%+v", tc.d)
		require.Error(t, err, "%+v", tc.d)
		assert.True(t, errors.Is(err, tc.want), "%+v: got %v", tc.d, err)
		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, tc.d, ce.Dimensions)
	}
}

func TestSouthFromCentreContinues(t *testing.T) {
	b := newBoard(t, RulesTrail)
	require.Equal(t, Vertex{X: 4, Y: 5}, b.Ball())
	require.True(t, b.IsLegal(South))

	st := b.ApplyMove(South)
	assert.Equal(t, Vertex{X: 4, Y: 6}, b.Ball())
	assert.Equal(t, StateContinue, st)
	assert.Equal(t, []Edge{{A: Vertex{X: 4, Y: 5}, B: Vertex{X: 4, Y: 6}, Visited: true}}, b.VisitedEdges())
	assert.Equal(t, MoveSequence{South}, b.TurnLog())
}

func TestVisitedEdgeCannotBeReused(t *testing.T) {
	b := newBoard(t, RulesTrail)
	for _, d := range []Direction{South, East, NorthWest, West} {
		st := b.ApplyMove(d)
		require.NotEqual(t, StateIllegal, st)
		assert.False(t, b.IsLegal(d.Opposite()), "edge just drawn by %s must be closed", d)

		before := b.Ball()
		visited := len(b.VisitedEdges())
		assert.Equal(t, StateIllegal, b.ApplyMove(d.Opposite()))
		assert.Equal(t, StateIllegal, b.ApplyMove(d.Opposite()), "rejection is idempotent")
		assert.Equal(t, before, b.Ball())
		assert.Len(t, b.VisitedEdges(), visited)
	}
}

func TestInvalidDirectionIsIllegal(t *testing.T) {
	b := newBoard(t, RulesTrail)
	assert.False(t, b.IsLegal(Direction(8)))
	assert.Equal(t, StateIllegal, b.ApplyMove(Direction(200)))
	assert.Equal(t, Vertex{X: 4, Y: 5}, b.Ball())
}

func TestSidelineEdgesDoNotExist(t *testing.T) {
	b := newBoard(t, RulesTrail)
	play(t, b, West, West, West, West)
	require.Equal(t, Vertex{X: 0, Y: 5}, b.Ball())

	assert.False(t, b.IsLegal(North))
	assert.False(t, b.IsLegal(South))
	assert.False(t, b.IsLegal(West))
	assert.False(t, b.IsLegal(NorthWest))
	assert.True(t, b.IsLegal(NorthEast))
	assert.True(t, b.IsLegal(SouthEast))
}

func TestGoalPostGeometry(t *testing.T) {
	b := newBoard(t, RulesTrail)
	play(t, b, North, North, North, North, NorthWest)
	require.Equal(t, Vertex{X: 3, Y: 0}, b.Ball(), "left post")

	assert.False(t, b.IsLegal(North), "along the post side wall")
	assert.False(t, b.IsLegal(NorthWest), "outside the goal")
	assert.False(t, b.IsLegal(West), "end line outside the mouth")
	assert.True(t, b.IsLegal(NorthEast), "into the goal")
	assert.True(t, b.IsLegal(East), "across the mouth")
}

func TestNorthGoalScoresForA(t *testing.T) {
	b := newBoard(t, RulesTrail)
	st := play(t, b, North, North, North, North, North)
	require.Equal(t, StateContinue, st)
	require.Equal(t, Vertex{X: 4, Y: 0}, b.Ball())
	assert.True(t, b.CanScore(PlayerA))
	assert.False(t, b.CanScore(PlayerB))

	st = b.ApplyMove(North)
	assert.Equal(t, StateGoalA, st)
	p, ok := b.GoalReached()
	require.True(t, ok)
	assert.Equal(t, PlayerA, p)
	assert.Empty(t, b.LegalDirections(), "no moves once the ball is in a goal")
}

func TestSouthGoalScoresForB(t *testing.T) {
	b := newBoard(t, RulesTrail)
	st := play(t, b, South, South, South, South, South, SouthWest)
	assert.Equal(t, StateGoalB, st)
	assert.Equal(t, Vertex{X: 3, Y: 11}, b.Ball())
}

func TestBoxedInCornerEndsTurn(t *testing.T) {
	b := newBoard(t, RulesTrail)
	st := play(t, b, NorthWest, NorthWest, NorthWest, North, NorthWest)
	assert.Equal(t, Vertex{X: 0, Y: 0}, b.Ball())
	assert.Equal(t, StateTurnOver, st)
	assert.Empty(t, b.LegalDirections())
}

func TestBounceRules(t *testing.T) {
	b := newBoard(t, RulesBounce)

	assert.Equal(t, StateTurnOver, b.ApplyMove(South), "fresh interior vertex")
	assert.Equal(t, StateTurnOver, b.ApplyMove(East))
	assert.Equal(t, StateContinue, b.ApplyMove(NorthWest), "centre was already touched")
	assert.Equal(t, Vertex{X: 4, Y: 5}, b.Ball())

	b2 := newBoard(t, RulesBounce)
	b2.ApplyMove(West)
	b2.ApplyMove(West)
	b2.ApplyMove(West)
	assert.Equal(t, StateContinue, b2.ApplyMove(West), "sideline rebounds")
}

func TestCloneDoesNotAlias(t *testing.T) {
	b := newBoard(t, RulesTrail)
	b.ApplyMove(South)
	cp := b.Clone()
	cp.ApplyMove(East)
	cp.ApplyMove(East)

	assert.Equal(t, Vertex{X: 4, Y: 6}, b.Ball())
	assert.Len(t, b.VisitedEdges(), 1)
	assert.Equal(t, MoveSequence{South}, b.TurnLog())
	assert.Len(t, cp.VisitedEdges(), 3)
}

func TestDistanceToGoal(t *testing.T) {
	b := newBoard(t, RulesTrail)
	assert.Equal(t, 6, b.DistanceToGoal(b.Ball(), PlayerA))
	assert.Equal(t, 6, b.DistanceToGoal(b.Ball(), PlayerB))
	assert.Equal(t, 1, b.DistanceToGoal(Vertex{X: 4, Y: 0}, PlayerA))
	assert.Equal(t, 3, b.DistanceToGoal(Vertex{X: 0, Y: 0}, PlayerA))
}
