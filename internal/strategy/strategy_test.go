package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-soccer/internal/game"
)

func newReferee(t *testing.T, rules game.Rules, starting game.Player) *game.Referee {
	t.Helper()
	b, err := game.Build(game.Dimensions{Width: 8, Height: 10, GoalWidth: 2}, rules)
	require.NoError(t, err)
	return game.NewReferee(b, starting)
}

// replay checks the turn contract: every step legal, only the last ends the turn.
func replay(t *testing.T, r *game.Referee, seq game.MoveSequence) game.State {
	t.Helper()
	require.NotEmpty(t, seq)
	st := game.StateIllegal
	for i, d := range seq {
		st = r.Play(d)
		require.NotEqual(t, game.StateIllegal, st, "step %d (%s) of %s", i, d, seq)
		if i < len(seq)-1 {
			require.Equal(t, game.StateContinue, st, "turn ended early at step %d of %s", i, seq)
		}
	}
	require.True(t, st.EndsTurn(), "sequence %s ended in %s", seq, st)
	return st
}

func allStrategies(t *testing.T) []Strategy {
	t.Helper()
	var out []Strategy
	for _, name := range Names() {
		opts := DefaultOptions()
		opts.Seed = 7
		opts.Budget = 300
		s, err := New(name, opts)
		require.NoError(t, err)
		require.Equal(t, name, s.Name())
		out = append(out, s)
	}
	return out
}

func TestFactory(t *testing.T) {
	assert.Equal(t, []string{"greedy", "lookahead", "random"}, Names())

	s, err := New(" Greedy ", Options{})
	require.NoError(t, err)
	assert.Equal(t, "greedy", s.Name())

	_, err = New("minimax", DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestSequencesReplayLegally(t *testing.T) {
	for _, rules := range []game.Rules{game.RulesTrail, game.RulesBounce} {
		for _, s := range allStrategies(t) {
			live := newReferee(t, rules, game.PlayerA)
			for turn := 0; turn < 12 && !live.Over() && !live.Blocked(); turn++ {
				snap := live.Snapshot()
				seq := s.SelectMoveSequence(snap)
				// the snapshot handed in is left alone
				assert.Equal(t, live.Board().Ball(), snap.Board().Ball(), "%s/%s", s.Name(), rules)
				assert.Equal(t, live.Board().VisitedEdges(), snap.Board().VisitedEdges())

				replay(t, live, seq)
			}
		}
	}
}

func TestStrategiesTakeAnOpenGoal(t *testing.T) {
	for _, name := range []string{"greedy", "lookahead"} {
		s, err := New(name, DefaultOptions())
		require.NoError(t, err)

		r := newReferee(t, game.RulesTrail, game.PlayerA)
		for i := 0; i < 5; i++ {
			require.Equal(t, game.StateContinue, r.Play(game.North))
		}
		seq := s.SelectMoveSequence(r.Snapshot())
		require.Len(t, seq, 1, name)
		assert.Equal(t, game.StateGoalA, replay(t, r, seq), name)
	}
}

func TestStrategiesAvoidOwnGoal(t *testing.T) {
	for _, name := range []string{"greedy", "lookahead"} {
		s, err := New(name, DefaultOptions())
		require.NoError(t, err)

		// B on the north goal line with the mouth open behind it
		r := newReferee(t, game.RulesTrail, game.PlayerB)
		for i := 0; i < 5; i++ {
			require.Equal(t, game.StateContinue, r.Play(game.North))
		}
		seq := s.SelectMoveSequence(r.Snapshot())
		st := replay(t, r, seq)
		assert.NotEqual(t, game.StateGoalA, st, "%s scored an own goal with %s", name, seq)
	}
}

func TestNoLegalMoveGivesEmptySequence(t *testing.T) {
	r := newReferee(t, game.RulesTrail, game.PlayerA)
	for _, d := range []game.Direction{game.NorthWest, game.NorthWest, game.NorthWest, game.North, game.NorthWest} {
		r.Play(d)
	}
	require.True(t, r.Blocked())
	for _, s := range allStrategies(t) {
		assert.Empty(t, s.SelectMoveSequence(r.Snapshot()), s.Name())
	}
}
