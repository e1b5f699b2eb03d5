package strategy

import (
	"math"

	"paper-soccer/internal/config"
	"paper-soccer/internal/game"
)

// stepScore rates playing d for me from r's position, looking one move deep.
func stepScore(r *game.Referee, d game.Direction, me game.Player, w config.Weights) int {
	b := r.Board()
	before := b.DistanceToGoal(b.Ball(), me)

	next := r.Snapshot()
	st := next.Play(d)
	if st == game.StateIllegal {
		return minScore
	}
	if st.IsGoal() {
		return goalScore(st, me, w)
	}

	score := 0
	nb := next.Board()
	// Advance towards the target goal
	score += (before - nb.DistanceToGoal(nb.Ball(), me)) * w.WAdvance

	if st == game.StateContinue {
		// Keeping the ball is worth more when it is close to scoring
		score += w.WBounce
		if nb.CanScore(me) {
			score += w.WGoal / 2
		}
		return score
	}
	return score + turnEndScore(next, me, w)
}

// positionScore rates a position reached at the end of my turn.
func positionScore(r *game.Referee, me game.Player, w config.Weights) int {
	if r.Over() {
		return goalScore(r.Last(), me, w)
	}
	b := r.Board()
	score := -b.DistanceToGoal(b.Ball(), me) * w.WAdvance
	return score + turnEndScore(r, me, w)
}

// turnEndScore looks at the ball from the opponent's side after my turn.
func turnEndScore(r *game.Referee, me game.Player, w config.Weights) int {
	if r.Blocked() {
		// boxing the ball in loses the match
		return -w.WOwnGoal
	}
	b := r.Board()
	score := 0
	// Threat blocking: an opponent one step from scoring is the worst case
	if b.CanScore(me.Opponent()) {
		score -= w.WExpose
	}
	// Keep the ball away from the goal the opponent attacks
	score += (b.DistanceToGoal(b.Ball(), me.Opponent()) - b.DistanceToGoal(b.Center(), me.Opponent())) * w.WAdvance / 2
	return score
}

func goalScore(st game.State, me game.Player, w config.Weights) int {
	scorer, _ := st.Scorer()
	if scorer == me {
		return w.WGoal
	}
	return -w.WOwnGoal
}

const minScore = math.MinInt32
