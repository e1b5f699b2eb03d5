package game

// Judge decides the state right after a move: goals first, then whether the
// ball is boxed in, then the rule set's continuation test. It does not
// mutate the board.
func Judge(b *Board) State {
	if p, ok := b.GoalReached(); ok {
		if p == PlayerA {
			return StateGoalA
		}
		return StateGoalB
	}
	if len(b.LegalDirections()) == 0 {
		return StateTurnOver
	}
	if b.rules == RulesBounce && !b.rebound {
		return StateTurnOver
	}
	return StateContinue
}

// GoalReached reports which player's target goal holds the ball.
func (b *Board) GoalReached() (Player, bool) {
	if !b.isGoalVertex(b.ball) {
		return 0, false
	}
	if b.ball.Y < 0 {
		return PlayerA, true
	}
	return PlayerB, true
}

// InGoal reports whether v lies inside the goal mouth attacked by p.
func (b *Board) InGoal(v Vertex, p Player) bool {
	if !b.isGoalVertex(v) {
		return false
	}
	if p == PlayerA {
		return v.Y < 0
	}
	return v.Y > 0
}
