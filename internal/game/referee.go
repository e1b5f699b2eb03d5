package game

// Referee wraps a Board with turn ownership. Play is the move entry point;
// it flips the turn on TURN_OVER and goes terminal on a goal.
type Referee struct {
	board    *Board
	turn     Player
	last     State
	lastTurn MoveSequence
	over     bool
}

func NewReferee(b *Board, starting Player) *Referee {
	return &Referee{board: b, turn: starting, last: StateContinue}
}

// Play applies one atomic move for the on-turn player.
func (r *Referee) Play(d Direction) State {
	if r.over {
		return StateIllegal
	}
	st := r.board.ApplyMove(d)
	if st == StateIllegal {
		return st
	}
	r.last = st
	switch {
	case st.IsGoal():
		r.lastTurn = r.board.TurnLog()
		r.over = true
	case st == StateTurnOver:
		r.lastTurn = r.board.TurnLog()
		r.board.resetLog()
		r.turn = r.turn.Opponent()
	}
	return st
}

func (r *Referee) Board() *Board { return r.board }
func (r *Referee) Turn() Player  { return r.turn }
func (r *Referee) Last() State   { return r.last }

// Over is true once a goal was scored.
func (r *Referee) Over() bool { return r.over }

// Winner is the scorer once the referee is over.
func (r *Referee) Winner() (Player, bool) {
	if !r.over {
		return 0, false
	}
	return r.last.Scorer()
}

// TurnLog is the current, unfinished turn.
func (r *Referee) TurnLog() MoveSequence { return r.board.TurnLog() }

// LastTurn is the most recently completed turn.
func (r *Referee) LastTurn() MoveSequence { return r.lastTurn.Clone() }

// Blocked reports that the on-turn player has no legal direction left.
func (r *Referee) Blocked() bool {
	return !r.over && len(r.board.LegalDirections()) == 0
}

// Snapshot is a deep copy a strategy may play on freely.
func (r *Referee) Snapshot() *Referee {
	cp := *r
	cp.board = r.board.Clone()
	cp.lastTurn = r.lastTurn.Clone()
	return &cp
}
