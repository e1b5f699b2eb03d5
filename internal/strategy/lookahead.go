package strategy

import (
	"paper-soccer/internal/config"
	"paper-soccer/internal/game"
)

// lookahead searches whole-turn paths depth first and keeps the one whose end
// position scores best. Once the node budget runs out the remaining paths are
// finished greedily.
type lookahead struct {
	w      config.Weights
	budget int
	greedy *greedy
}

func newLookahead(o Options) *lookahead {
	return &lookahead{w: o.Weights, budget: o.Budget, greedy: newGreedy(o)}
}

func (s *lookahead) Name() string { return "lookahead" }

func (s *lookahead) SelectMoveSequence(snap *game.Referee) game.MoveSequence {
	root := snap.Snapshot()
	if len(root.Board().LegalDirections()) == 0 {
		return nil
	}
	sr := &search{s: s, me: root.Turn(), nodes: s.budget}
	seq, _ := sr.expand(root, nil)
	return seq
}

type search struct {
	s     *lookahead
	me    game.Player
	nodes int
}

// expand returns the best completion of path from r, which is mid-turn.
func (sr *search) expand(r *game.Referee, path game.MoveSequence) (game.MoveSequence, int) {
	var best game.MoveSequence
	bestScore := minScore
	for _, d := range r.Board().LegalDirections() {
		child := r.Snapshot()
		st := child.Play(d)
		p := append(path[:len(path):len(path)], d)

		var seq game.MoveSequence
		var score int
		exhausted := false
		switch {
		case st.EndsTurn():
			seq, score = p, positionScore(child, sr.me, sr.s.w)
		case sr.nodes <= 0:
			seq, score = sr.finish(child, p)
			exhausted = true
		default:
			sr.nodes--
			seq, score = sr.expand(child, p)
		}
		if score > bestScore || best == nil {
			best, bestScore = seq, score
		}
		// out of budget: one greedy completion per frame is enough
		if bestScore >= sr.s.w.WGoal || exhausted {
			break
		}
	}
	return best, bestScore
}

// finish completes a path with greedy steps.
func (sr *search) finish(r *game.Referee, path game.MoveSequence) (game.MoveSequence, int) {
	tail := sr.s.greedy.SelectMoveSequence(r)
	end := r.Snapshot()
	for _, d := range tail {
		end.Play(d)
	}
	out := append(path[:len(path):len(path)], tail...)
	return out, positionScore(end, sr.me, sr.s.w)
}
