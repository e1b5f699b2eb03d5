package strategy

import (
	"paper-soccer/internal/config"
	"paper-soccer/internal/game"
)

// greedy picks the best scoring single step each time, ties broken at random.
type greedy struct {
	w   config.Weights
	rnd *lockedRand
}

func newGreedy(o Options) *greedy { return &greedy{w: o.Weights, rnd: newLockedRand(o.Seed)} }

func (s *greedy) Name() string { return "greedy" }

func (s *greedy) SelectMoveSequence(snap *game.Referee) game.MoveSequence {
	me := snap.Turn()
	return playOut(snap, func(r *game.Referee, legal []game.Direction) game.Direction {
		return s.best(r, legal, me)
	})
}

func (s *greedy) best(r *game.Referee, legal []game.Direction, me game.Player) game.Direction {
	var best []game.Direction
	bestScore := minScore
	for _, d := range legal {
		score := stepScore(r, d, me, s.w)
		switch {
		case score > bestScore:
			bestScore = score
			best = append(best[:0], d)
		case score == bestScore:
			best = append(best, d)
		}
	}
	if len(best) == 0 {
		return legal[0]
	}
	return best[s.rnd.Intn(len(best))]
}
