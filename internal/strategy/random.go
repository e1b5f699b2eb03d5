package strategy

import "paper-soccer/internal/game"

// random takes a uniformly random legal step until the turn ends.
type random struct {
	rnd *lockedRand
}

func newRandom(o Options) *random { return &random{rnd: newLockedRand(o.Seed)} }

func (s *random) Name() string { return "random" }

func (s *random) SelectMoveSequence(snap *game.Referee) game.MoveSequence {
	return playOut(snap, func(_ *game.Referee, legal []game.Direction) game.Direction {
		return legal[s.rnd.Intn(len(legal))]
	})
}
