// Package strategy holds the computer players. A strategy receives a snapshot
// of the referee and returns the whole turn; it never touches the live board.
package strategy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"paper-soccer/internal/config"
	"paper-soccer/internal/game"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy selects a full move sequence for the on-turn player of snap.
// Replayed against the same position the sequence is legal step by step and
// only its last step ends the turn. An empty sequence means no legal move.
type Strategy interface {
	Name() string
	SelectMoveSequence(snap *game.Referee) game.MoveSequence
}

type Options struct {
	Weights config.Weights
	// Budget caps the positions the lookahead strategy expands per turn.
	Budget int
	// Seed drives random choices; zero picks a time based seed.
	Seed int64
}

func DefaultOptions() Options {
	return Options{Weights: config.DefaultWeights(), Budget: 2000}
}

// OptionsFrom maps the loaded configuration onto strategy options.
func OptionsFrom(cfg config.Config) Options {
	return Options{Weights: cfg.Weights, Budget: cfg.SearchBudget}
}

type constructor func(Options) Strategy

var registry = map[string]constructor{
	"random":    func(o Options) Strategy { return newRandom(o) },
	"greedy":    func(o Options) Strategy { return newGreedy(o) },
	"lookahead": func(o Options) Strategy { return newLookahead(o) },
}

// Names lists the registered identifiers, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// New builds the strategy registered under name.
func New(name string, opts Options) (Strategy, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultOptions().Budget
	}
	if opts.Weights == (config.Weights{}) {
		opts.Weights = config.DefaultWeights()
	}
	return ctor(opts), nil
}

// lockedRand is a rand.Rand safe for concurrent matches sharing a strategy.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// playOut steps through pick on a private copy until the turn ends. pick
// only ever sees positions that still have a legal direction.
func playOut(snap *game.Referee, pick func(r *game.Referee, legal []game.Direction) game.Direction) game.MoveSequence {
	r := snap.Snapshot()
	var seq game.MoveSequence
	for {
		legal := r.Board().LegalDirections()
		if len(legal) == 0 {
			return seq
		}
		d := pick(r, legal)
		st := r.Play(d)
		if st == game.StateIllegal {
			// pick returned something outside legal; fall back to the first
			d = legal[0]
			st = r.Play(d)
		}
		seq = append(seq, d)
		if st.EndsTurn() {
			return seq
		}
	}
}
