// Package match orchestrates one paper-soccer match: configuration, local
// human and computer turns, and turns relayed from a linked peer. All board
// access goes through the Manager's lock.
package match

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"paper-soccer/internal/config"
	"paper-soccer/internal/game"
	"paper-soccer/internal/link"
	"paper-soccer/internal/strategy"
)

type Manager struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	log       zerolog.Logger
	bcast     Broadcaster

	dims     *game.Dimensions
	rules    game.Rules
	starting game.Player
	controls [2]Control
	strat    strategy.Strategy
	stratOps strategy.Options
	ref      *game.Referee

	phase     Phase
	outcome   Outcome
	winner    *game.Player
	reason    string
	turnIndex uint64

	peer     Peer
	peerRole link.Role
	attempt  *link.Attempt
}

// New returns a match in CONFIGURING under bounce rules, with player A
// human and player B computer controlled. A nil Broadcaster drops events.
func New(b Broadcaster, opts strategy.Options) *Manager {
	if b == nil {
		b = nopBroadcaster{}
	}
	id := uuid.NewString()
	return &Manager{
		id:        id,
		createdAt: time.Now(),
		log:       log.With().Str("component", "match").Str("match", id).Logger(),
		bcast:     b,
		rules:     game.RulesBounce,
		starting:  game.PlayerA,
		controls:  [2]Control{HumanLocal, AILocal},
		stratOps:  opts,
	}
}

// FromConfig builds a ready-to-play match from the loaded configuration.
func FromConfig(cfg config.Config, b Broadcaster) (*Manager, error) {
	m := New(b, strategy.OptionsFrom(cfg))
	if err := m.SetRules(cfg.Rules); err != nil {
		return nil, err
	}
	if err := m.SetStartingPlayer(cfg.StartingPlayer); err != nil {
		return nil, err
	}
	if err := m.ConfigureBoard(cfg.Board); err != nil {
		return nil, err
	}
	if err := m.SetStrategy(cfg.Strategy); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) ID() string           { return m.id }
func (m *Manager) CreatedAt() time.Time { return m.createdAt }

func (m *Manager) configurable() error {
	if m.phase != Configuring {
		return fmt.Errorf("%w (%s)", ErrStarted, m.phase)
	}
	return nil
}

// ConfigureBoard builds the board. On failure the match is left without a
// board.
func (m *Manager) ConfigureBoard(d game.Dimensions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.configurable(); err != nil {
		return err
	}
	m.dims, m.ref = nil, nil
	if err := m.rebuild(d); err != nil {
		return err
	}
	m.log.Debug().Int("width", d.Width).Int("height", d.Height).Int("goal", d.GoalWidth).Msg("board configured")
	return nil
}

func (m *Manager) rebuild(d game.Dimensions) error {
	b, err := game.Build(d, m.rules)
	if err != nil {
		return err
	}
	m.dims = &d
	m.ref = game.NewReferee(b, m.starting)
	return nil
}

func (m *Manager) SetRules(r game.Rules) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.configurable(); err != nil {
		return err
	}
	m.rules = r
	if m.dims != nil {
		return m.rebuild(*m.dims)
	}
	return nil
}

func (m *Manager) SetStartingPlayer(p game.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.configurable(); err != nil {
		return err
	}
	m.starting = p
	if m.dims != nil {
		return m.rebuild(*m.dims)
	}
	return nil
}

// SetStrategy selects the computer player by identifier.
func (m *Manager) SetStrategy(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.configurable(); err != nil {
		return err
	}
	s, err := strategy.New(name, m.stratOps)
	if err != nil {
		return err
	}
	m.strat = s
	return nil
}

// UseStrategy installs an already built strategy.
func (m *Manager) UseStrategy(s strategy.Strategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.configurable(); err != nil {
		return err
	}
	m.strat = s
	return nil
}

func (m *Manager) SetControl(p game.Player, c Control) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.configurable(); err != nil {
		return err
	}
	if c < HumanLocal || c > HumanRemote {
		return fmt.Errorf("%w: %d", ErrUnknownInput, int(c))
	}
	m.controls[p] = c
	return nil
}

// playable reports why no move can be made right now.
func (m *Manager) playable() error {
	switch {
	case m.phase == Finished && m.outcome == OutcomeAborted:
		return fmt.Errorf("%w: %w", ErrMatchOver, ErrAborted)
	case m.phase == Finished:
		return ErrMatchOver
	case m.ref == nil:
		return fmt.Errorf("%w: board not configured", ErrNotReady)
	}
	return nil
}

// Turn is the on-turn player and how that player is controlled.
func (m *Manager) Turn() (game.Player, Control) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ref == nil {
		return m.starting, m.controls[m.starting]
	}
	t := m.ref.Turn()
	return t, m.controls[t]
}

// IsLegal tells the presentation layer whether d may be offered as input.
func (m *Manager) IsLegal(d game.Direction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playable() != nil {
		return false
	}
	return m.ref.Board().IsLegal(d)
}

// ApplyHumanMove plays one atomic move for the on-turn local human. A move
// that completes the turn is relayed to the linked peer before returning;
// should that fail the match is aborted and the error wraps ErrAborted.
func (m *Manager) ApplyHumanMove(d game.Direction) (game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.playable(); err != nil {
		return game.StateIllegal, err
	}
	mover := m.ref.Turn()
	if m.controls[mover] != HumanLocal {
		return game.StateIllegal, fmt.Errorf("%w: player %s is %s controlled", ErrNotYourTurn, mover, m.controls[mover])
	}
	b := m.ref.Board()
	if !b.IsLegal(d) {
		return game.StateIllegal, fmt.Errorf("%w: %s from %s", game.ErrIllegalMove, d, b.Ball())
	}

	m.start()
	st := m.step(mover, d, false)
	if !st.EndsTurn() {
		return st, nil
	}
	return st, m.endTurn(mover, st)
}

// RequestComputerMove lets the strategy play the whole turn for the on-turn
// computer player and returns the sequence it played.
func (m *Manager) RequestComputerMove() (game.MoveSequence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.playable(); err != nil {
		return nil, err
	}
	mover := m.ref.Turn()
	if m.controls[mover] != AILocal {
		return nil, fmt.Errorf("%w: player %s is %s controlled", ErrNotYourTurn, mover, m.controls[mover])
	}
	if m.strat == nil {
		return nil, fmt.Errorf("%w: no strategy selected", ErrNotReady)
	}

	seq := m.strat.SelectMoveSequence(m.ref.Snapshot())
	if reason := checkTurn(m.ref, seq); reason != "" {
		m.log.Error().Str("strategy", m.strat.Name()).Str("sequence", seq.String()).Str("reason", reason).Msg("strategy broke the turn contract")
		return nil, fmt.Errorf("strategy %s: %s", m.strat.Name(), reason)
	}

	m.start()
	st := game.StateIllegal
	for _, d := range seq {
		st = m.step(mover, d, false)
	}
	m.log.Debug().Str("player", mover.String()).Str("sequence", seq.String()).Msg("computer turn")
	return seq.Clone(), m.endTurn(mover, st)
}

// checkTurn replays seq on a copy of r and describes the first reason it is
// not exactly one legal turn.
func checkTurn(r *game.Referee, seq game.MoveSequence) string {
	if len(seq) == 0 {
		return "empty turn"
	}
	sim := r.Snapshot()
	for i, d := range seq {
		if !d.Valid() {
			return fmt.Sprintf("step %d: bad direction %d", i, int(d))
		}
		if !sim.Board().IsLegal(d) {
			return fmt.Sprintf("step %d: %s is illegal from %s", i, d, sim.Board().Ball())
		}
		st := sim.Play(d)
		last := i == len(seq)-1
		switch {
		case st.EndsTurn() && !last:
			return fmt.Sprintf("step %d: turn ended with %d steps left", i, len(seq)-1-i)
		case !st.EndsTurn() && last:
			return fmt.Sprintf("turn does not end after %d steps", len(seq))
		}
	}
	return ""
}

func (m *Manager) start() {
	if m.phase == Configuring {
		m.phase = InProgress
		m.log.Info().Str("starting", m.ref.Turn().String()).Msg("match started")
	}
}

// step plays one legal atomic move and announces it.
func (m *Manager) step(mover game.Player, d game.Direction, remote bool) game.State {
	st := m.ref.Play(d)
	m.bcast.Broadcast(m.id, ActionMove, MoveEvent{
		Player:    mover,
		Direction: d,
		State:     st,
		Ball:      m.ref.Board().Ball(),
		Remote:    remote,
	})
	return st
}

// endTurn books a completed turn: bumps the shared turn index, relays the
// turn when it was played here, then settles goal, blocked or turn change.
func (m *Manager) endTurn(mover game.Player, st game.State) error {
	m.turnIndex++
	seq := m.ref.LastTurn()

	if m.peer != nil && m.controls[mover] != HumanRemote {
		msg := link.Message{SenderTurnIndex: m.turnIndex, Directions: seq}
		if serr := m.peer.Send(msg); serr != nil {
			m.log.Error().Err(serr).Uint64("turn", m.turnIndex).Msg("relay failed")
			m.abort(fmt.Sprintf("relay of turn %d failed: %v", m.turnIndex, serr))
			return fmt.Errorf("%w: relay turn %d: %v", ErrAborted, m.turnIndex, serr)
		}
	}

	switch {
	case st.IsGoal():
		scorer, _ := st.Scorer()
		if scorer == game.PlayerA {
			m.finish(OutcomeGoalA, scorer, seq)
		} else {
			m.finish(OutcomeGoalB, scorer, seq)
		}
	case m.ref.Blocked():
		// the player who boxed the ball in loses
		m.finish(OutcomeBlocked, m.ref.Turn(), seq)
	default:
		next := m.ref.Turn()
		m.bcast.Broadcast(m.id, ActionTurn, TurnEvent{
			Turn:      next,
			Control:   m.controls[next],
			TurnIndex: m.turnIndex,
			LastTurn:  seq,
		})
	}
	return nil
}

func (m *Manager) finish(o Outcome, winner game.Player, last game.MoveSequence) {
	m.phase = Finished
	m.outcome = o
	m.winner = &winner
	m.log.Info().Str("outcome", o.String()).Str("winner", winner.String()).Uint64("turns", m.turnIndex).Msg("match finished")
	m.bcast.Broadcast(m.id, ActionFinished, FinishedEvent{
		Outcome:   o,
		Winner:    &winner,
		TurnIndex: m.turnIndex,
		LastTurn:  last,
	})
	m.dropPeer()
}

// Abort ends the match without a winner. The board is kept for inspection.
func (m *Manager) Abort(reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == Finished {
		return ErrMatchOver
	}
	m.abort(reason)
	return nil
}

func (m *Manager) abort(reason string) {
	m.phase = Finished
	m.outcome = OutcomeAborted
	m.reason = reason
	m.log.Warn().Str("reason", reason).Uint64("turns", m.turnIndex).Msg("match aborted")
	m.bcast.Broadcast(m.id, ActionAborted, AbortedEvent{Reason: reason})
	m.dropPeer()
}

func (m *Manager) dropPeer() {
	if m.attempt != nil {
		m.attempt.Cancel()
		m.attempt = nil
	}
	if m.peer != nil {
		_ = m.peer.Close()
		m.peer = nil
	}
}

// View projects the current state for the presentation layer.
func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		ID:          m.id,
		Phase:       m.phase,
		Outcome:     m.outcome,
		AbortReason: m.reason,
		Rules:       m.rules,
		Starting:    m.starting,
		Controls:    map[game.Player]Control{game.PlayerA: m.controls[game.PlayerA], game.PlayerB: m.controls[game.PlayerB]},
		Turn:        m.starting,
		TurnIndex:   m.turnIndex,
		LastState:   game.StateContinue,
		Connecting:  m.attempt != nil,
	}
	if m.winner != nil {
		w := *m.winner
		v.Winner = &w
	}
	if m.dims != nil {
		d := *m.dims
		v.Dimensions = &d
	}
	if m.strat != nil {
		v.Strategy = m.strat.Name()
	}
	if m.peer != nil {
		r := m.peerRole
		v.Link = &r
	}
	if m.ref != nil {
		b := m.ref.Board()
		ball := b.Ball()
		v.Ball = &ball
		v.Turn = m.ref.Turn()
		v.TurnLog = m.ref.TurnLog()
		v.LastTurn = m.ref.LastTurn()
		v.LastState = m.ref.Last()
		v.Visited = b.VisitedEdges()
		if m.phase != Finished {
			v.Legal = b.LegalDirections()
		}
	}
	return v
}

// Board returns a deep copy of the live board, nil before configuration.
func (m *Manager) Board() *game.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ref == nil {
		return nil
	}
	return m.ref.Board().Clone()
}
