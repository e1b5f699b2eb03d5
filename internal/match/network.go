package match

import (
	"context"
	"fmt"

	"paper-soccer/internal/game"
	"paper-soccer/internal/link"
)

// LocalSide is the player this end keeps once linked: the host plays A,
// the guest plays B.
func LocalSide(r link.Role) game.Player {
	if r == link.Guest {
		return game.PlayerB
	}
	return game.PlayerA
}

// Establish connects to the peer in the background. ctx bounds both the
// attempt and the resulting link. Once connected the host plays A and the
// guest plays B; the other player becomes HumanRemote. Set the local
// player's control before calling: the peer may play as soon as the link
// is attached, and from then on controls are fixed.
func (m *Manager) Establish(ctx context.Context, cfg link.Config, d link.Discovery) (*link.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.configurable(); err != nil {
		return nil, err
	}
	if m.peer != nil || m.attempt != nil {
		return nil, ErrLinkBusy
	}
	a := link.Establish(ctx, cfg, d)
	m.attempt = a
	go m.await(ctx, a)
	return a, nil
}

func (m *Manager) await(ctx context.Context, a *link.Attempt) {
	<-a.Done()
	res := a.Result()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != a {
		// canceled or the match ended meanwhile
		if res.Link != nil {
			_ = res.Link.Close()
		}
		return
	}
	m.attempt = nil
	if res.Err != nil {
		m.bcast.Broadcast(m.id, ActionLink, LinkEvent{Status: "failed", Role: res.Role, Error: res.Err.Error()})
		return
	}
	if m.phase != Configuring {
		_ = res.Link.Close()
		m.bcast.Broadcast(m.id, ActionLink, LinkEvent{Status: "failed", Role: res.Role, Error: "match started before the peer connected"})
		return
	}

	local := LocalSide(res.Role)
	m.controls[local.Opponent()] = HumanRemote
	if m.controls[local] == HumanRemote {
		m.controls[local] = HumanLocal
	}
	m.attach(ctx, res.Link, res.Role)
}

// AttachLink adopts an already established peer. Controls are left as they
// are; the caller marks the remote player with SetControl.
func (m *Manager) AttachLink(ctx context.Context, p Peer, role link.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.configurable(); err != nil {
		return err
	}
	if m.peer != nil || m.attempt != nil {
		return ErrLinkBusy
	}
	m.attach(ctx, p, role)
	return nil
}

func (m *Manager) attach(ctx context.Context, p Peer, role link.Role) {
	m.peer = p
	m.peerRole = role
	m.log.Info().Str("role", role.String()).Msg("peer attached")
	m.bcast.Broadcast(m.id, ActionLink, LinkEvent{Status: "established", Role: role})
	go m.readLoop(ctx, p)
}

// readLoop feeds peer turns into the serialized apply path. Losing the peer
// mid-match aborts it.
func (m *Manager) readLoop(ctx context.Context, p Peer) {
	err := p.Run(ctx, m.ReceiveRemote)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.peer != p {
		return
	}
	m.peer = nil
	if m.phase == InProgress {
		m.abort(fmt.Sprintf("link lost: %v", err))
		return
	}
	m.log.Warn().Err(err).Msg("peer left before the match started")
	m.bcast.Broadcast(m.id, ActionLink, LinkEvent{Status: "lost", Role: m.peerRole, Error: err.Error()})
}

// CancelLink stops a pending attempt or drops the link. Dropping it during
// a match aborts the match.
func (m *Manager) CancelLink() {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.attempt != nil:
		role := m.attempt.Role()
		m.attempt.Cancel()
		m.attempt = nil
		m.bcast.Broadcast(m.id, ActionLink, LinkEvent{Status: "canceled", Role: role})
	case m.peer != nil && m.phase == InProgress:
		m.abort("link closed locally")
	case m.peer != nil:
		_ = m.peer.Close()
		m.peer = nil
		m.bcast.Broadcast(m.id, ActionLink, LinkEvent{Status: "closed", Role: m.peerRole})
	}
}

// ReceiveRemote applies one turn relayed by the peer. The turn must carry
// the next turn index, arrive while the remote player is on turn and replay
// legally with only its last step ending the turn. A turn reaching a match
// with no board yet, or anything else, is a *DesyncError and aborts the match without touching the board.
func (m *Manager) ReceiveRemote(msg link.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	expected := m.turnIndex + 1
	if m.ref == nil && m.phase != Finished {
		return m.desync(expected, msg, "board not configured")
	}
	if err := m.playable(); err != nil {
		return err
	}

	mover := m.ref.Turn()
	var reason string
	switch {
	case msg.SenderTurnIndex != expected:
		reason = "turn index out of sequence"
	case m.controls[mover] != HumanRemote:
		reason = fmt.Sprintf("player %s is not remote controlled", mover)
	default:
		reason = checkTurn(m.ref, msg.Directions)
	}
	if reason != "" {
		return m.desync(expected, msg, reason)
	}

	m.start()
	st := game.StateIllegal
	for _, d := range msg.Directions {
		st = m.step(mover, d, true)
	}
	m.log.Debug().Uint64("turn", expected).Str("directions", msg.Directions.String()).Msg("peer turn applied")
	return m.endTurn(mover, st)
}

func (m *Manager) desync(expected uint64, msg link.Message, reason string) error {
	derr := &DesyncError{Expected: expected, Got: msg.SenderTurnIndex, Reason: reason}
	m.log.Error().Err(derr).Str("directions", msg.Directions.String()).Msg("rejecting peer turn")
	m.abort(derr.Error())
	return derr
}
