package console

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-soccer/internal/game"
	"paper-soccer/internal/link"
	"paper-soccer/internal/match"
	"paper-soccer/internal/strategy"
)

var standard = game.Dimensions{Width: 8, Height: 10, GoalWidth: 2}

func cell(t *testing.T, art string, v game.Vertex, dRow, dCol int) byte {
	t.Helper()
	lines := strings.Split(art, "\n")
	r, c := pos(v)
	r, c = r+dRow, c+dCol
	require.Less(t, r, len(lines))
	if c >= len(lines[r]) {
		return ' '
	}
	return lines[r][c]
}

func TestRenderFreshBoard(t *testing.T) {
	b, err := game.Build(standard, game.RulesTrail)
	require.NoError(t, err)
	art := Render(b)

	assert.Equal(t, 1, strings.Count(art, "O"))
	assert.Equal(t, byte('O'), cell(t, art, game.Vertex{X: 4, Y: 5}, 0, 0))
	assert.Equal(t, byte('+'), cell(t, art, game.Vertex{X: 3, Y: -1}, 0, 0))
	assert.Equal(t, byte(' '), cell(t, art, game.Vertex{X: 0, Y: -1}, 0, 0))
	// sideline wall, open goal mouth
	assert.Equal(t, byte('#'), cell(t, art, game.Vertex{X: 0, Y: 3}, 1, 0))
	assert.Equal(t, byte(' '), cell(t, art, game.Vertex{X: 3, Y: 0}, 0, 1))
	assert.Equal(t, byte('='), cell(t, art, game.Vertex{X: 1, Y: 0}, 0, 1))
	assert.NotContains(t, art, "|")
}

func TestRenderDrawnEdges(t *testing.T) {
	b, err := game.Build(standard, game.RulesTrail)
	require.NoError(t, err)
	r := game.NewReferee(b, game.PlayerA)
	for _, d := range []game.Direction{game.South, game.East, game.NorthWest, game.SouthWest} {
		require.NotEqual(t, game.StateIllegal, r.Play(d))
	}
	art := Render(r.Board())

	centre := game.Vertex{X: 4, Y: 5}
	assert.Equal(t, byte('|'), cell(t, art, centre, 1, 0))
	assert.Equal(t, byte('-'), cell(t, art, game.Vertex{X: 4, Y: 6}, 0, 1))
	// (5,6)->(4,5) and (4,5)->(3,6) meet only at the centre, so no X
	assert.Equal(t, byte('\\'), cell(t, art, centre, 1, 2))
	assert.Equal(t, byte('/'), cell(t, art, centre, 1, -2))
	assert.Equal(t, byte('O'), cell(t, art, game.Vertex{X: 3, Y: 6}, 0, 0))
}

func TestRenderCrossingDiagonals(t *testing.T) {
	b, err := game.Build(standard, game.RulesTrail)
	require.NoError(t, err)
	r := game.NewReferee(b, game.PlayerA)
	for _, d := range []game.Direction{game.SouthEast, game.West, game.NorthEast} {
		require.NotEqual(t, game.StateIllegal, r.Play(d))
	}
	assert.Equal(t, byte('X'), cell(t, Render(r.Board()), game.Vertex{X: 4, Y: 5}, 1, 2))
}

func TestFeedNeverBlocks(t *testing.T) {
	f := NewFeed(1)
	f.Broadcast("m", match.ActionAborted, match.AbortedEvent{Reason: "one"})
	f.Broadcast("m", match.ActionAborted, match.AbortedEvent{Reason: "two"})
	assert.EqualValues(t, 1, f.Dropped())
	assert.Equal(t, "match aborted: one", Describe(<-f.Events()))
}

func TestDescribe(t *testing.T) {
	b := game.PlayerB
	assert.Equal(t, "B (peer) plays NE to (5,4): CONTINUE", Describe(Event{Data: match.MoveEvent{
		Player: game.PlayerB, Direction: game.NorthEast, State: game.StateContinue, Ball: game.Vertex{X: 5, Y: 4}, Remote: true,
	}}))
	assert.Equal(t, "turn 3 done, A to play (ai)", Describe(Event{Data: match.TurnEvent{Turn: game.PlayerA, Control: match.AILocal, TurnIndex: 3}}))
	assert.Equal(t, "match over: GOAL_B, B wins after 7 turns", Describe(Event{Data: match.FinishedEvent{Outcome: match.OutcomeGoalB, Winner: &b, TurnIndex: 7}}))
	assert.Equal(t, "link failed (guest): refused", Describe(Event{Data: match.LinkEvent{Status: "failed", Role: link.Guest, Error: "refused"}}))
	assert.Equal(t, "custom", Describe(Event{Action: "custom"}))
}

func newSession(t *testing.T, rules game.Rules, in string) (*Session, *bytes.Buffer) {
	t.Helper()
	feed := NewFeed(1024)
	opts := strategy.DefaultOptions()
	opts.Seed = 5
	opts.Budget = 200
	m := match.New(feed, opts)
	require.NoError(t, m.SetRules(rules))
	require.NoError(t, m.ConfigureBoard(standard))
	require.NoError(t, m.SetStrategy("greedy"))
	out := &bytes.Buffer{}
	return &Session{Match: m, Feed: feed, In: strings.NewReader(in), Out: out, Poll: 50 * time.Millisecond}, out
}

func TestComputersPlayToTheEnd(t *testing.T) {
	s, out := newSession(t, game.RulesBounce, "")
	require.NoError(t, s.Match.SetControl(game.PlayerA, match.AILocal))

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, match.Finished, s.Match.View().Phase)
	assert.Contains(t, out.String(), "wins after")
}

func TestHumanInput(t *testing.T) {
	s, out := newSession(t, game.RulesBounce, "up\nN\nquit\n")

	require.NoError(t, s.Run(context.Background()))
	text := out.String()
	assert.Contains(t, text, `unknown direction "up"`)
	assert.Contains(t, text, "A plays N to (4,4): TURN_OVER")
	assert.Equal(t, match.Finished, s.Match.View().Phase)
}

func TestInputClosed(t *testing.T) {
	s, _ := newSession(t, game.RulesTrail, "")
	assert.ErrorIs(t, s.Run(context.Background()), ErrInputClosed)
	assert.Equal(t, match.Configuring, s.Match.View().Phase)
}

type quietPeer struct {
	mu   sync.Mutex
	sent []link.Message
	once sync.Once
	done chan struct{}
}

func (p *quietPeer) Send(m link.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, m)
	return nil
}

func (p *quietPeer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func (p *quietPeer) Run(ctx context.Context, _ func(link.Message) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return link.ErrClosed
	}
}

func (p *quietPeer) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func TestWaitsForPeerUntilAbort(t *testing.T) {
	s, out := newSession(t, game.RulesBounce, "")
	require.NoError(t, s.Match.SetControl(game.PlayerA, match.AILocal))
	require.NoError(t, s.Match.SetControl(game.PlayerB, match.HumanRemote))
	peer := &quietPeer{done: make(chan struct{})}
	require.NoError(t, s.Match.AttachLink(context.Background(), peer, link.Host))

	res := make(chan error, 1)
	go func() { res <- s.Run(context.Background()) }()

	require.Eventually(t, func() bool { return peer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Match.Abort("peer gone"))

	select {
	case err := <-res:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("session did not stop")
	}
	assert.Contains(t, out.String(), "waiting for B (peer)")
	assert.Contains(t, out.String(), "aborted: peer gone")
}
