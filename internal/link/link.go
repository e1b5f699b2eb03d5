// Package link connects two paper-soccer peers. One side hosts and accepts a
// single websocket, the other dials it; afterwards both exchange one Message
// per completed turn.
package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrClosed     = errors.New("link closed")
	ErrBadMessage = errors.New("malformed link message")
)

type Role int

const (
	Host Role = iota + 1
	Guest
)

func (r Role) String() string {
	switch r {
	case Host:
		return "host"
	case Guest:
		return "guest"
	}
	return "unknown"
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 64 << 10
)

// Link is an established peer connection. Send may be called from any
// goroutine; Run owns the read side.
type Link struct {
	role Role
	conn *websocket.Conn
	log  zerolog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func newLink(role Role, conn *websocket.Conn) *Link {
	conn.SetReadLimit(maxMessageSize)
	return &Link{
		role: role,
		conn: conn,
		log: log.With().
			Str("component", "link").
			Str("role", role.String()).
			Str("peer", conn.RemoteAddr().String()).
			Logger(),
		done: make(chan struct{}),
	}
}

func (l *Link) Role() Role         { return l.role }
func (l *Link) RemoteAddr() string { return l.conn.RemoteAddr().String() }

// Done is closed once the link is closed by either side.
func (l *Link) Done() <-chan struct{} { return l.done }

func (l *Link) closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Send writes one turn to the peer.
func (l *Link) Send(m Message) error {
	if l.closed() {
		return ErrClosed
	}
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode turn %d: %w", m.SenderTurnIndex, err)
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := l.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send turn %d: %w", m.SenderTurnIndex, err)
	}
	l.log.Debug().Uint64("turn", m.SenderTurnIndex).Str("directions", m.Directions.String()).Msg("sent")
	return nil
}

// Run reads messages and hands each to handle until the link ends. It always
// returns a non-nil error: ctx's error, ErrClosed (wrapped when the peer hung
// up), ErrBadMessage, the handler's error or a read failure. The link is
// closed when Run returns.
func (l *Link) Run(ctx context.Context, handle func(Message) error) error {
	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer stop()

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return ctx.Err()
			case l.closed():
				return ErrClosed
			}
			_ = l.Close()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("%w: peer hung up", ErrClosed)
			}
			return fmt.Errorf("read: %w", err)
		}

		m, err := decode(data)
		if err != nil {
			l.log.Warn().Err(err).Msg("dropping link")
			_ = l.Close()
			return err
		}
		l.log.Debug().Uint64("turn", m.SenderTurnIndex).Str("directions", m.Directions.String()).Msg("received")
		if err := handle(m); err != nil {
			_ = l.Close()
			return err
		}
	}
}

// Close sends a close frame and drops the connection. Safe to call repeatedly.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = l.conn.Close()
		l.log.Info().Msg("link closed")
	})
	return err
}
