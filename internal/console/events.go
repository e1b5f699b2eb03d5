package console

import (
	"fmt"
	"sync/atomic"

	"paper-soccer/internal/match"
)

type Event struct {
	Action string
	Data   interface{}
}

// Feed is a match.Broadcaster that queues events for the terminal loop.
// Broadcast never blocks; events beyond the buffer are counted and dropped.
type Feed struct {
	ch      chan Event
	dropped atomic.Int64
}

func NewFeed(size int) *Feed {
	return &Feed{ch: make(chan Event, size)}
}

func (f *Feed) Broadcast(_ string, action string, data interface{}) {
	select {
	case f.ch <- Event{Action: action, Data: data}:
	default:
		f.dropped.Add(1)
	}
}

func (f *Feed) Events() <-chan Event { return f.ch }

func (f *Feed) Dropped() int64 { return f.dropped.Load() }

// Describe turns an event into one line of terminal output.
func Describe(ev Event) string {
	switch e := ev.Data.(type) {
	case match.MoveEvent:
		who := e.Player.String()
		if e.Remote {
			who += " (peer)"
		}
		return fmt.Sprintf("%s plays %s to %s: %s", who, e.Direction, e.Ball, e.State)
	case match.TurnEvent:
		return fmt.Sprintf("turn %d done, %s to play (%s)", e.TurnIndex, e.Turn, e.Control)
	case match.FinishedEvent:
		if e.Winner == nil {
			return fmt.Sprintf("match over: %s", e.Outcome)
		}
		return fmt.Sprintf("match over: %s, %s wins after %d turns", e.Outcome, *e.Winner, e.TurnIndex)
	case match.AbortedEvent:
		return "match aborted: " + e.Reason
	case match.LinkEvent:
		if e.Error != "" {
			return fmt.Sprintf("link %s (%s): %s", e.Status, e.Role, e.Error)
		}
		return fmt.Sprintf("link %s as %s", e.Status, e.Role)
	}
	return ev.Action
}
