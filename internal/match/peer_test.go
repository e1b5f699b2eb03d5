package match

import (
	"context"
	"errors"
	"sync"

	"paper-soccer/internal/link"
)

// recorder is a Broadcaster that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []recorded
}

type recorded struct {
	action string
	data   interface{}
}

func (r *recorder) Broadcast(_ string, action string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recorded{action: action, data: data})
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.action
	}
	return out
}

func (r *recorder) last(action string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].action == action {
			return r.events[i].data, true
		}
	}
	return nil, false
}

// fakePeer records sends; tests push inbound turns through inbox.
type fakePeer struct {
	mu      sync.Mutex
	sent    []link.Message
	sendErr error

	inbox chan link.Message
	once  sync.Once
	done  chan struct{}
}

func newFakePeer() *fakePeer {
	return &fakePeer{inbox: make(chan link.Message, 8), done: make(chan struct{})}
}

func (p *fakePeer) Send(m link.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	select {
	case <-p.done:
		return link.ErrClosed
	default:
	}
	p.sent = append(p.sent, m)
	return nil
}

func (p *fakePeer) Sent() []link.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]link.Message(nil), p.sent...)
}

func (p *fakePeer) Run(ctx context.Context, handle func(link.Message) error) error {
	for {
		select {
		case m := <-p.inbox:
			if err := handle(m); err != nil {
				_ = p.Close()
				return err
			}
		case <-p.done:
			return link.ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *fakePeer) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *fakePeer) isClosed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// pipe joins two peers in memory. Closing either end closes both, but turns
// already sent are still delivered, like a stream connection.
type pipeEnd struct {
	in, out chan link.Message
	shared  *pipeState
}

type pipeState struct {
	once sync.Once
	done chan struct{}
}

func newPipe() (*pipeEnd, *pipeEnd) {
	ab, ba := make(chan link.Message, 16), make(chan link.Message, 16)
	st := &pipeState{done: make(chan struct{})}
	return &pipeEnd{in: ba, out: ab, shared: st}, &pipeEnd{in: ab, out: ba, shared: st}
}

func (p *pipeEnd) Send(m link.Message) error {
	select {
	case <-p.shared.done:
		return link.ErrClosed
	default:
	}
	select {
	case p.out <- m:
		return nil
	default:
		return errors.New("pipe full")
	}
}

func (p *pipeEnd) Run(ctx context.Context, handle func(link.Message) error) error {
	deliver := func(m link.Message) error {
		if err := handle(m); err != nil {
			_ = p.Close()
			return err
		}
		return nil
	}
	for {
		select {
		case m := <-p.in:
			if err := deliver(m); err != nil {
				return err
			}
		case <-p.shared.done:
			for {
				select {
				case m := <-p.in:
					if err := deliver(m); err != nil {
						return err
					}
				default:
					return link.ErrClosed
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *pipeEnd) Close() error {
	p.shared.once.Do(func() { close(p.shared.done) })
	return nil
}
