package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"paper-soccer/internal/game"
	"paper-soccer/internal/match"
)

var ErrInputClosed = errors.New("input closed")

// Session plays one match in the terminal until it finishes.
type Session struct {
	Match *match.Manager
	Feed  *Feed
	In    io.Reader
	Out   io.Writer
	// Poll is how long to wait on the peer before re-checking the match.
	Poll time.Duration
}

func (s *Session) Run(ctx context.Context) error {
	if s.Poll <= 0 {
		s.Poll = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	inErr := make(chan error, 1)
	go s.read(ctx, lines, inErr)

	for {
		s.flush()
		v := s.Match.View()
		if v.Phase == match.Finished {
			s.summary(v)
			return nil
		}

		player, ctrl := s.Match.Turn()
		switch ctrl {
		case match.AILocal:
			if _, err := s.Match.RequestComputerMove(); err != nil {
				return err
			}
		case match.HumanLocal:
			s.printf("%s%s to move, legal %v > ", Render(s.Match.Board()), player, v.Legal)
			line, ok, err := s.next(ctx, lines, inErr)
			if err != nil {
				return err
			}
			if ok {
				s.human(line)
			}
		case match.HumanRemote:
			s.printf("waiting for %s (peer)...\n", player)
			if err := s.awaitRemote(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Session) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.Out, format, args...)
}

func (s *Session) read(ctx context.Context, lines chan<- string, inErr chan<- error) {
	sc := bufio.NewScanner(s.In)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		inErr <- err
		return
	}
	inErr <- ErrInputClosed
}

// next waits for an input line. ok is false when the match ended or the
// turn passed elsewhere meanwhile.
func (s *Session) next(ctx context.Context, lines <-chan string, inErr <-chan error) (string, bool, error) {
	for {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case err := <-inErr:
			return "", false, err
		case line := <-lines:
			return line, true, nil
		case ev := <-s.Feed.Events():
			s.printf("\n%s\n", Describe(ev))
			if ev.Action == match.ActionFinished || ev.Action == match.ActionAborted {
				return "", false, nil
			}
		}
	}
}

func (s *Session) human(line string) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return
	case "q", "quit":
		_ = s.Match.Abort("player quit")
		return
	}
	d, err := game.ParseDirection(line)
	if err != nil {
		s.printf("%v (use N, NE, E, SE, S, SW, W, NW or quit)\n", err)
		return
	}
	if _, err := s.Match.ApplyHumanMove(d); err != nil {
		s.printf("%v\n", err)
	}
}

// awaitRemote blocks until the peer's turn lands, the match ends or Poll
// elapses.
func (s *Session) awaitRemote(ctx context.Context) error {
	timer := time.NewTimer(s.Poll)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case ev := <-s.Feed.Events():
			s.printf("%s\n", Describe(ev))
			switch ev.Action {
			case match.ActionTurn, match.ActionFinished, match.ActionAborted:
				return nil
			}
		}
	}
}

func (s *Session) flush() {
	for {
		select {
		case ev := <-s.Feed.Events():
			s.printf("%s\n", Describe(ev))
		default:
			return
		}
	}
}

func (s *Session) summary(v match.View) {
	if b := s.Match.Board(); b != nil {
		s.printf("%s", Render(b))
	}
	switch {
	case v.Outcome == match.OutcomeAborted:
		s.printf("aborted: %s\n", v.AbortReason)
	case v.Winner != nil:
		s.printf("%s: %s wins after %d turns\n", v.Outcome, *v.Winner, v.TurnIndex)
	}
	if n := s.Feed.Dropped(); n > 0 {
		log.Debug().Int64("dropped", n).Msg("console events dropped")
	}
}
