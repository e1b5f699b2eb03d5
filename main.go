package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"paper-soccer/internal/config"
	"paper-soccer/internal/console"
	"paper-soccer/internal/game"
	"paper-soccer/internal/link"
	"paper-soccer/internal/match"
	"paper-soccer/internal/strategy"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	cfg := config.Load()

	app := &cli.App{
		Name:  "paper-soccer",
		Usage: "play paper soccer in the terminal, against the computer or a peer",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Value: cfg.Board.Width, Usage: "board width in cells"},
			&cli.IntFlag{Name: "height", Value: cfg.Board.Height, Usage: "board height in cells"},
			&cli.IntFlag{Name: "goal", Value: cfg.Board.GoalWidth, Usage: "goal width in cells"},
			&cli.StringFlag{Name: "rules", Value: cfg.Rules.String(), Usage: "bounce (classic), or trail: the turn runs until a goal or a dead end, so a match is decided in one turn"},
			&cli.StringFlag{Name: "start", Value: cfg.StartingPlayer.String(), Usage: "starting player, A or B"},
			&cli.StringFlag{Name: "strategy", Value: cfg.Strategy, Usage: "computer player: " + strings.Join(strategy.Names(), ", ")},
			&cli.BoolFlag{Name: "watch", Usage: "let the computer play both sides"},
			&cli.BoolFlag{Name: "host", Usage: "wait for a peer to join (you play A)"},
			&cli.StringFlag{Name: "peer", Usage: "join the peer hosting at this address (you play B)"},
			&cli.IntFlag{Name: "port", Value: cfg.Link.Port, Usage: "peer link port"},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel},
		},
		Action: func(c *cli.Context) error {
			return play(c, cfg)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("paper-soccer")
	}
}

func play(c *cli.Context, cfg config.Config) error {
	if lvl, err := zerolog.ParseLevel(c.String("log-level")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg.Board = game.Dimensions{Width: c.Int("width"), Height: c.Int("height"), GoalWidth: c.Int("goal")}
	cfg.Strategy = c.String("strategy")
	cfg.Link.Port = c.Int("port")
	var err error
	if cfg.Rules, err = game.ParseRules(c.String("rules")); err != nil {
		return err
	}
	if cfg.StartingPlayer, err = game.ParsePlayer(c.String("start")); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Bool("host") && c.String("peer") != "" {
		return fmt.Errorf("--host and --peer are exclusive")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := console.NewFeed(4096)
	m, err := match.FromConfig(cfg, feed)
	if err != nil {
		return err
	}
	local := match.HumanLocal
	if c.Bool("watch") {
		local = match.AILocal
		if err := m.SetControl(game.PlayerA, match.AILocal); err != nil {
			return err
		}
	}

	if c.Bool("host") || c.String("peer") != "" {
		d := link.Discovery{AmHost: c.Bool("host"), PeerAddress: c.String("peer")}
		// before connecting: a host playing at once starts the match the
		// moment the link is attached
		if err := m.SetControl(match.LocalSide(d.Role()), local); err != nil {
			return err
		}
		if err := connect(ctx, m, feed, cfg, d); err != nil {
			return err
		}
	}

	s := &console.Session{Match: m, Feed: feed, In: os.Stdin, Out: os.Stdout}
	err = s.Run(ctx)
	if errors.Is(err, console.ErrInputClosed) || errors.Is(err, context.Canceled) {
		_ = m.Abort("player left")
		return nil
	}
	return err
}

// connect blocks until the peer link is attached to m or has failed.
func connect(ctx context.Context, m *match.Manager, feed *console.Feed, cfg config.Config, d link.Discovery) error {
	a, err := m.Establish(ctx, link.ConfigFrom(cfg.Link), d)
	if err != nil {
		return err
	}
	if d.AmHost {
		fmt.Printf("hosting on %s, waiting up to %s for a peer...\n", a.Addr(), cfg.Link.AcceptTimeout)
	} else {
		fmt.Printf("joining %s...\n", d.PeerAddress)
	}

	for {
		select {
		case <-ctx.Done():
			m.CancelLink()
			return ctx.Err()
		case ev := <-feed.Events():
			fmt.Println(console.Describe(ev))
			le, ok := ev.Data.(match.LinkEvent)
			if !ok {
				continue
			}
			switch le.Status {
			case "established":
				return nil
			case "failed", "canceled", "lost":
				return fmt.Errorf("no peer link: %s", le.Error)
			}
		}
	}
}
