package match

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"paper-soccer/internal/game"
	"paper-soccer/internal/link"
)

var (
	ErrNotReady     = errors.New("match not ready")
	ErrMatchOver    = errors.New("match is over")
	ErrNotYourTurn  = fmt.Errorf("%w: not your turn", game.ErrIllegalMove)
	ErrStarted      = errors.New("match already started")
	ErrLinkBusy     = errors.New("a link is already attached or being established")
	ErrDesync       = errors.New("peer out of sync")
	ErrAborted      = errors.New("match aborted")
	ErrUnknownInput = errors.New("unknown control mode")
)

// DesyncError describes a remote turn that does not fit the local history.
type DesyncError struct {
	Expected uint64
	Got      uint64
	Reason   string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("desync at turn %d (got %d): %s", e.Expected, e.Got, e.Reason)
}

func (e *DesyncError) Unwrap() error { return ErrDesync }

type Phase int

const (
	Configuring Phase = iota
	InProgress
	Finished
)

func (p Phase) String() string {
	switch p {
	case Configuring:
		return "CONFIGURING"
	case InProgress:
		return "IN_PROGRESS"
	case Finished:
		return "FINISHED"
	}
	return "UNKNOWN"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

type Outcome int

const (
	NoOutcome Outcome = iota
	OutcomeGoalA
	OutcomeGoalB
	OutcomeBlocked
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGoalA:
		return "GOAL_A"
	case OutcomeGoalB:
		return "GOAL_B"
	case OutcomeBlocked:
		return "BLOCKED"
	case OutcomeAborted:
		return "ABORTED"
	}
	return ""
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Control says who supplies a player's turns.
type Control int

const (
	HumanLocal Control = iota
	AILocal
	HumanRemote
)

func (c Control) String() string {
	switch c {
	case HumanLocal:
		return "human"
	case AILocal:
		return "ai"
	case HumanRemote:
		return "remote"
	}
	return "unknown"
}

func (c Control) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Control) UnmarshalText(b []byte) error {
	v, err := ParseControl(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func ParseControl(s string) (Control, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human", "human-local", "local":
		return HumanLocal, nil
	case "ai", "ai-local", "computer":
		return AILocal, nil
	case "remote", "human-remote", "peer":
		return HumanRemote, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInput, s)
}

// Broadcaster receives presentation events. It is called with the match
// lock held and must not call back into the Manager.
type Broadcaster interface {
	Broadcast(matchID string, action string, data interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, string, interface{}) {}

// Peer is the transport a networked match relays turns over; *link.Link
// implements it.
type Peer interface {
	Send(m link.Message) error
	Run(ctx context.Context, handle func(link.Message) error) error
	Close() error
}

// Presentation event names.
const (
	ActionMove     = "move"
	ActionTurn     = "turn"
	ActionFinished = "finished"
	ActionAborted  = "aborted"
	ActionLink     = "link"
)

// View is a read-only projection for the presentation layer.
type View struct {
	ID          string                  `json:"id"`
	Phase       Phase                   `json:"phase"`
	Outcome     Outcome                 `json:"outcome,omitempty"`
	Winner      *game.Player            `json:"winner,omitempty"`
	AbortReason string                  `json:"abortReason,omitempty"`
	Dimensions  *game.Dimensions        `json:"dimensions,omitempty"`
	Rules       game.Rules              `json:"rules"`
	Starting    game.Player             `json:"startingPlayer"`
	Strategy    string                  `json:"strategy,omitempty"`
	Controls    map[game.Player]Control `json:"controls"`
	Ball        *game.Vertex            `json:"ball,omitempty"`
	Turn        game.Player             `json:"turn"`
	TurnIndex   uint64                  `json:"turnIndex"`
	TurnLog     game.MoveSequence       `json:"turnLog"`
	LastTurn    game.MoveSequence       `json:"lastTurn"`
	LastState   game.State              `json:"lastState"`
	Legal       []game.Direction        `json:"legal"`
	Visited     []game.Edge             `json:"visited"`
	Link        *link.Role              `json:"link,omitempty"`
	Connecting  bool                    `json:"connecting"`
}

type MoveEvent struct {
	Player    game.Player    `json:"player"`
	Direction game.Direction `json:"direction"`
	State     game.State     `json:"state"`
	Ball      game.Vertex    `json:"ball"`
	Remote    bool           `json:"remote"`
}

type TurnEvent struct {
	Turn      game.Player       `json:"turn"`
	Control   Control           `json:"control"`
	TurnIndex uint64            `json:"turnIndex"`
	LastTurn  game.MoveSequence `json:"lastTurn"`
}

type FinishedEvent struct {
	Outcome   Outcome           `json:"outcome"`
	Winner    *game.Player      `json:"winner,omitempty"`
	TurnIndex uint64            `json:"turnIndex"`
	LastTurn  game.MoveSequence `json:"lastTurn"`
}

type AbortedEvent struct {
	Reason string `json:"reason"`
}

type LinkEvent struct {
	Status string    `json:"status"`
	Role   link.Role `json:"role"`
	Error  string    `json:"error,omitempty"`
}
