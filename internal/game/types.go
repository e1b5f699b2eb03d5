package game

import (
	"fmt"
	"strings"
)

// Vertex is a grid point. Goal interiors live on rows -1 and height+1.
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (v Vertex) Step(d Direction) Vertex {
	dx, dy := d.Delta()
	return Vertex{X: v.X + dx, Y: v.Y + dy}
}

func (v Vertex) String() string { return fmt.Sprintf("(%d,%d)", v.X, v.Y) }

// Direction is one of the 8 compass steps. The numeric value is the wire code.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

const NumDirections = 8

var directionNames = [NumDirections]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// y grows towards the south goal
var directionDeltas = [NumDirections][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

var longDirectionNames = map[string]Direction{
	"NORTH": North, "NORTHEAST": NorthEast, "EAST": East, "SOUTHEAST": SouthEast,
	"SOUTH": South, "SOUTHWEST": SouthWest, "WEST": West, "NORTHWEST": NorthWest,
}

// Directions lists all directions in wire-code order.
func Directions() []Direction {
	out := make([]Direction, NumDirections)
	for i := range out {
		out[i] = Direction(i)
	}
	return out
}

func (d Direction) Valid() bool { return d < NumDirections }

func (d Direction) Delta() (dx, dy int) {
	if !d.Valid() {
		return 0, 0
	}
	return directionDeltas[d][0], directionDeltas[d][1]
}

func (d Direction) Opposite() Direction { return (d + NumDirections/2) % NumDirections }

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDirection accepts short ("NE") or long ("northeast") names, any case.
func ParseDirection(s string) (Direction, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	for i, n := range directionNames {
		if n == key {
			return Direction(i), nil
		}
	}
	if d, ok := longDirectionNames[key]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// DirectionFromCode validates a wire code.
func DirectionFromCode(code int) (Direction, error) {
	if code < 0 || code >= NumDirections {
		return 0, fmt.Errorf("direction code %d out of range", code)
	}
	return Direction(code), nil
}

// MoveSequence is everything one turn produced, in order.
type MoveSequence []Direction

func (s MoveSequence) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

func (s MoveSequence) Codes() []int {
	out := make([]int, len(s))
	for i, d := range s {
		out[i] = int(d)
	}
	return out
}

func (s MoveSequence) Clone() MoveSequence {
	if s == nil {
		return nil
	}
	return append(MoveSequence(nil), s...)
}

func SequenceFromCodes(codes []int) (MoveSequence, error) {
	out := make(MoveSequence, len(codes))
	for i, c := range codes {
		d, err := DirectionFromCode(c)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

// Player A attacks the north goal, player B the south goal.
type Player uint8

const (
	PlayerA Player = iota
	PlayerB
)

func (p Player) Opponent() Player {
	if p == PlayerA {
		return PlayerB
	}
	return PlayerA
}

func (p Player) String() string {
	if p == PlayerA {
		return "A"
	}
	return "B"
}

func (p Player) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Player) UnmarshalText(b []byte) error {
	v, err := ParsePlayer(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func ParsePlayer(s string) (Player, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "PLAYER_A", "0":
		return PlayerA, nil
	case "B", "PLAYER_B", "1":
		return PlayerB, nil
	}
	return 0, fmt.Errorf("unknown player %q", s)
}

// State is the outcome of the last atomic move.
type State uint8

const (
	StateContinue State = iota
	StateTurnOver
	StateGoalA
	StateGoalB
	StateIllegal
)

var stateNames = [...]string{"CONTINUE", "TURN_OVER", "GOAL_PLAYER_A", "GOAL_PLAYER_B", "ILLEGAL"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s State) IsGoal() bool { return s == StateGoalA || s == StateGoalB }

// EndsTurn reports whether the turn is finished after this state.
func (s State) EndsTurn() bool { return s == StateTurnOver || s.IsGoal() }

// Scorer is the player credited with a goal state.
func (s State) Scorer() (Player, bool) {
	switch s {
	case StateGoalA:
		return PlayerA, true
	case StateGoalB:
		return PlayerB, true
	}
	return 0, false
}

// Rules selects how the referee decides whether a turn continues.
type Rules uint8

const (
	// RulesTrail keeps the turn going while the ball has an unvisited edge.
	RulesTrail Rules = iota
	// RulesBounce is classic paper soccer: the turn only continues when the
	// ball lands on an already touched vertex or on the border.
	RulesBounce
)

func (r Rules) String() string {
	if r == RulesBounce {
		return "bounce"
	}
	return "trail"
}

func (r Rules) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rules) UnmarshalText(b []byte) error {
	v, err := ParseRules(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func ParseRules(s string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "trail":
		return RulesTrail, nil
	case "bounce", "classic":
		return RulesBounce, nil
	}
	return 0, fmt.Errorf("unknown rules %q", s)
}
