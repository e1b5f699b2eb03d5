package game

type edgeState uint8

const (
	edgeNone edgeState = iota
	edgeOpen
	edgeVisited
)

// Dimensions counts grid cells, so a board has (Width+1) x (Height+1)
// field vertices.
type Dimensions struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	GoalWidth int `json:"goalWidth"`
}

// Validate checks sizes first, then the goal, then the parity that puts the
// ball on a central vertex.
func (d Dimensions) Validate() error {
	switch {
	case d.Width <= 0 || d.Height <= 0:
		return &ConfigError{Dimensions: d, Reason: "width and height must be positive", Err: ErrInvalidDimension}
	case d.GoalWidth <= 0:
		return &ConfigError{Dimensions: d, Reason: "goal width must be positive", Err: ErrInvalidGoalWidth}
	case d.GoalWidth >= d.Width:
		return &ConfigError{Dimensions: d, Reason: "goal must be narrower than the board", Err: ErrInvalidGoalWidth}
	case d.GoalWidth%2 != 0:
		return &ConfigError{Dimensions: d, Reason: "goal width must be even to centre the posts", Err: ErrInvalidGoalWidth}
	case d.Width%2 != 0 || d.Height%2 != 0:
		return &ConfigError{Dimensions: d, Reason: "width and height must be even for a central start vertex", Err: ErrInvalidDimension}
	}
	return nil
}

// Board holds the grid graph and the ball.
type Board struct {
	dims  Dimensions
	rules Rules
	ball  Vertex
	// edges[index(v)*NumDirections+d]; both halves of an edge are kept in sync
	edges []edgeState
	// whether the ball landed on an already touched or border vertex last move
	rebound bool
	log     MoveSequence
}

// Build constructs the vertex and edge sets and places the ball at the centre.
func Build(d Dimensions, rules Rules) (*Board, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		dims:  d,
		rules: rules,
		ball:  Vertex{X: d.Width / 2, Y: d.Height / 2},
	}
	b.edges = make([]edgeState, b.cols()*b.rows()*NumDirections)
	for y := -1; y <= d.Height+1; y++ {
		for x := 0; x <= d.Width; x++ {
			v := Vertex{X: x, Y: y}
			if !b.isVertex(v) {
				continue
			}
			for _, dir := range Directions() {
				if b.edgeAllowed(v, v.Step(dir)) {
					b.edges[b.slot(v, dir)] = edgeOpen
				}
			}
		}
	}
	return b, nil
}

func (b *Board) Dimensions() Dimensions { return b.dims }
func (b *Board) Rules() Rules           { return b.rules }
func (b *Board) Ball() Vertex           { return b.ball }
func (b *Board) Center() Vertex         { return Vertex{X: b.dims.Width / 2, Y: b.dims.Height / 2} }

// TurnLog is the directions taken since the current turn began.
func (b *Board) TurnLog() MoveSequence { return b.log.Clone() }

func (b *Board) resetLog() { b.log = nil }

// Clone is a deep copy; it is the snapshot handed to strategies.
func (b *Board) Clone() *Board {
	cp := *b
	cp.edges = append([]edgeState(nil), b.edges...)
	cp.log = b.log.Clone()
	return &cp
}

func (b *Board) cols() int { return b.dims.Width + 1 }
func (b *Board) rows() int { return b.dims.Height + 3 }

func (b *Board) index(v Vertex) int { return (v.Y+1)*b.cols() + v.X }

func (b *Board) slot(v Vertex, d Direction) int { return b.index(v)*NumDirections + int(d) }

func (b *Board) inGrid(v Vertex) bool {
	return v.X >= 0 && v.X <= b.dims.Width && v.Y >= -1 && v.Y <= b.dims.Height+1
}

// posts returns the x of the left and right goal posts.
func (b *Board) posts() (left, right int) {
	c := b.dims.Width / 2
	h := b.dims.GoalWidth / 2
	return c - h, c + h
}

func (b *Board) inMouth(x int) bool {
	l, r := b.posts()
	return x >= l && x <= r
}

func (b *Board) isGoalVertex(v Vertex) bool {
	return (v.Y == -1 || v.Y == b.dims.Height+1) && b.inMouth(v.X)
}

func (b *Board) isFieldVertex(v Vertex) bool {
	return v.X >= 0 && v.X <= b.dims.Width && v.Y >= 0 && v.Y <= b.dims.Height
}

func (b *Board) isVertex(v Vertex) bool { return b.isFieldVertex(v) || b.isGoalVertex(v) }

// onBorder is true for sideline and end line vertices, posts included but
// the open part of the goal mouth excluded.
func (b *Board) onBorder(v Vertex) bool {
	if !b.isFieldVertex(v) {
		return false
	}
	if v.X == 0 || v.X == b.dims.Width {
		return true
	}
	if v.Y == 0 || v.Y == b.dims.Height {
		l, r := b.posts()
		return v.X <= l || v.X >= r
	}
	return false
}

// edgeAllowed encodes the board geometry: no edges off the board, along the
// sidelines or the end lines outside the mouth, along a post's side wall, or
// inside a goal.
func (b *Board) edgeAllowed(a, c Vertex) bool {
	if !b.isVertex(a) || !b.isVertex(c) {
		return false
	}
	ga, gc := b.isGoalVertex(a), b.isGoalVertex(c)
	if ga && gc {
		return false
	}
	if ga || gc {
		field, goal := a, c
		if ga {
			field, goal = c, a
		}
		lineY := 0
		if goal.Y > 0 {
			lineY = b.dims.Height
		}
		if field.Y != lineY || !b.inMouth(field.X) {
			return false
		}
		l, r := b.posts()
		if field.X == goal.X && (field.X == l || field.X == r) {
			return false
		}
		return true
	}
	if a.X == c.X && (a.X == 0 || a.X == b.dims.Width) {
		return false
	}
	if a.Y == c.Y && (a.Y == 0 || a.Y == b.dims.Height) {
		return b.inMouth(a.X) && b.inMouth(c.X)
	}
	return true
}

func (b *Board) edgeAt(v Vertex, d Direction) edgeState {
	if !d.Valid() || !b.inGrid(v) || !b.inGrid(v.Step(d)) {
		return edgeNone
	}
	return b.edges[b.slot(v, d)]
}
