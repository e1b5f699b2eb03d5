package game

import "sort"

// Edge is an undirected board edge; A sorts before B.
type Edge struct {
	A       Vertex `json:"a"`
	B       Vertex `json:"b"`
	Visited bool   `json:"visited"`
}

// LegalDirections lists the directions IsLegal accepts, in wire-code order.
func (b *Board) LegalDirections() []Direction {
	var out []Direction
	for _, d := range Directions() {
		if b.IsLegal(d) {
			out = append(out, d)
		}
	}
	return out
}

// half of the compass, so every undirected edge is listed once
var forward = [...]Direction{East, SouthEast, South, SouthWest}

// Edges lists every edge of the board with its visited flag.
func (b *Board) Edges() []Edge {
	var out []Edge
	for y := -1; y <= b.dims.Height+1; y++ {
		for x := 0; x <= b.dims.Width; x++ {
			v := Vertex{X: x, Y: y}
			if !b.isVertex(v) {
				continue
			}
			for _, d := range forward {
				st := b.edgeAt(v, d)
				if st == edgeNone {
					continue
				}
				out = append(out, Edge{A: v, B: v.Step(d), Visited: st == edgeVisited})
			}
		}
	}
	return out
}

// VisitedEdges is the set of drawn edges in a stable order, handy for
// comparing two replicas.
func (b *Board) VisitedEdges() []Edge {
	var out []Edge
	for _, e := range b.Edges() {
		if e.Visited {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return less(out[i].A, out[j].A)
		}
		return less(out[i].B, out[j].B)
	})
	return out
}

func less(a, b Vertex) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// GoalLine returns the end line row and post columns of the goal p attacks.
func (b *Board) GoalLine(p Player) (y, left, right int) {
	left, right = b.posts()
	if p == PlayerA {
		return 0, left, right
	}
	return b.dims.Height, left, right
}

// DistanceToGoal is the king-move distance from v to the goal p attacks.
func (b *Board) DistanceToGoal(v Vertex, p Player) int {
	y, l, r := b.GoalLine(p)
	goalY := y - 1
	if p == PlayerB {
		goalY = y + 1
	}
	dy := abs(v.Y - goalY)
	dx := 0
	if v.X < l {
		dx = l - v.X
	} else if v.X > r {
		dx = v.X - r
	}
	return max(dx, dy)
}

// CanScore reports whether a single legal step from the ball enters the goal
// p attacks.
func (b *Board) CanScore(p Player) bool {
	for _, d := range b.LegalDirections() {
		if b.InGoal(b.ball.Step(d), p) {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
