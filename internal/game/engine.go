package game

// IsLegal reports whether the ball can step in d from its current vertex.
// Goal edges are ordinary edges, so entering either goal mouth is covered.
func (b *Board) IsLegal(d Direction) bool {
	if b.isGoalVertex(b.ball) {
		return false
	}
	return b.edgeAt(b.ball, d) == edgeOpen
}

// ApplyMove is the only path that flips a visited flag. An illegal direction
// returns StateIllegal and leaves the board untouched.
func (b *Board) ApplyMove(d Direction) State {
	if !b.IsLegal(d) {
		return StateIllegal
	}
	from := b.ball
	to := from.Step(d)
	b.rebound = b.touched(to) || b.onBorder(to)

	b.edges[b.slot(from, d)] = edgeVisited
	b.edges[b.slot(to, d.Opposite())] = edgeVisited
	b.ball = to
	b.log = append(b.log, d)

	return Judge(b)
}

// touched reports whether any visited edge ends at v.
func (b *Board) touched(v Vertex) bool {
	for _, d := range Directions() {
		if b.edgeAt(v, d) == edgeVisited {
			return true
		}
	}
	return false
}
