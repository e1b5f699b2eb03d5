// Package console drives a match from a terminal: it renders the board as
// text, prints match events and reads moves from an input stream.
package console

import (
	"strings"

	"paper-soccer/internal/game"
)

// Each vertex takes one character; cells are 3 characters wide and one
// line tall.
const (
	colStep = 4
	rowStep = 2
)

type canvas [][]byte

func newCanvas(w, h int) canvas {
	c := make(canvas, h)
	for i := range c {
		c[i] = []byte(strings.Repeat(" ", w))
	}
	return c
}

func pos(v game.Vertex) (row, col int) {
	return (v.Y + 1) * rowStep, v.X * colStep
}

// join draws the segment between two adjacent vertices.
func (c canvas) join(a, b game.Vertex, horiz, vert byte) {
	ra, ca := pos(a)
	rb, cb := pos(b)
	switch {
	case ra == rb:
		lo := min(ca, cb)
		for i := 1; i < colStep; i++ {
			c[ra][lo+i] = horiz
		}
	case ca == cb:
		c[(ra+rb)/2][ca] = vert
	default:
		r, col := (ra+rb)/2, (ca+cb)/2
		mark := byte('\\')
		if (rb-ra)*(cb-ca) < 0 {
			mark = '/'
		}
		if cur := c[r][col]; cur != ' ' && cur != mark {
			mark = 'X'
		}
		c[r][col] = mark
	}
}

// Render draws b with north at the top. Walls are '=' and '#', drawn edges
// '-', '|', '/', '\' ('X' where two diagonals cross), vertices '+' and the
// ball 'O'.
func Render(b *game.Board) string {
	d := b.Dimensions()
	c := newCanvas(d.Width*colStep+1, (d.Height+2)*rowStep+1)
	_, left, right := b.GoalLine(game.PlayerA)

	for x := 0; x < d.Width; x++ {
		if x >= left && x+1 <= right {
			// goal mouth and back of the nets
			c.join(game.Vertex{X: x, Y: -1}, game.Vertex{X: x + 1, Y: -1}, '=', '#')
			c.join(game.Vertex{X: x, Y: d.Height + 1}, game.Vertex{X: x + 1, Y: d.Height + 1}, '=', '#')
			continue
		}
		c.join(game.Vertex{X: x, Y: 0}, game.Vertex{X: x + 1, Y: 0}, '=', '#')
		c.join(game.Vertex{X: x, Y: d.Height}, game.Vertex{X: x + 1, Y: d.Height}, '=', '#')
	}
	for y := 0; y < d.Height; y++ {
		c.join(game.Vertex{X: 0, Y: y}, game.Vertex{X: 0, Y: y + 1}, '=', '#')
		c.join(game.Vertex{X: d.Width, Y: y}, game.Vertex{X: d.Width, Y: y + 1}, '=', '#')
	}
	for _, x := range []int{left, right} {
		c.join(game.Vertex{X: x, Y: -1}, game.Vertex{X: x, Y: 0}, '=', '#')
		c.join(game.Vertex{X: x, Y: d.Height}, game.Vertex{X: x, Y: d.Height + 1}, '=', '#')
	}

	for _, e := range b.VisitedEdges() {
		c.join(e.A, e.B, '-', '|')
	}

	for y := -1; y <= d.Height+1; y++ {
		for x := 0; x <= d.Width; x++ {
			v := game.Vertex{X: x, Y: y}
			field := y >= 0 && y <= d.Height
			if !field && !b.InGoal(v, game.PlayerA) && !b.InGoal(v, game.PlayerB) {
				continue
			}
			r, col := pos(v)
			c[r][col] = '+'
		}
	}
	r, col := pos(b.Ball())
	c[r][col] = 'O'

	var sb strings.Builder
	for _, line := range c {
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
