package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-soccer/internal/match"
	"paper-soccer/internal/strategy"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	a := match.New(nil, strategy.DefaultOptions())
	b := match.New(nil, strategy.DefaultOptions())
	s.SaveMatch(a)
	s.SaveMatch(b)

	got, ok := s.GetMatch(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	list := s.ListMatches()
	require.Len(t, list, 2)
	assert.False(t, list[1].CreatedAt().Before(list[0].CreatedAt()))

	s.DeleteMatch(a.ID())
	_, ok = s.GetMatch(a.ID())
	assert.False(t, ok)
	assert.Len(t, s.ListMatches(), 1)
}
