package ws

import "paper-soccer/internal/match"

// MatchLookup resolves the match a socket subscribed to.
type MatchLookup interface {
	GetMatch(id string) (*match.Manager, bool)
}
