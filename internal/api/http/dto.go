package http

// CreateMatchRequest is the payload for POST /matches. Omitted fields take
// the server configuration's defaults.
type CreateMatchRequest struct {
	Width          *int   `json:"width" binding:"omitempty,min=1,max=200"`
	Height         *int   `json:"height" binding:"omitempty,min=1,max=200"`
	GoalWidth      *int   `json:"goalWidth" binding:"omitempty,min=1,max=200"`
	Rules          string `json:"rules" binding:"omitempty,max=16"`
	StartingPlayer string `json:"startingPlayer" binding:"omitempty,max=8"`
	Strategy       string `json:"strategy" binding:"omitempty,max=32"`
	PlayerA        string `json:"playerA" binding:"omitempty,max=16"` // human | ai | remote
	PlayerB        string `json:"playerB" binding:"omitempty,max=16"`
}

// MoveRequest is one atomic move by the local human on turn.
type MoveRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// LinkRequest starts a host or guest link attempt for a configuring match.
type LinkRequest struct {
	AmHost      bool   `json:"amHost"`
	PeerAddress string `json:"peerAddress" binding:"omitempty,max=255"`
}

type AbortRequest struct {
	Reason string `json:"reason" binding:"max=200"`
}
